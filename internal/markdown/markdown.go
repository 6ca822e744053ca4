// Package markdown extracts translatable blocks from markdown sources.
package markdown

import (
	"bytes"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// Block is one top-level unit of text. Code blocks are kept verbatim and
// are not meant to be translated.
type Block struct {
	Text string
	Code bool
}

// Blocks parses md and returns its headings, paragraphs, list items, table
// cells and code blocks in document order. Inline formatting is dropped;
// inline code keeps its backticks so it stays recognisable as code.
func Blocks(md []byte) []Block {
	p := parser.NewWithExtensions(parser.CommonExtensions &^ parser.MathJax)
	doc := p.Parse(md)

	var (
		blocks []Block
		cur    bytes.Buffer
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			blocks = append(blocks, Block{Text: s})
		}
		cur.Reset()
	}

	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.TableCell:
			if !entering {
				flush()
			}
		case *ast.CodeBlock:
			flush()
			if s := strings.TrimRight(string(n.Literal), "\n"); s != "" {
				blocks = append(blocks, Block{Text: s, Code: true})
			}
		case *ast.Text:
			cur.Write(n.Literal)
		case *ast.Code:
			cur.WriteByte('`')
			cur.Write(n.Literal)
			cur.WriteByte('`')
		case *ast.HTMLSpan:
			cur.Write(n.Literal)
		case *ast.Softbreak:
			cur.WriteByte(' ')
		case *ast.Hardbreak:
			cur.WriteByte('\n')
		}
		return ast.GoToNext
	})
	flush()
	return blocks
}

// ToPlainText renders md as plain text, one block per paragraph.
func ToPlainText(md []byte) string {
	blocks := Blocks(md)
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, "\n\n")
}
