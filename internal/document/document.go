// Package document splits source files into paragraphs and translates them
// one pipeline run per paragraph, reassembling the output in order.
package document

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/7tiSeven/TRJM/internal/chunker"
	"github.com/7tiSeven/TRJM/internal/markdown"
	"github.com/7tiSeven/TRJM/internal/placeholder"
)

// DefaultMaxParagraphChars bounds a single pipeline input.
const DefaultMaxParagraphChars = 4000

type Paragraph struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	// Verbatim paragraphs (code blocks) are copied to the output untranslated.
	Verbatim bool `json:"verbatim,omitempty"`
	// Continues marks a piece split from the previous paragraph; it is joined
	// back with a single space instead of a blank line.
	Continues bool `json:"continues,omitempty"`
}

type Document struct {
	Name       string      `json:"name"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// Parse builds a document from raw file content. Markdown files (.md,
// .markdown) are reduced to their text blocks; anything else is treated as
// plain text split on blank lines. Paragraphs longer than maxChars are
// chunked without splitting protected tokens. maxChars ≤ 0 uses
// DefaultMaxParagraphChars.
func Parse(name string, content []byte, maxChars int) *Document {
	if maxChars <= 0 {
		maxChars = DefaultMaxParagraphChars
	}
	text := norm.NFC.String(strings.ReplaceAll(string(content), "\r\n", "\n"))

	var blocks []markdown.Block
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		blocks = markdown.Blocks([]byte(text))
	default:
		for _, part := range blankLine.Split(text, -1) {
			if p := strings.TrimSpace(part); p != "" {
				blocks = append(blocks, markdown.Block{Text: p})
			}
		}
	}

	doc := &Document{Name: name, Paragraphs: []Paragraph{}}
	for _, b := range blocks {
		if b.Code {
			doc.add(Paragraph{Text: b.Text, Verbatim: true})
			continue
		}
		tokens := placeholder.Extract(b.Text, nil, nil)
		for i, piece := range chunker.Chunk(b.Text, maxChars, tokens...) {
			doc.add(Paragraph{Text: piece, Continues: i > 0})
		}
	}
	return doc
}

func (d *Document) add(p Paragraph) {
	p.Index = len(d.Paragraphs)
	d.Paragraphs = append(d.Paragraphs, p)
}

// Text returns the source text reassembled from the paragraphs.
func (d *Document) Text() string {
	texts := make([]string, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		texts[i] = p.Text
	}
	return join(d.Paragraphs, texts)
}

func join(paras []Paragraph, texts []string) string {
	var sb strings.Builder
	for i, p := range paras {
		if i > 0 {
			if p.Continues {
				sb.WriteByte(' ')
			} else {
				sb.WriteString("\n\n")
			}
		}
		sb.WriteString(texts[i])
	}
	return sb.String()
}
