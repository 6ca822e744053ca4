// Package chunker splits long paragraphs into translatable pieces while
// keeping sentences and protected tokens whole.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sentenceEnds are the marks after which a sentence boundary may fall,
// Latin and Arabic.
var sentenceEnds = map[rune]bool{
	'.': true, '!': true, '?': true, '…': true,
	'؟': true, '۔': true,
}

// Chunk splits text into pieces each no longer than maxChars unicode code
// points. Splits are attempted, in order of preference, at:
//  1. Paragraph boundaries (a blank line)
//  2. Sentence-ending punctuation followed by whitespace
//  3. Whitespace (word boundary)
//  4. Hard cut at maxChars
//
// No split falls inside an occurrence of a protected token. A piece exceeds
// maxChars only when a single token is longer than maxChars.
//
// If text fits within maxChars, or maxChars ≤ 0, a single-element slice
// holding text is returned. Pieces are trimmed and never empty.
func Chunk(text string, maxChars int, protected ...string) []string {
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return []string{text}
	}

	forbidden := forbiddenCuts(text, len(runes), protected)

	var chunks []string
	start := 0
	for len(runes)-start > maxChars {
		cut := findSplit(runes, start, start+maxChars, forbidden)
		if piece := strings.TrimSpace(string(runes[start:cut])); piece != "" {
			chunks = append(chunks, piece)
		}
		start = cut
	}
	if piece := strings.TrimSpace(string(runes[start:])); piece != "" {
		chunks = append(chunks, piece)
	}
	return chunks
}

// forbiddenCuts marks every rune index that lies strictly inside a token
// occurrence. Cutting before such a rune would split the token.
func forbiddenCuts(text string, n int, protected []string) []bool {
	forbidden := make([]bool, n+1)
	if len(protected) == 0 {
		return forbidden
	}

	// runeIndex maps a byte offset to the index of the rune starting there.
	runeIndex := make([]int, len(text)+1)
	i := 0
	for b := range text {
		runeIndex[b] = i
		i++
	}
	runeIndex[len(text)] = n

	for _, tok := range protected {
		if tok == "" {
			continue
		}
		for from := 0; ; {
			k := strings.Index(text[from:], tok)
			if k < 0 {
				break
			}
			s, e := from+k, from+k+len(tok)
			for r := runeIndex[s] + 1; r < runeIndex[e]; r++ {
				forbidden[r] = true
			}
			_, size := utf8.DecodeRuneInString(text[s:])
			from = s + size
		}
	}
	return forbidden
}

// findSplit returns the rune index in (start, len(runes)] at which to cut,
// preferring an index no greater than limit.
func findSplit(runes []rune, start, limit int, forbidden []bool) int {
	ok := func(i int) bool { return i > start && !forbidden[i] }

	for i := limit - 1; i > start; i-- {
		if runes[i] != '\n' {
			continue
		}
		if runes[i-1] == '\n' || (runes[i-1] == '\r' && i >= 2 && runes[i-2] == '\n') {
			if ok(i + 1) {
				return i + 1
			}
		}
	}

	for i := limit - 1; i > start; i-- {
		if sentenceEnds[runes[i]] && unicode.IsSpace(runes[i+1]) && ok(i+1) {
			return i + 1
		}
	}

	for i := limit; i > start; i-- {
		if unicode.IsSpace(runes[i]) && ok(i) {
			return i
		}
	}

	for i := limit; i > start; i-- {
		if ok(i) {
			return i
		}
	}
	for i := limit + 1; i < len(runes); i++ {
		if !forbidden[i] {
			return i
		}
	}
	return len(runes)
}
