// Package postprocess cleans model output and applies target-language
// typography rules to a finished translation.
//
// Clean turns a free-text model reply into bare translated text. Processor is
// the rule-based final pipeline stage; for Arabic it rewrites punctuation,
// spacing, bidi marks and quotes without touching protected tokens.
package postprocess

import (
	"regexp"
	"strings"

	"github.com/7tiSeven/TRJM/internal/llm"
)

// Clean strips what models add around a translation when they ignore the
// JSON contract: a code fence, reasoning blocks, a "Translation:" preamble in
// any supported language, and a pair of quotes around the whole text.
func Clean(text string) string {
	text = llm.StripCodeFence(text)
	text = stripReasoning(text)
	text = stripPreamble(text)
	text = unwrapQuotes(text)
	return strings.TrimSpace(text)
}

// RE2 has no backreferences, so each tag is spelled out.
var (
	reasoningBlock = regexp.MustCompile(`(?is)<(?:think|thinking|reasoning|reflection|analysis)>.*?</(?:think|thinking|reasoning|reflection|analysis)>`)
	// An opened block with no closing tag means the reply was cut off inside it.
	reasoningTail = regexp.MustCompile(`(?is)<(?:think|thinking|reasoning|reflection|analysis)>.*$`)
)

func stripReasoning(text string) string {
	text = reasoningBlock.ReplaceAllString(text, "")
	text = reasoningTail.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Preambles must sit at the very start and end with a colon; a sentence that
// merely mentions "translation" is left alone.
var preambles = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:(?:certainly|sure|of course|okay)[,.!]?\s+)?(?:here(?:'s| is)\s+)?(?:the\s+|your\s+)?(?:(?:arabic|english|french|german|spanish|final|refined|polished|corrected)\s+)?(?:translation|translated text)(?:\s+(?:in|into)\s+\p{L}+)?\s*:`),
	regexp.MustCompile(`(?i)^(?:إليك\s+)?(?:الترجمة|النص المترجم)\s*:`),
	regexp.MustCompile(`(?i)^(?:voici\s+)?(?:la\s+)?traduction\s*:`),
	regexp.MustCompile(`(?i)^(?:hier ist\s+)?(?:die\s+)?übersetzung\s*:`),
	regexp.MustCompile(`(?i)^(?:aquí está\s+)?(?:la\s+)?traducción\s*:`),
}

func stripPreamble(text string) string {
	for _, re := range preambles {
		if loc := re.FindStringIndex(text); loc != nil {
			return strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

var quotePairs = map[rune]rune{
	'"':      '"',
	'\'':     '\'',
	'«':      '»',
	'\u201c': '\u201d',
	'\u2018': '\u2019',
}

// unwrapQuotes removes one pair of quotes around the whole text. Text that
// quotes something inside, like `"a" and "b"`, is kept as is.
func unwrapQuotes(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	closing, ok := quotePairs[runes[0]]
	if !ok || runes[n-1] != closing {
		return text
	}
	inner := string(runes[1 : n-1])
	if strings.ContainsRune(inner, runes[0]) || strings.ContainsRune(inner, closing) {
		return text
	}
	return strings.TrimSpace(inner)
}
