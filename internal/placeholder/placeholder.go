// Package placeholder finds the substrings of a source text that must survive
// translation byte for byte: template placeholders, format specifiers, URLs,
// email addresses, markup, inline code and explicit no-translate spans.
package placeholder

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/7tiSeven/TRJM/internal"
)

// DefaultPatterns are applied to every request in addition to caller patterns.
var DefaultPatterns = []string{
	// {placeholder}
	`\{[^}]+\}`,
	// {{placeholder}}
	`\{\{[^}]+\}\}`,
	// printf-style specifiers
	`%[sd]`,
	`https?://[^\s]+`,
	`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
	// HTML/XML tags: opening, closing, and self-closing
	`<[^>]+>`,
	`\[DO NOT TRANSLATE\][^\[]*\[/DO NOT TRANSLATE\]`,
	// inline code spans: `...`
	"`[^`]+`",
}

var defaultRes = compile(DefaultPatterns)

func compile(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

// Extract returns the protected tokens of text: the values of router special
// elements marked protect, plus every match of DefaultPatterns and of
// customPatterns. A custom pattern that fails to compile is skipped; use
// CheckPatterns to report it. The result is de-duplicated and sorted; callers must only rely on
// membership.
func Extract(text string, customPatterns []string, elements []internal.SpecialElement) []string {
	var tokens []string

	for _, el := range elements {
		if el.Protect && el.Value != "" {
			tokens = append(tokens, el.Value)
		}
	}

	for _, re := range defaultRes {
		tokens = append(tokens, re.FindAllString(text, -1)...)
	}

	for _, p := range customPatterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		tokens = append(tokens, re.FindAllString(text, -1)...)
	}

	tokens = lo.Filter(lo.Uniq(tokens), func(t string, _ int) bool { return t != "" })
	sort.Strings(tokens)
	return tokens
}

// CheckPatterns returns one joined error naming every pattern in patterns that
// does not compile, or nil.
func CheckPatterns(patterns []string) error {
	var errs []error
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("pattern %q: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// Missing returns the tokens that do not occur verbatim in text.
func Missing(text string, tokens []string) []string {
	return lo.Filter(tokens, func(t string, _ int) bool {
		return !strings.Contains(text, t)
	})
}

// PromptList renders tokens one per line for inclusion in an LLM prompt.
func PromptList(tokens []string) string {
	if len(tokens) == 0 {
		return "None"
	}
	var sb strings.Builder
	for i, t := range tokens {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- ")
		sb.WriteString(t)
	}
	return sb.String()
}
