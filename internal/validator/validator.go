// Package validator verifies that a finished translation is written in the
// requested target language. The pipeline records the outcome in the QA
// metrics; it never retries on it.
package validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/7tiSeven/TRJM/internal"
	"github.com/7tiSeven/TRJM/internal/detector"
	"github.com/7tiSeven/TRJM/internal/placeholder"
)

const (
	// Below this many letters, detection is too unreliable to act on.
	minLetters = 20
	// A runner-up target with at least this confidence still passes; mixed
	// output such as Arabic with Latin brand names can tip the top guess.
	minTargetConfidence = 0.35
)

var ErrEmptyTranslation = errors.New("translation is empty")

// MismatchError reports a translation detected as another language.
type MismatchError struct {
	Expected internal.LanguageCode
	Detected internal.LanguageCode
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected %s but detected %s", e.Expected, e.Detected)
}

// LanguageDetector is implemented by detector.Detector.
type LanguageDetector interface {
	Detect(text string) (internal.LanguageCode, bool)
	Confidence(text string, code internal.LanguageCode) float64
}

// Validator is safe for concurrent use; share one instance.
type Validator struct {
	det LanguageDetector
}

func New() *Validator {
	return NewWithDetector(detector.New())
}

func NewWithDetector(det LanguageDetector) *Validator {
	return &Validator{det: det}
}

// IsValid reports whether translated appears to be written in target.
// Protected tokens (URLs, placeholders, markup) are ignored. An empty or auto
// target, short texts and undetectable texts pass. A mismatch returns false
// and a *MismatchError.
func (v *Validator) IsValid(translated string, target internal.LanguageCode) (bool, error) {
	if target == "" || target == internal.LangAuto {
		return true, nil
	}

	text := strings.TrimSpace(translated)
	if text == "" {
		return false, ErrEmptyTranslation
	}
	text = withoutTokens(text)
	if countLetters(text) < minLetters {
		return true, nil
	}

	detected, ok := v.det.Detect(text)
	if !ok || detected == target {
		return true, nil
	}
	if v.det.Confidence(text, target) >= minTargetConfidence {
		return true, nil
	}
	return false, &MismatchError{Expected: target, Detected: detected}
}

func withoutTokens(text string) string {
	for _, tok := range placeholder.Extract(text, nil, nil) {
		text = strings.ReplaceAll(text, tok, " ")
	}
	return text
}

func countLetters(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
