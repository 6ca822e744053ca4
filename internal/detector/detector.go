// Package detector identifies which supported language a text is written in.
package detector

import (
	"sync"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/7tiSeven/TRJM/internal"
)

var codes = map[lingua.Language]internal.LanguageCode{
	lingua.English: internal.LangEnglish,
	lingua.Arabic:  internal.LangArabic,
	lingua.French:  internal.LangFrench,
	lingua.German:  internal.LangGerman,
	lingua.Spanish: internal.LangSpanish,
}

// Detector is restricted to the gateway's languages. Building the underlying
// models is expensive, so the detector is created once on first use.
type Detector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

func New() *Detector {
	return &Detector{}
}

func (d *Detector) build() {
	d.once.Do(func() {
		langs := make([]lingua.Language, 0, len(codes))
		for l := range codes {
			langs = append(langs, l)
		}
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(langs...).
			Build()
	})
}

// Detect returns false for empty or ambiguous text.
func (d *Detector) Detect(text string) (internal.LanguageCode, bool) {
	if text == "" {
		return "", false
	}
	d.build()
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	code, ok := codes[lang]
	return code, ok
}

// Confidence returns the detector's confidence in [0,1] that text is written
// in code.
func (d *Detector) Confidence(text string, code internal.LanguageCode) float64 {
	if text == "" {
		return 0
	}
	d.build()
	for l, c := range codes {
		if c == code {
			return d.detector.ComputeLanguageConfidence(text, l)
		}
	}
	return 0
}
