package translator

import "github.com/7tiSeven/TRJM/internal"

// Input carries everything one translation attempt needs. The same Input is
// reused verbatim for retries.
type Input struct {
	Text            string                   `json:"text"`
	SourceLanguage  internal.LanguageCode    `json:"source_language"`
	TargetLanguage  internal.LanguageCode    `json:"target_language"`
	Style           internal.StylePreset     `json:"style_preset"`
	ProtectedTokens []string                 `json:"protected_tokens"`
	Glossary        []internal.GlossaryEntry `json:"glossary_entries"`
}
