// Package router classifies a source text before translation: language,
// content type, register, spans that need protection, and a recommended
// style preset.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/7tiSeven/TRJM/internal"
	"github.com/7tiSeven/TRJM/internal/llm"
)

const (
	// maxPromptChars bounds the text shown to the classifier.
	maxPromptChars = 5000

	temperature = 0.1
	maxTokens   = 1024

	defaultLanguageConfidence = 0.9
	defaultComplexity         = 0.5
	fallbackConfidence        = 0.5
)

// Router is safe for concurrent use.
type Router struct {
	provider llm.Provider
	logger   *slog.Logger
}

func New(provider llm.Provider, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{provider: provider, logger: logger.With("stage", "router")}
}

// Analyze makes one LLM call. Malformed output never fails the call: it yields
// a conservative default analysis. Only provider errors are returned.
func (r *Router) Analyze(ctx context.Context, text string, target internal.LanguageCode, styleHint internal.StylePreset) (*internal.RouterOutput, error) {
	messages := []llm.Message{
		llm.System(systemPrompt),
		llm.User(buildUserPrompt(truncate(text, maxPromptChars), target, styleHint)),
	}

	resp, err := r.provider.ChatCompletion(ctx, messages, llm.Options{
		Temperature: temperature,
		MaxTokens:   maxTokens,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	out, ok := parseResponse(resp.Content, styleHint)
	if !ok {
		r.logger.Error("failed to parse router response, using default analysis",
			"response_len", len(resp.Content))
		out = defaultOutput(styleHint)
	}
	out.Usage = resp.Usage

	r.logger.Debug("analysis complete",
		"source_language", out.SourceLanguage,
		"confidence", out.SourceLanguageConfidence,
		"content_type", out.ContentType,
		"special_elements", len(out.SpecialElements))
	return out, nil
}

func defaultOutput(styleHint internal.StylePreset) *internal.RouterOutput {
	return &internal.RouterOutput{
		SourceLanguage:           internal.LangEnglish,
		SourceLanguageConfidence: fallbackConfidence,
		ContentType:              internal.ContentGeneral,
		FormalityLevel:           internal.FormalityNeutral,
		SpecialElements:          []internal.SpecialElement{},
		RecommendedStyle:         styleOrNeutral(styleHint),
		ComplexityScore:          defaultComplexity,
		Notes:                    "Default analysis due to unparseable router response",
	}
}

func parseResponse(content string, styleHint internal.StylePreset) (*internal.RouterOutput, bool) {
	obj, ok := llm.ParseObject(content)
	if !ok {
		return nil, false
	}

	out := &internal.RouterOutput{
		SourceLanguage:           internal.LangEnglish,
		SourceLanguageConfidence: llm.ScoreField(obj, "source_language_confidence", defaultLanguageConfidence),
		ContentType:              internal.ContentGeneral,
		FormalityLevel:           internal.FormalityNeutral,
		SpecialElements:          parseSpecialElements(obj.Get("special_elements")),
		RecommendedStyle:         styleOrNeutral(styleHint),
		ComplexityScore:          llm.ScoreField(obj, "complexity_score", defaultComplexity),
		Notes:                    obj.Get("notes").String(),
	}

	if lang, ok := internal.ParseLanguageCode(obj.Get("source_language").String()); ok && lang != internal.LangAuto {
		out.SourceLanguage = lang
	}
	if ct, ok := internal.ParseContentType(obj.Get("content_type").String()); ok {
		out.ContentType = ct
	}
	if f, ok := internal.ParseFormalityLevel(obj.Get("formality_level").String()); ok {
		out.FormalityLevel = f
	}
	if s, ok := internal.ParseStylePreset(obj.Get("recommended_style").String()); ok {
		out.RecommendedStyle = s
	}
	return out, true
}

// parseSpecialElements drops entries with an unknown type or an empty value.
// An entry without a type is treated as an entity.
func parseSpecialElements(arr gjson.Result) []internal.SpecialElement {
	elements := []internal.SpecialElement{}
	if !arr.IsArray() {
		return elements
	}
	for _, item := range arr.Array() {
		if !item.IsObject() {
			continue
		}
		typ := internal.ElementEntity
		if v := item.Get("type"); v.Exists() {
			t, ok := internal.ParseSpecialElementType(v.String())
			if !ok {
				continue
			}
			typ = t
		}
		value := item.Get("value").String()
		if value == "" {
			continue
		}
		el := internal.SpecialElement{
			Type:    typ,
			Value:   value,
			Protect: llm.BoolField(item, "protect", true),
		}
		if pos := item.Get("position"); pos.IsObject() && pos.Get("start").Exists() && pos.Get("end").Exists() {
			el.Position = &internal.Position{Start: int(pos.Get("start").Int()), End: int(pos.Get("end").Int())}
		}
		elements = append(elements, el)
	}
	return elements
}

func styleOrNeutral(s internal.StylePreset) internal.StylePreset {
	if s == "" {
		return internal.StyleNeutral
	}
	return s
}

func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

func buildUserPrompt(text string, target internal.LanguageCode, styleHint internal.StylePreset) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TARGET LANGUAGE: %s (%s)\n", target.DisplayName(), target)
	if styleHint != "" {
		fmt.Fprintf(&sb, "STYLE HINT: %s\n", styleHint)
	}
	sb.WriteString("\nTEXT TO ANALYZE:\n")
	sb.WriteString(text)
	return sb.String()
}

const systemPrompt = `You are a translation routing analyst. Inspect the source text and describe it so the translation pipeline can be configured.

Respond ONLY with a JSON object of this shape:
{
  "source_language": "en|ar|fr|de|es",
  "source_language_confidence": 0.0-1.0,
  "content_type": "general|email|legal|technical|marketing|ui_strings|government",
  "formality_level": "informal|neutral|formal|highly_formal",
  "special_elements": [
    {
      "type": "url|email|placeholder|code|html|bracketed|number|date|currency|entity|technical_term",
      "value": "exact substring from the text",
      "protect": true,
      "position": {"start": 0, "end": 0}
    }
  ],
  "recommended_style": "formal_msa|neutral|marketing|government_memo",
  "complexity_score": 0.0-1.0,
  "notes": "optional remarks"
}

Rules:
- "value" must be copied exactly from the text.
- Set "protect" to true for spans that must not be translated (URLs, emails, placeholders, code, product names).
- Use "complexity_score" to rate terminology density and sentence complexity.`
