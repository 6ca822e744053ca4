// Package translator drafts a translation with a single LLM call, honouring
// protected tokens, glossary terms and the requested style preset.
package translator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/7tiSeven/TRJM/internal"
	"github.com/7tiSeven/TRJM/internal/llm"
	"github.com/7tiSeven/TRJM/internal/placeholder"
	"github.com/7tiSeven/TRJM/internal/postprocess"
)

const (
	temperature = 0.3
	maxTokens   = 8192

	parseFailureNote = "Warning: Failed to parse structured response"
)

// Translator has no internal retry; the orchestrator decides when to call again.
type Translator struct {
	provider llm.Provider
	logger   *slog.Logger
}

func New(provider llm.Provider, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{provider: provider, logger: logger.With("stage", "translator")}
}

func (t *Translator) Translate(ctx context.Context, in Input) (*internal.TranslatorOutput, error) {
	if in.Style == "" {
		in.Style = internal.StyleNeutral
	}

	t.logger.Info("translating",
		"text_len", len(in.Text),
		"source", in.SourceLanguage,
		"target", in.TargetLanguage,
		"style", in.Style,
		"protected_tokens", len(in.ProtectedTokens),
		"glossary_entries", len(in.Glossary))

	messages := []llm.Message{
		llm.System(systemPrompt),
		llm.User(buildUserPrompt(in)),
	}
	resp, err := t.provider.ChatCompletion(ctx, messages, llm.Options{
		Temperature: temperature,
		MaxTokens:   maxTokens,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("translator: %w", err)
	}

	out, ok := parseResponse(resp.Content, in.ProtectedTokens)
	if !ok {
		t.logger.Error("failed to parse translator response, using raw text", "response_len", len(resp.Content))
		out = &internal.TranslatorOutput{
			Translation:          postprocess.Clean(resp.Content),
			GlossaryTermsApplied: []internal.GlossaryApplication{},
			TranslatorNotes:      parseFailureNote,
		}
		out.ProtectedTokensPreserved = verifyTokens(out.Translation, in.ProtectedTokens)
	}
	out.Usage = resp.Usage

	if missing := placeholder.Missing(out.Translation, in.ProtectedTokens); len(missing) > 0 {
		t.logger.Warn("draft is missing protected tokens", "missing", len(missing))
	}
	return out, nil
}

// parseResponse requires an object with a non-empty "translation" string.
func parseResponse(content string, tokens []string) (*internal.TranslatorOutput, bool) {
	obj, ok := llm.ParseObject(content)
	if !ok {
		return nil, false
	}
	tr := obj.Get("translation")
	if tr.Type != gjson.String || tr.String() == "" {
		return nil, false
	}

	out := &internal.TranslatorOutput{
		Translation:          tr.String(),
		GlossaryTermsApplied: []internal.GlossaryApplication{},
		TranslatorNotes:      obj.Get("translator_notes").String(),
	}

	if arr := obj.Get("protected_tokens_preserved"); arr.IsArray() {
		out.ProtectedTokensPreserved = []internal.TokenPreservation{}
		for _, item := range arr.Array() {
			if !item.IsObject() || item.Get("original").String() == "" {
				continue
			}
			out.ProtectedTokensPreserved = append(out.ProtectedTokensPreserved, internal.TokenPreservation{
				Original:  item.Get("original").String(),
				Preserved: llm.BoolField(item, "preserved", true),
			})
		}
	} else {
		out.ProtectedTokensPreserved = verifyTokens(out.Translation, tokens)
	}

	for _, item := range obj.Get("glossary_terms_applied").Array() {
		if !item.IsObject() || item.Get("source_term").String() == "" {
			continue
		}
		count := 1
		if c := item.Get("count"); c.Type == gjson.Number {
			count = int(c.Int())
		}
		out.GlossaryTermsApplied = append(out.GlossaryTermsApplied, internal.GlossaryApplication{
			SourceTerm:         item.Get("source_term").String(),
			AppliedTranslation: item.Get("applied_translation").String(),
			Count:              count,
		})
	}
	return out, true
}

// verifyTokens reports token preservation from the text itself.
func verifyTokens(text string, tokens []string) []internal.TokenPreservation {
	missing := placeholder.Missing(text, tokens)
	lost := make(map[string]bool, len(missing))
	for _, m := range missing {
		lost[m] = true
	}
	out := make([]internal.TokenPreservation, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, internal.TokenPreservation{Original: tok, Preserved: !lost[tok]})
	}
	return out
}
