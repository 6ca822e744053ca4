// Package refiner is the LLM-backed variant of the post-processing stage. It
// asks a model to apply the Arabic typography rules and falls back to the
// rule-based processor whenever the model's answer cannot be trusted.
package refiner

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
	temperature = 0.1
	maxTokens   = 8192
)

// Refiner satisfies the same contract as postprocess.Processor.
type Refiner struct {
	provider llm.Provider
	fallback *postprocess.Processor
	logger   *slog.Logger
}

// New returns a Refiner. A nil provider makes every call rule-based.
func New(provider llm.Provider, logger *slog.Logger) *Refiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{
		provider: provider,
		fallback: postprocess.New(logger),
		logger:   logger.With("stage", "refiner"),
	}
}

func (r *Refiner) Process(ctx context.Context, in postprocess.Input) (*internal.PostProcessorOutput, error) {
	if r.provider == nil || in.TargetLanguage != internal.LangArabic {
		return r.fallback.Process(ctx, in)
	}

	messages := []llm.Message{
		llm.System(systemPrompt),
		llm.User(buildUserPrompt(in)),
	}
	resp, err := r.provider.ChatCompletion(ctx, messages, llm.Options{
		Temperature: temperature,
		MaxTokens:   maxTokens,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("refiner: %w", err)
	}

	out, ok := parseResponse(resp.Content, in.Translation)
	switch {
	case !ok:
		r.logger.Warn("refiner response not valid JSON, using rule-based processing", "response_len", len(resp.Content))
		out, _ = r.fallback.Process(ctx, in)
	case len(placeholder.Missing(out.ProcessedText, in.ProtectedTokens)) > len(placeholder.Missing(in.Translation, in.ProtectedTokens)):
		r.logger.Warn("refiner dropped protected tokens, using rule-based processing")
		out, _ = r.fallback.Process(ctx, in)
	}
	out.Usage = resp.Usage
	return out, nil
}

func parseResponse(content, translation string) (*internal.PostProcessorOutput, bool) {
	obj, ok := llm.ParseObject(content)
	if !ok {
		return nil, false
	}

	out := &internal.PostProcessorOutput{
		ProcessedText:       obj.Get("processed_text").String(),
		ChangesMade:         []internal.ChangeRecord{},
		RTLMarkersAdded:     int(obj.Get("rtl_markers_added").Int()),
		FormattingPreserved: llm.BoolField(obj, "formatting_preserved", true),
	}
	if out.ProcessedText == "" {
		out.ProcessedText = translation
	}
	obj.Get("changes_made").ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() || item.Get("type").String() == "" {
			return true
		}
		count := 1
		if c := item.Get("count"); c.Type == gjson.Number {
			count = int(c.Int())
		}
		out.ChangesMade = append(out.ChangesMade, internal.ChangeRecord{
			Type:        item.Get("type").String(),
			Original:    item.Get("original").String(),
			Replacement: item.Get("replacement").String(),
			Count:       count,
		})
		return true
	})
	return out, true
}
