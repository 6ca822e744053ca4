// Package reviewer scores a translation against a fixed rubric, lists its
// issues and proposes a corrected version.
package reviewer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/7tiSeven/TRJM/internal"
	"github.com/7tiSeven/TRJM/internal/llm"
	"github.com/7tiSeven/TRJM/internal/placeholder"
)

const (
	temperature = 0.2
	maxTokens   = 4096

	defaultConfidence  = 0.8
	fallbackConfidence = 0.7
	defaultRiskLevel   = "medium"
)

type Input struct {
	SourceText      string
	Translation     string
	SourceLanguage  internal.LanguageCode
	TargetLanguage  internal.LanguageCode
	Style           internal.StylePreset
	ProtectedTokens []string
	Glossary        []internal.GlossaryEntry
}

type Reviewer struct {
	provider llm.Provider
	logger   *slog.Logger
}

func New(provider llm.Provider, logger *slog.Logger) *Reviewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reviewer{provider: provider, logger: logger.With("stage", "reviewer")}
}

// Review never returns an empty CorrectedTranslation. An unparseable response
// yields a degraded review with confidence 0.7.
func (r *Reviewer) Review(ctx context.Context, in Input) (*internal.ReviewerOutput, error) {
	if in.Style == "" {
		in.Style = internal.StyleNeutral
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
		return nil, fmt.Errorf("reviewer: %w", err)
	}

	out, ok := parseResponse(resp.Content, in.Translation)
	if !ok {
		r.logger.Error("failed to parse reviewer response, using degraded review", "response_len", len(resp.Content))
		out = degradedReview(in.Translation)
	}
	out.Usage = resp.Usage

	r.guardProtectedTokens(out, in)

	r.logger.Info("review complete",
		"confidence", out.ConfidenceScore,
		"issues", len(out.Issues),
		"corrected", out.CorrectedTranslation != in.Translation)
	return out, nil
}

// guardProtectedTokens rejects a correction that loses tokens the draft still
// had, and reports token integrity from the text rather than the model's claim.
func (r *Reviewer) guardProtectedTokens(out *internal.ReviewerOutput, in Input) {
	if len(in.ProtectedTokens) == 0 {
		return
	}
	if out.CorrectedTranslation != in.Translation {
		lostByCorrection := len(placeholder.Missing(out.CorrectedTranslation, in.ProtectedTokens)) >
			len(placeholder.Missing(in.Translation, in.ProtectedTokens))
		if lostByCorrection {
			r.logger.Warn("correction dropped protected tokens, keeping draft")
			out.CorrectedTranslation = in.Translation
		}
	}
	if len(placeholder.Missing(out.CorrectedTranslation, in.ProtectedTokens)) > 0 {
		out.ProtectedTokensIntact = false
	}
}

func degradedReview(translation string) *internal.ReviewerOutput {
	return &internal.ReviewerOutput{
		ConfidenceScore: fallbackConfidence,
		Issues: []internal.QAIssue{{
			Category:    internal.CategoryGrammar,
			Severity:    internal.SeverityMinor,
			Description: "Unable to perform automated review",
		}},
		CorrectedTranslation:  translation,
		GlossaryCompliance:    true,
		ProtectedTokensIntact: true,
		RiskySpans:            []internal.RiskySpan{},
		ReviewerNotes:         "Warning: Automated review failed",
	}
}

func parseResponse(content, translation string) (*internal.ReviewerOutput, bool) {
	obj, ok := llm.ParseObject(content)
	if !ok {
		return nil, false
	}

	out := &internal.ReviewerOutput{
		ConfidenceScore:       llm.ScoreField(obj, "confidence_score", defaultConfidence),
		Issues:                parseIssues(obj.Get("issues")),
		CorrectedTranslation:  obj.Get("corrected_translation").String(),
		GlossaryCompliance:    llm.BoolField(obj, "glossary_compliance", true),
		ProtectedTokensIntact: llm.BoolField(obj, "protected_tokens_intact", true),
		RiskySpans:            parseRiskySpans(obj.Get("risky_spans")),
		ReviewerNotes:         obj.Get("reviewer_notes").String(),
	}
	if out.CorrectedTranslation == "" {
		out.CorrectedTranslation = translation
	}
	return out, true
}

// parseIssues drops any issue whose category or severity is present but not
// recognised. Missing values default to grammar and minor.
func parseIssues(arr gjson.Result) []internal.QAIssue {
	issues := []internal.QAIssue{}
	for _, item := range arr.Array() {
		if !item.IsObject() {
			continue
		}
		category := internal.CategoryGrammar
		if v := item.Get("category"); v.Exists() {
			c, ok := internal.ParseIssueCategory(v.String())
			if !ok {
				continue
			}
			category = c
		}
		severity := internal.SeverityMinor
		if v := item.Get("severity"); v.Exists() {
			s, ok := internal.ParseIssueSeverity(v.String())
			if !ok {
				continue
			}
			severity = s
		}
		issues = append(issues, internal.QAIssue{
			Category:           category,
			Severity:           severity,
			Description:        item.Get("description").String(),
			SourceSegment:      item.Get("source_segment").String(),
			TranslationSegment: item.Get("translation_segment").String(),
			SuggestedFix:       item.Get("suggested_fix").String(),
		})
	}
	return issues
}

func parseRiskySpans(arr gjson.Result) []internal.RiskySpan {
	spans := []internal.RiskySpan{}
	for _, item := range arr.Array() {
		if !item.IsObject() || item.Get("text").String() == "" {
			continue
		}
		span := internal.RiskySpan{
			Text:      item.Get("text").String(),
			Reason:    item.Get("reason").String(),
			RiskLevel: item.Get("risk_level").String(),
		}
		if span.RiskLevel == "" {
			span.RiskLevel = defaultRiskLevel
		}
		if pos := item.Get("position"); pos.IsObject() && pos.Get("start").Exists() && pos.Get("end").Exists() {
			span.Position = &internal.Position{Start: int(pos.Get("start").Int()), End: int(pos.Get("end").Int())}
		}
		spans = append(spans, span)
	}
	return spans
}
