// Package orchestrator runs the translation pipeline: routing, token
// protection, drafting, review with confidence-driven retries,
// post-processing and QA report assembly.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/7tiSeven/TRJM/internal"
	"github.com/7tiSeven/TRJM/internal/llm"
	"github.com/7tiSeven/TRJM/internal/placeholder"
	"github.com/7tiSeven/TRJM/internal/postprocess"
	"github.com/7tiSeven/TRJM/internal/refiner"
	"github.com/7tiSeven/TRJM/internal/reviewer"
	"github.com/7tiSeven/TRJM/internal/router"
	"github.com/7tiSeven/TRJM/internal/translator"
	"github.com/7tiSeven/TRJM/internal/validator"
)

const (
	DefaultConfidenceThreshold = 0.75
	DefaultMaxRetries          = 2
)

// ErrInvalidRequest is returned before any stage runs when a request has no
// usable target language.
var ErrInvalidRequest = errors.New("invalid translation request")

type Config struct {
	ConfidenceThreshold  float64 `mapstructure:"confidence_threshold"`
	MaxRetries           int     `mapstructure:"max_retries"`
	LLMPostProcess       bool    `mapstructure:"llm_post_process"`
	VerifyTargetLanguage bool    `mapstructure:"verify_target_language"`
}

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		MaxRetries:          DefaultMaxRetries,
	}
}

// Option overrides a pipeline stage or the logger.
type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func WithAnalyzer(a Analyzer) Option {
	return func(o *Orchestrator) { o.router = a }
}

func WithDrafter(d Drafter) Option {
	return func(o *Orchestrator) { o.translator = d }
}

func WithReviewer(r Reviewer) Option {
	return func(o *Orchestrator) { o.reviewer = r }
}

func WithPostProcessor(p PostProcessor) Option {
	return func(o *Orchestrator) { o.postProcessor = p }
}

func WithVerifier(v LanguageVerifier) Option {
	return func(o *Orchestrator) { o.verifier = v }
}

// Orchestrator holds only configuration and stage instances, none of which
// change after New returns, so one instance serves concurrent requests.
type Orchestrator struct {
	provider      llm.Provider
	config        Config
	logger        *slog.Logger
	router        Analyzer
	translator    Drafter
	reviewer      Reviewer
	postProcessor PostProcessor
	verifier      LanguageVerifier
}

// New builds the default stages on top of provider. Options replace
// individual stages; provider may be nil only if every LLM stage is replaced.
func New(provider llm.Provider, cfg Config, opts ...Option) *Orchestrator {
	if cfg.ConfidenceThreshold < 0 {
		cfg.ConfidenceThreshold = 0
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	o := &Orchestrator{provider: provider, config: cfg}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	if o.router == nil {
		o.router = router.New(provider, o.logger)
	}
	if o.translator == nil {
		o.translator = translator.New(provider, o.logger)
	}
	if o.reviewer == nil {
		o.reviewer = reviewer.New(provider, o.logger)
	}
	if o.postProcessor == nil {
		if cfg.LLMPostProcess {
			o.postProcessor = refiner.New(provider, o.logger)
		} else {
			o.postProcessor = postprocess.New(o.logger)
		}
	}
	if o.verifier == nil && cfg.VerifyTargetLanguage {
		o.verifier = validator.New()
	}
	o.logger = o.logger.With("component", "orchestrator")
	return o
}

func (o *Orchestrator) Config() Config { return o.config }

// attempt is one translator plus reviewer round.
type attempt struct {
	draft  *internal.TranslatorOutput
	review *internal.ReviewerOutput
}

func (a *attempt) confidence() float64 { return a.review.ConfidenceScore }

// run accumulates per-request bookkeeping.
type run struct {
	timings map[string]int64
	usage   internal.Usage
}

func (r *run) since(stage string, start time.Time) {
	r.timings[stage] += time.Since(start).Milliseconds()
}

// Translate runs the full pipeline for one request. It either returns a
// complete result or fails with the first provider error; malformed model
// output never fails the call.
func (o *Orchestrator) Translate(ctx context.Context, req internal.TranslationRequest, glossary []internal.GlossaryEntry) (*internal.TranslationResult, error) {
	if req.TargetLanguage == "" || req.TargetLanguage == internal.LangAuto {
		return nil, fmt.Errorf("%w: target language is required", ErrInvalidRequest)
	}

	start := time.Now()
	logger := o.logger.With("run_id", uuid.NewString())
	r := &run{timings: map[string]int64{
		internal.StageRouter:        0,
		internal.StageTranslator:    0,
		internal.StageReviewer:      0,
		internal.StagePostProcessor: 0,
	}}

	logger.Info("pipeline started",
		"text_len", len(req.Text),
		"source", req.SourceLanguage,
		"target", req.TargetLanguage,
		"glossary_entries", len(glossary))

	t := time.Now()
	route, err := o.router.Analyze(ctx, req.Text, req.TargetLanguage, req.StylePreset)
	r.since(internal.StageRouter, t)
	if err != nil {
		logger.Error("router failed", "error", err)
		return nil, err
	}
	r.usage.Add(route.Usage)

	source := req.SourceLanguage
	if source == "" || source == internal.LangAuto {
		source = route.SourceLanguage
	}
	style := resolveStyle(req.StylePreset, route.RecommendedStyle)
	if err := placeholder.CheckPatterns(req.ProtectedPatterns); err != nil {
		logger.Warn("skipping invalid protected patterns", "error", err)
	}
	tokens := placeholder.Extract(req.Text, req.ProtectedPatterns, route.SpecialElements)
	logger.Debug("request resolved", "source", source, "style", style, "protected_tokens", len(tokens))

	tin := translator.Input{
		Text:            req.Text,
		SourceLanguage:  source,
		TargetLanguage:  req.TargetLanguage,
		Style:           style,
		ProtectedTokens: tokens,
		Glossary:        glossary,
	}

	best, err := o.attempt(ctx, tin, r)
	if err != nil {
		logger.Error("translation attempt failed", "error", err)
		return nil, err
	}

	retries := 0
	for best.confidence() < o.config.ConfidenceThreshold && retries < o.config.MaxRetries {
		retries++
		logger.Info("confidence below threshold, retrying",
			"confidence", best.confidence(),
			"threshold", o.config.ConfidenceThreshold,
			"retry", retries)

		next, err := o.attempt(ctx, tin, r)
		if err != nil {
			logger.Error("retry failed", "retry", retries, "error", err)
			return nil, err
		}
		if next.confidence() > best.confidence() {
			best = next
		} else {
			logger.Debug("retry did not improve confidence, keeping previous best", "confidence", next.confidence())
		}
	}

	t = time.Now()
	post, err := o.postProcessor.Process(ctx, postprocess.Input{
		Translation:     best.review.CorrectedTranslation,
		TargetLanguage:  req.TargetLanguage,
		ProtectedTokens: tokens,
	})
	r.since(internal.StagePostProcessor, t)
	if err != nil {
		logger.Error("post-processing failed", "error", err)
		return nil, err
	}
	r.usage.Add(post.Usage)

	final := post.ProcessedText
	report := o.buildReport(logger, req, best.review, post, tokens, final)

	elapsed := time.Since(start).Milliseconds()
	result := &internal.TranslationResult{
		Translation:    final,
		SourceLanguage: source,
		TargetLanguage: req.TargetLanguage,
		Confidence:     best.confidence(),
		QAReport:       report,
		Retries:        retries,
		Metadata: internal.PipelineMetadata{
			Retries:          retries,
			TotalTokens:      r.usage.TotalTokens,
			ProcessingTimeMs: elapsed,
			AgentTimings:     r.timings,
			CompletedAt:      time.Now().UTC(),
		},
	}
	if o.provider != nil {
		result.Metadata.Provider = o.provider.Name()
		result.Metadata.ModelUsed = o.provider.DefaultModel()
	}

	logger.Info("pipeline completed",
		"confidence", result.Confidence,
		"level", report.ConfidenceLevel,
		"retries", retries,
		"total_tokens", result.Metadata.TotalTokens,
		"elapsed_ms", elapsed)
	return result, nil
}

func (o *Orchestrator) attempt(ctx context.Context, tin translator.Input, r *run) (*attempt, error) {
	t := time.Now()
	draft, err := o.translator.Translate(ctx, tin)
	r.since(internal.StageTranslator, t)
	if err != nil {
		return nil, err
	}
	r.usage.Add(draft.Usage)

	t = time.Now()
	review, err := o.reviewer.Review(ctx, reviewer.Input{
		SourceText:      tin.Text,
		Translation:     draft.Translation,
		SourceLanguage:  tin.SourceLanguage,
		TargetLanguage:  tin.TargetLanguage,
		Style:           tin.Style,
		ProtectedTokens: tin.ProtectedTokens,
		Glossary:        tin.Glossary,
	})
	r.since(internal.StageReviewer, t)
	if err != nil {
		return nil, err
	}
	r.usage.Add(review.Usage)

	if review.CorrectedTranslation == "" {
		review.CorrectedTranslation = draft.Translation
	}
	return &attempt{draft: draft, review: review}, nil
}

func (o *Orchestrator) buildReport(logger *slog.Logger, req internal.TranslationRequest, review *internal.ReviewerOutput, post *internal.PostProcessorOutput, tokens []string, final string) internal.QAReport {
	missing := placeholder.Missing(final, tokens)
	if len(missing) > 0 {
		logger.Warn("final translation is missing protected tokens", "missing", len(missing))
	}

	metrics := computeMetrics(req.Text, final, review.Issues)
	if o.verifier != nil {
		ok, err := o.verifier.IsValid(final, req.TargetLanguage)
		if err != nil {
			logger.Warn("target language verification failed", "error", err)
		}
		metrics.TargetLanguageVerified = &ok
	}

	return internal.QAReport{
		ConfidenceScore:       review.ConfidenceScore,
		ConfidenceLevel:       internal.ConfidenceLevel(review.ConfidenceScore),
		Issues:                review.Issues,
		GlossaryCompliance:    review.GlossaryCompliance,
		ProtectedTokensIntact: review.ProtectedTokensIntact && len(missing) == 0,
		ProtectedTokens:       tokens,
		RiskySpans:            review.RiskySpans,
		ReviewerNotes:         review.ReviewerNotes,
		PostProcessingChanges: post.ChangesMade,
		RTLMarkersAdded:       post.RTLMarkersAdded,
		Metrics:               metrics,
	}
}

// resolveStyle prefers the request's preset and falls back to the router's
// recommendation, then neutral.
func resolveStyle(requested, recommended internal.StylePreset) internal.StylePreset {
	switch {
	case requested != "":
		return requested
	case recommended != "":
		return recommended
	default:
		return internal.StyleNeutral
	}
}

// computeMetrics counts characters as code points. The length ratio is 0 for
// an empty source.
func computeMetrics(source, translation string, issues []internal.QAIssue) internal.QAMetrics {
	src := utf8.RuneCountInString(source)
	dst := utf8.RuneCountInString(translation)
	ratio := 0.0
	if src > 0 {
		ratio = float64(dst) / float64(src)
	}

	bySeverity := lo.CountValuesBy(issues, func(i internal.QAIssue) internal.IssueSeverity { return i.Severity })
	return internal.QAMetrics{
		SourceCharCount:      src,
		TranslationCharCount: dst,
		LengthRatio:          ratio,
		TotalIssues:          len(issues),
		CriticalIssues:       bySeverity[internal.SeverityCritical],
		MajorIssues:          bySeverity[internal.SeverityMajor],
		MinorIssues:          bySeverity[internal.SeverityMinor],
		Suggestions:          bySeverity[internal.SeveritySuggestion],
	}
}
