package document

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/7tiSeven/TRJM/internal"
)

// DefaultConcurrency is the number of paragraphs translated at once.
const DefaultConcurrency = 4

// Pipeline runs one translation. Implemented by orchestrator.Orchestrator.
type Pipeline interface {
	Translate(ctx context.Context, req internal.TranslationRequest, glossary []internal.GlossaryEntry) (*internal.TranslationResult, error)
}

type ParagraphResult struct {
	Index       int    `json:"index"`
	Source      string `json:"source"`
	Translation string `json:"translation"`
	// Result is nil for blank and verbatim paragraphs.
	Result *internal.TranslationResult `json:"result,omitempty"`
}

type Result struct {
	Name       string            `json:"name"`
	Text       string            `json:"text"`
	Paragraphs []ParagraphResult `json:"paragraphs"`
	Translated int               `json:"translated"`
	// MinConfidence is the lowest paragraph confidence, 0 when nothing was
	// translated.
	MinConfidence float64 `json:"min_confidence"`
	Retries       int     `json:"retries"`
	TotalTokens   int     `json:"total_tokens"`
}

type Translator struct {
	pipeline    Pipeline
	concurrency int
	logger      *slog.Logger
}

func NewTranslator(pipeline Pipeline, concurrency int, logger *slog.Logger) *Translator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{
		pipeline:    pipeline,
		concurrency: concurrency,
		logger:      logger.With("component", "document"),
	}
}

// Translate runs the pipeline once per non-blank, non-verbatim paragraph,
// using tmpl for every field except Text. The first paragraph error cancels
// the remaining work and fails the whole call.
func (t *Translator) Translate(ctx context.Context, doc *Document, tmpl internal.TranslationRequest, glossary []internal.GlossaryEntry) (*Result, error) {
	results := make([]ParagraphResult, len(doc.Paragraphs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)

	for i, p := range doc.Paragraphs {
		results[i] = ParagraphResult{Index: p.Index, Source: p.Text, Translation: p.Text}
		if p.Verbatim || strings.TrimSpace(p.Text) == "" {
			continue
		}

		g.Go(func() error {
			req := tmpl
			req.Text = p.Text
			res, err := t.pipeline.Translate(gctx, req, glossary)
			if err != nil {
				return fmt.Errorf("paragraph %d: %w", p.Index, err)
			}
			results[i].Translation = res.Translation
			results[i].Result = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.logger.Error("document translation failed", "document", doc.Name, "error", err)
		return nil, err
	}

	out := &Result{Name: doc.Name, Paragraphs: results}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Translation
		if r.Result == nil {
			continue
		}
		if out.Translated == 0 || r.Result.Confidence < out.MinConfidence {
			out.MinConfidence = r.Result.Confidence
		}
		out.Translated++
		out.Retries += r.Result.Retries
		out.TotalTokens += r.Result.Metadata.TotalTokens
	}
	out.Text = join(doc.Paragraphs, texts)

	t.logger.Info("document translated",
		"document", doc.Name,
		"paragraphs", len(results),
		"translated", out.Translated,
		"min_confidence", out.MinConfidence)
	return out, nil
}
