package postprocess

import (
	"context"
	"log/slog"

	"github.com/7tiSeven/TRJM/internal"
)

// Input is a reviewed translation awaiting final formatting.
type Input struct {
	Translation     string
	TargetLanguage  internal.LanguageCode
	ProtectedTokens []string
}

// Processor is the rule-based post-processing stage. It makes no LLM call.
type Processor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger.With("stage", "post_processor")}
}

// Process applies the Arabic rules when the target is Arabic and returns the
// text unchanged otherwise. The error is always nil.
func (p *Processor) Process(_ context.Context, in Input) (*internal.PostProcessorOutput, error) {
	if in.TargetLanguage != internal.LangArabic {
		return Passthrough(in.Translation), nil
	}

	out := ProcessArabic(in.Translation, in.ProtectedTokens)
	p.logger.Debug("post-processing complete",
		"changes", len(out.ChangesMade),
		"rtl_markers", out.RTLMarkersAdded)
	return out, nil
}

// Passthrough reports text as already final.
func Passthrough(text string) *internal.PostProcessorOutput {
	return &internal.PostProcessorOutput{
		ProcessedText:       text,
		ChangesMade:         []internal.ChangeRecord{},
		FormattingPreserved: true,
	}
}
