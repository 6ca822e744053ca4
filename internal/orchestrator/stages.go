package orchestrator

import (
	"context"

	"github.com/7tiSeven/TRJM/internal"
	"github.com/7tiSeven/TRJM/internal/postprocess"
	"github.com/7tiSeven/TRJM/internal/reviewer"
	"github.com/7tiSeven/TRJM/internal/translator"
)

// Analyzer classifies the source text. Implemented by router.Router.
type Analyzer interface {
	Analyze(ctx context.Context, text string, target internal.LanguageCode, styleHint internal.StylePreset) (*internal.RouterOutput, error)
}

// Drafter produces one draft translation per call. Implemented by
// translator.Translator.
type Drafter interface {
	Translate(ctx context.Context, in translator.Input) (*internal.TranslatorOutput, error)
}

// Reviewer scores a draft and may correct it. Implemented by
// reviewer.Reviewer.
type Reviewer interface {
	Review(ctx context.Context, in reviewer.Input) (*internal.ReviewerOutput, error)
}

// PostProcessor applies final formatting. Implemented by
// postprocess.Processor and refiner.Refiner.
type PostProcessor interface {
	Process(ctx context.Context, in postprocess.Input) (*internal.PostProcessorOutput, error)
}

// LanguageVerifier checks the final text is in the target language.
// Implemented by validator.Validator.
type LanguageVerifier interface {
	IsValid(text string, target internal.LanguageCode) (bool, error)
}
