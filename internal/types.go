package internal

import "time"

// TranslationRequest is the immutable input of a single pipeline run.
type TranslationRequest struct {
	Text              string       `json:"text"`
	SourceLanguage    LanguageCode `json:"source_language"`
	TargetLanguage    LanguageCode `json:"target_language"`
	StylePreset       StylePreset  `json:"style_preset"`
	GlossaryID        string       `json:"glossary_id,omitempty"`
	ProtectedPatterns []string     `json:"protected_patterns,omitempty"`
}

type GlossaryEntry struct {
	SourceTerm    string `json:"source_term"`
	TargetTerm    string `json:"target_term"`
	CaseSensitive bool   `json:"case_sensitive"`
	Context       string `json:"context,omitempty"`
}

type Position struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SpecialElement is a span of source text flagged by the router.
type SpecialElement struct {
	Type     SpecialElementType `json:"type"`
	Value    string             `json:"value"`
	Protect  bool               `json:"protect"`
	Position *Position          `json:"position,omitempty"`
}

// Usage counts the tokens consumed by one or more LLM calls.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

type RouterOutput struct {
	SourceLanguage           LanguageCode     `json:"source_language"`
	SourceLanguageConfidence float64          `json:"source_language_confidence"`
	ContentType              ContentType      `json:"content_type"`
	FormalityLevel           FormalityLevel   `json:"formality_level"`
	SpecialElements          []SpecialElement `json:"special_elements"`
	RecommendedStyle         StylePreset      `json:"recommended_style"`
	ComplexityScore          float64          `json:"complexity_score"`
	Notes                    string           `json:"notes,omitempty"`

	Usage Usage `json:"-"`
}

type TokenPreservation struct {
	Original  string `json:"original"`
	Preserved bool   `json:"preserved"`
}

type GlossaryApplication struct {
	SourceTerm         string `json:"source_term"`
	AppliedTranslation string `json:"applied_translation"`
	Count              int    `json:"count"`
}

type TranslatorOutput struct {
	Translation              string                `json:"translation"`
	ProtectedTokensPreserved []TokenPreservation   `json:"protected_tokens_preserved"`
	GlossaryTermsApplied     []GlossaryApplication `json:"glossary_terms_applied"`
	TranslatorNotes          string                `json:"translator_notes,omitempty"`

	Usage Usage `json:"-"`
}

type QAIssue struct {
	Category           IssueCategory `json:"category"`
	Severity           IssueSeverity `json:"severity"`
	Description        string        `json:"description"`
	SourceSegment      string        `json:"source_segment,omitempty"`
	TranslationSegment string        `json:"translation_segment,omitempty"`
	SuggestedFix       string        `json:"suggested_fix,omitempty"`
}

// RiskySpan marks a segment for human review. The pipeline never acts on it.
type RiskySpan struct {
	Text      string    `json:"text"`
	Reason    string    `json:"reason"`
	RiskLevel string    `json:"risk_level"`
	Position  *Position `json:"position,omitempty"`
}

type ReviewerOutput struct {
	ConfidenceScore       float64     `json:"confidence_score"`
	Issues                []QAIssue   `json:"issues"`
	CorrectedTranslation  string      `json:"corrected_translation"`
	GlossaryCompliance    bool        `json:"glossary_compliance"`
	ProtectedTokensIntact bool        `json:"protected_tokens_intact"`
	RiskySpans            []RiskySpan `json:"risky_spans"`
	ReviewerNotes         string      `json:"reviewer_notes,omitempty"`

	Usage Usage `json:"-"`
}

type ChangeRecord struct {
	Type        string `json:"type"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Count       int    `json:"count"`
}

type PostProcessorOutput struct {
	ProcessedText       string         `json:"processed_text"`
	ChangesMade         []ChangeRecord `json:"changes_made"`
	RTLMarkersAdded     int            `json:"rtl_markers_added"`
	FormattingPreserved bool           `json:"formatting_preserved"`

	Usage Usage `json:"-"`
}

type QAMetrics struct {
	SourceCharCount      int     `json:"source_char_count"`
	TranslationCharCount int     `json:"translation_char_count"`
	LengthRatio          float64 `json:"length_ratio"`
	TotalIssues          int     `json:"total_issues"`
	CriticalIssues       int     `json:"critical_issues"`
	MajorIssues          int     `json:"major_issues"`
	MinorIssues          int     `json:"minor_issues"`
	Suggestions          int     `json:"suggestions"`

	// TargetLanguageVerified is nil when verification did not run.
	TargetLanguageVerified *bool `json:"target_language_verified,omitempty"`
}

type QAReport struct {
	ConfidenceScore       float64        `json:"confidence_score"`
	ConfidenceLevel       string         `json:"confidence_level"`
	Issues                []QAIssue      `json:"issues"`
	GlossaryCompliance    bool           `json:"glossary_compliance"`
	ProtectedTokensIntact bool           `json:"protected_tokens_intact"`
	ProtectedTokens       []string       `json:"protected_tokens"`
	RiskySpans            []RiskySpan    `json:"risky_spans"`
	ReviewerNotes         string         `json:"reviewer_notes,omitempty"`
	PostProcessingChanges []ChangeRecord `json:"post_processing_changes"`
	RTLMarkersAdded       int            `json:"rtl_markers_added"`
	Metrics               QAMetrics      `json:"metrics"`
}

const (
	StageRouter        = "router_ms"
	StageTranslator    = "translator_ms"
	StageReviewer      = "reviewer_ms"
	StagePostProcessor = "post_processor_ms"
)

type PipelineMetadata struct {
	Provider         string           `json:"provider,omitempty"`
	ModelUsed        string           `json:"model_used"`
	Retries          int              `json:"retries"`
	TotalTokens      int              `json:"total_tokens"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
	AgentTimings     map[string]int64 `json:"agent_timings"`
	CompletedAt      time.Time        `json:"completed_at"`
}

// TranslationResult is the only output of a pipeline run.
type TranslationResult struct {
	Translation    string           `json:"translation"`
	SourceLanguage LanguageCode     `json:"source_language"`
	TargetLanguage LanguageCode     `json:"target_language"`
	Confidence     float64          `json:"confidence"`
	QAReport       QAReport         `json:"qa_report"`
	Retries        int              `json:"retries"`
	Metadata       PipelineMetadata `json:"metadata"`
}

// ConfidenceLevel buckets a reviewer confidence score.
func ConfidenceLevel(score float64) string {
	switch {
	case score >= 0.90:
		return "excellent"
	case score >= 0.75:
		return "good"
	case score >= 0.50:
		return "acceptable"
	case score >= 0.25:
		return "poor"
	default:
		return "unacceptable"
	}
}
