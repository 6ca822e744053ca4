package translator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/7tiSeven/TRJM/internal"
	"github.com/7tiSeven/TRJM/internal/llm"
)

func testInput() Input {
	return Input{
		Text:            "Please visit https://example.com for {discount_code} info.",
		SourceLanguage:  internal.LangEnglish,
		TargetLanguage:  internal.LangArabic,
		Style:           internal.StyleNeutral,
		ProtectedTokens: []string{"https://example.com", "{discount_code}"},
		Glossary: []internal.GlossaryEntry{
			{SourceTerm: "info", TargetTerm: "معلومات", CaseSensitive: true, Context: "marketing"},
		},
	}
}

func TestTranslator_Translate_ParsesResponse(t *testing.T) {
	mock := llm.NewMock(`{
		"translation": "يرجى زيارة https://example.com للحصول على معلومات {discount_code}.",
		"protected_tokens_preserved": [
			{"original": "https://example.com", "preserved": true},
			{"original": "{discount_code}"}
		],
		"glossary_terms_applied": [
			{"source_term": "info", "applied_translation": "معلومات", "count": 2},
			{"source_term": "visit", "applied_translation": "زيارة"}
		],
		"translator_notes": "kept URL"
	}`)
	tr := New(mock, nil)

	out, err := tr.Translate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.Translation, "{discount_code}") {
		t.Errorf("unexpected translation %q", out.Translation)
	}
	if len(out.ProtectedTokensPreserved) != 2 || !out.ProtectedTokensPreserved[1].Preserved {
		t.Errorf("expected preserved to default true, got %+v", out.ProtectedTokensPreserved)
	}
	if len(out.GlossaryTermsApplied) != 2 {
		t.Fatalf("expected 2 glossary applications, got %d", len(out.GlossaryTermsApplied))
	}
	if out.GlossaryTermsApplied[0].Count != 2 || out.GlossaryTermsApplied[1].Count != 1 {
		t.Errorf("unexpected counts %+v", out.GlossaryTermsApplied)
	}
	if out.TranslatorNotes != "kept URL" {
		t.Errorf("unexpected notes %q", out.TranslatorNotes)
	}
	if out.Usage.TotalTokens == 0 {
		t.Error("expected usage to be recorded")
	}
}

func TestTranslator_Translate_PromptContents(t *testing.T) {
	mock := llm.NewMock(`{"translation": "ok"}`)
	tr := New(mock, nil)

	if _, err := tr.Translate(context.Background(), testInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := mock.Calls()[0]
	user := call.Messages[1].Content
	for _, want := range []string{
		"- https://example.com",
		"- {discount_code}",
		"- info → معلومات (case-sensitive) [context: marketing]",
		"STYLE: neutral",
		"Modern Standard Arabic",
		"TEXT TO TRANSLATE:\nPlease visit",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
	if call.Options.Temperature != temperature || call.Options.MaxTokens != maxTokens || !call.Options.JSON {
		t.Errorf("unexpected options %+v", call.Options)
	}
}

func TestTranslator_Translate_StyleInstructionsDiffer(t *testing.T) {
	seen := map[string]bool{}
	for _, style := range internal.StylePresets {
		text := instructionsFor(style, internal.LangArabic)
		if text == "" {
			t.Errorf("no instructions for %s", style)
		}
		if seen[text] {
			t.Errorf("instructions for %s duplicate another preset", style)
		}
		seen[text] = true
	}
	if strings.Contains(instructionsFor(internal.StyleNeutral, internal.LangFrench), "Arabic") {
		t.Error("expected non-Arabic targets to drop MSA wording")
	}
}

func TestTranslator_Translate_EmptyGlossaryAndTokens(t *testing.T) {
	mock := llm.NewMock(`{"translation": "Bonjour"}`)
	tr := New(mock, nil)

	in := Input{Text: "Hello", SourceLanguage: internal.LangEnglish, TargetLanguage: internal.LangFrench}
	out, err := tr.Translate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Translation != "Bonjour" {
		t.Errorf("expected Bonjour, got %q", out.Translation)
	}

	user := mock.Calls()[0].Messages[1].Content
	if strings.Count(user, "None") != 2 {
		t.Errorf("expected None for tokens and glossary, prompt:\n%s", user)
	}
	if !strings.Contains(user, "STYLE: neutral") {
		t.Error("expected empty style to default to neutral")
	}
}

func TestTranslator_Translate_MalformedJSONFallsBackToRaw(t *testing.T) {
	mock := llm.NewMock("Here's the translation: يرجى زيارة https://example.com")
	tr := New(mock, nil)

	out, err := tr.Translate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("malformed translator output must not fail: %v", err)
	}
	if out.Translation != "يرجى زيارة https://example.com" {
		t.Errorf("expected cleaned raw text, got %q", out.Translation)
	}
	if out.TranslatorNotes != parseFailureNote {
		t.Errorf("expected degradation note, got %q", out.TranslatorNotes)
	}
	if len(out.ProtectedTokensPreserved) != 2 {
		t.Fatalf("expected token status for both tokens, got %+v", out.ProtectedTokensPreserved)
	}
	if !out.ProtectedTokensPreserved[0].Preserved || out.ProtectedTokensPreserved[1].Preserved {
		t.Errorf("expected URL preserved and placeholder lost, got %+v", out.ProtectedTokensPreserved)
	}
}

func TestTranslator_Translate_ObjectWithoutTranslation(t *testing.T) {
	tr := New(llm.NewMock(`{"notes": "nothing"}`), nil)

	out, err := tr.Translate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.TranslatorNotes != parseFailureNote {
		t.Errorf("expected degradation note, got %q", out.TranslatorNotes)
	}
}

func TestTranslator_Translate_ProviderError(t *testing.T) {
	mock := &llm.MockProvider{Handler: func([]llm.Message, llm.Options) (string, error) {
		return "", &llm.ProviderError{Kind: llm.KindAuthentication, Provider: "mock", StatusCode: 401}
	}}
	tr := New(mock, nil)

	_, err := tr.Translate(context.Background(), testInput())
	if !errors.Is(err, llm.ErrAuthentication) {
		t.Errorf("expected ErrAuthentication, got %v", err)
	}
}

func TestGlossaryList_Sorted(t *testing.T) {
	got := GlossaryList([]internal.GlossaryEntry{
		{SourceTerm: "zeta", TargetTerm: "z"},
		{SourceTerm: "alpha", TargetTerm: "a"},
	})
	if got != "- alpha → a\n- zeta → z" {
		t.Errorf("unexpected glossary list %q", got)
	}
}
