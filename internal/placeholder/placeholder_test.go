package placeholder_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/7tiSeven/TRJM/internal"
	"github.com/7tiSeven/TRJM/internal/placeholder"
)

func TestExtract_NoProtectedContent(t *testing.T) {
	tokens := placeholder.Extract("Hello, world!", nil, nil)
	if len(tokens) != 0 {
		t.Errorf("expected no tokens, got %v", tokens)
	}
}

func TestExtract_DefaultPatterns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"placeholder", "Use {discount_code} now", []string{"{discount_code}"}},
		{"double curly", "Hi {{name}}!", []string{"{{name}}", "{{name}"}},
		{"format specifiers", "%s has %d items", []string{"%d", "%s"}},
		{"url", "Visit https://example.com/path?x=1 today", []string{"https://example.com/path?x=1"}},
		{"email", "Write to support@example.org.", []string{"support@example.org"}},
		{"html tags", "<b>bold</b>", []string{"</b>", "<b>"}},
		{"do not translate", "Keep [DO NOT TRANSLATE]Acme Corp[/DO NOT TRANSLATE] as is", []string{"[DO NOT TRANSLATE]Acme Corp[/DO NOT TRANSLATE]"}},
		{"inline code", "Run `make build` first", []string{"`make build`"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := placeholder.Extract(tt.text, nil, nil)
			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("expected %q in %v", w, got)
				}
			}
		})
	}
}

func TestExtract_SpecialElements(t *testing.T) {
	elements := []internal.SpecialElement{
		{Type: internal.ElementEntity, Value: "Acme Corp", Protect: true},
		{Type: internal.ElementNumber, Value: "42", Protect: false},
		{Type: internal.ElementTechnicalTerm, Value: "", Protect: true},
	}

	got := placeholder.Extract("Acme Corp sold 42 units", nil, elements)

	if !slices.Contains(got, "Acme Corp") {
		t.Errorf("expected protected element in %v", got)
	}
	if slices.Contains(got, "42") {
		t.Errorf("unprotected element must not be included: %v", got)
	}
	if slices.Contains(got, "") {
		t.Errorf("empty values must not be included: %v", got)
	}
}

func TestExtract_CustomPatterns(t *testing.T) {
	got := placeholder.Extract("Order ORD-1234 and ORD-5678", []string{`ORD-\d+`}, nil)
	if !slices.Contains(got, "ORD-1234") || !slices.Contains(got, "ORD-5678") {
		t.Errorf("expected custom matches, got %v", got)
	}
}

func TestExtract_InvalidCustomPatternSkipped(t *testing.T) {
	got := placeholder.Extract("Order ORD-1234 at https://x.io", []string{`ORD-(\d+`, `ORD-\d+`}, nil)
	if !slices.Contains(got, "ORD-1234") {
		t.Errorf("valid pattern after invalid one must still apply, got %v", got)
	}
	if !slices.Contains(got, "https://x.io") {
		t.Errorf("default patterns must still apply, got %v", got)
	}
}

func TestExtract_Deduplicates(t *testing.T) {
	elements := []internal.SpecialElement{{Type: internal.ElementPlaceholder, Value: "{a}", Protect: true}}
	got := placeholder.Extract("{a} and {a}", nil, elements)
	if len(got) != 1 || got[0] != "{a}" {
		t.Errorf("expected single {a}, got %v", got)
	}
}

func TestMissing(t *testing.T) {
	tokens := []string{"{name}", "https://example.com", "%s"}
	missing := placeholder.Missing("مرحبا {name} https://example.com", tokens)
	if len(missing) != 1 || missing[0] != "%s" {
		t.Errorf("expected [%%s] missing, got %v", missing)
	}
	if got := placeholder.Missing("anything", nil); len(got) != 0 {
		t.Errorf("expected none missing, got %v", got)
	}
}

func TestPromptList(t *testing.T) {
	if got := placeholder.PromptList(nil); got != "None" {
		t.Errorf("expected None, got %q", got)
	}
	if got := placeholder.PromptList([]string{"{a}", "%s"}); got != "- {a}\n- %s" {
		t.Errorf("unexpected list %q", got)
	}
}

func TestCheckPatterns(t *testing.T) {
	if err := placeholder.CheckPatterns([]string{`ORD-\d+`, "  "}); err != nil {
		t.Errorf("expected valid patterns to pass, got %v", err)
	}

	err := placeholder.CheckPatterns([]string{`ORD-(\d+`, `ORD-\d+`, `[a-`})
	if err == nil {
		t.Fatal("expected an error for invalid patterns")
	}
	msg := err.Error()
	if !strings.Contains(msg, `"ORD-(\\d+"`) || !strings.Contains(msg, `"[a-"`) {
		t.Errorf("expected both invalid patterns named, got %q", msg)
	}
}
