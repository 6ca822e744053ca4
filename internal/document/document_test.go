package document

import (
	"strings"
	"testing"
)

func TestParse_PlainText(t *testing.T) {
	content := "First paragraph.\r\n\r\nSecond paragraph\nwith a wrapped line.\n\n  \n\nThird."
	doc := Parse("notes.txt", []byte(content), 0)

	want := []string{"First paragraph.", "Second paragraph\nwith a wrapped line.", "Third."}
	if len(doc.Paragraphs) != len(want) {
		t.Fatalf("expected %d paragraphs, got %+v", len(want), doc.Paragraphs)
	}
	for i, p := range doc.Paragraphs {
		if p.Index != i || p.Text != want[i] || p.Continues || p.Verbatim {
			t.Errorf("paragraph %d = %+v, want text %q", i, p, want[i])
		}
	}
	if doc.Name != "notes.txt" {
		t.Errorf("unexpected name %q", doc.Name)
	}
}

func TestParse_Markdown(t *testing.T) {
	content := "# Title\n\nSome *text*.\n\n```\nx := 1\n```\n"
	doc := Parse("README.md", []byte(content), 0)

	if len(doc.Paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %+v", doc.Paragraphs)
	}
	if doc.Paragraphs[1].Text != "Some text." {
		t.Errorf("unexpected paragraph %q", doc.Paragraphs[1].Text)
	}
	if !doc.Paragraphs[2].Verbatim || doc.Paragraphs[2].Text != "x := 1" {
		t.Errorf("expected verbatim code block, got %+v", doc.Paragraphs[2])
	}
}

func TestParse_ChunksLongParagraphs(t *testing.T) {
	content := "One sentence here. Another sentence there. Visit https://example.com/some/long/path today."
	doc := Parse("long.txt", []byte(content), 30)

	if len(doc.Paragraphs) < 3 {
		t.Fatalf("expected the paragraph to be chunked, got %+v", doc.Paragraphs)
	}
	if doc.Paragraphs[0].Continues {
		t.Error("first piece must not continue a previous paragraph")
	}
	for _, p := range doc.Paragraphs[1:] {
		if !p.Continues {
			t.Errorf("expected piece %d to continue, got %+v", p.Index, p)
		}
	}
	found := false
	for _, p := range doc.Paragraphs {
		if strings.Contains(p.Text, "https://example.com/some/long/path") {
			found = true
		}
	}
	if !found {
		t.Errorf("URL was split across pieces: %+v", doc.Paragraphs)
	}
	if got := doc.Text(); got != content {
		t.Errorf("Text() = %q, want %q", got, content)
	}
}

func TestParse_NormalizesToNFC(t *testing.T) {
	doc := Parse("a.txt", []byte("Cafe\u0301"), 0)
	if doc.Paragraphs[0].Text != "Caf\u00e9" {
		t.Errorf("expected NFC text, got %q", doc.Paragraphs[0].Text)
	}
}

func TestParse_Empty(t *testing.T) {
	doc := Parse("empty.txt", nil, 0)
	if len(doc.Paragraphs) != 0 {
		t.Errorf("expected no paragraphs, got %+v", doc.Paragraphs)
	}
	if doc.Text() != "" {
		t.Errorf("expected empty text, got %q", doc.Text())
	}
}
