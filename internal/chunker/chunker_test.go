package chunker

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunk(t *testing.T) {
	tag := `<a href="https://x.com">`

	tests := []struct {
		name      string
		text      string
		maxChars  int
		protected []string
		expected  []string
	}{
		{
			name:     "fits",
			text:     "Hello, world!",
			maxChars: 100,
			expected: []string{"Hello, world!"},
		},
		{
			name:     "no limit",
			text:     strings.Repeat("word ", 50),
			maxChars: 0,
			expected: []string{strings.Repeat("word ", 50)},
		},
		{
			name:     "empty",
			text:     "",
			maxChars: 10,
			expected: []string{""},
		},
		{
			name:     "blank line preferred",
			text:     "First paragraph text here.\n\nSecond paragraph text here.",
			maxChars: 40,
			expected: []string{"First paragraph text here.", "Second paragraph text here."},
		},
		{
			name:     "sentence boundary",
			text:     "One two three. Four five six. Seven.",
			maxChars: 20,
			expected: []string{"One two three.", "Four five six.", "Seven."},
		},
		{
			name:     "arabic question mark ends a sentence",
			text:     "هل وصلت الرسالة؟ نعم وصلت اليوم. شكرا لك على المتابعة",
			maxChars: 30,
			expected: []string{"هل وصلت الرسالة؟", "نعم وصلت اليوم.", "شكرا لك على المتابعة"},
		},
		{
			name:     "word boundary",
			text:     "one two three four five six",
			maxChars: 10,
			expected: []string{"one two", "three", "four five", "six"},
		},
		{
			name:     "hard cut",
			text:     strings.Repeat("x", 25),
			maxChars: 10,
			expected: []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)},
		},
		{
			name:      "protected token kept whole",
			text:      "aaaa bbbb " + tag + "cc</a>",
			maxChars:  15,
			protected: []string{tag},
			expected:  []string{"aaaa bbbb", tag, "cc</a>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.text, tt.maxChars, tt.protected...)
			if !slices.Equal(got, tt.expected) {
				t.Errorf("Chunk() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestChunk_RespectsLimit(t *testing.T) {
	text := strings.Repeat("كلمة عربية وأخرى. ", 40)
	chunks := Chunk(text, 50)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 50 || n == 0 {
			t.Errorf("chunk %d has %d runes, want 1..50", i, n)
		}
	}
	if got, want := strings.Join(chunks, " "), strings.TrimSpace(text); got != want {
		t.Errorf("rejoined text differs from input")
	}
}

func TestChunk_RepeatedTokenOccurrences(t *testing.T) {
	tok := "{customer_name}"
	text := strings.Repeat("Dear "+tok+" ", 6)

	for _, c := range Chunk(text, 20, tok) {
		if strings.Contains(c, "{") != strings.Contains(c, "}") {
			t.Errorf("chunk %q splits a protected token", c)
		}
	}
}

func TestForbiddenCuts(t *testing.T) {
	text := "ab{x}é{x}"
	forbidden := forbiddenCuts(text, utf8.RuneCountInString(text), []string{"{x}", ""})

	// Runes: a b { x } é { x } at indices 0..8.
	want := []int{3, 4, 7, 8}
	for i, f := range forbidden {
		if f != slices.Contains(want, i) {
			t.Errorf("forbidden[%d] = %v", i, f)
		}
	}
}
