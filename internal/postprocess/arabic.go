package postprocess

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/7tiSeven/TRJM/internal"
)

const rlm = '\u200f'

// arabicPunctuation maps Western marks to their Arabic equivalents.
var arabicPunctuation = map[rune]rune{
	',': '،',
	';': '؛',
	'?': '؟',
}

// cell is one rune of the text being rewritten. Locked cells belong to a
// protected-token occurrence and are never modified, moved or removed.
type cell struct {
	r      rune
	locked bool
}

// ProcessArabic applies the Arabic typography rules in order: punctuation,
// spacing around punctuation, space collapsing, RTL marks after digit runs,
// and guillemet quotes. Protected-token occurrences are left untouched.
func ProcessArabic(text string, tokens []string) *internal.PostProcessorOutput {
	cells := lockCells(text, tokens)
	var changes []internal.ChangeRecord

	cells, punct := replacePunctuation(cells)
	changes = append(changes, punct...)

	cells = fixPunctuationSpacing(cells)

	cells, removed := collapseSpaces(cells)
	if removed > 0 {
		changes = append(changes, internal.ChangeRecord{Type: "spacing", Original: "  ", Replacement: " ", Count: removed})
	}

	cells, markers := insertRTLMarks(cells)

	if !tokensContainQuotes(tokens) {
		pairs := replaceQuotePairs(cells, '"') + replaceQuotePairs(cells, '\'')
		if pairs > 0 {
			changes = append(changes, internal.ChangeRecord{Type: "typography", Original: `"..."`, Replacement: "«...»", Count: pairs})
		}
	}

	if changes == nil {
		changes = []internal.ChangeRecord{}
	}
	return &internal.PostProcessorOutput{
		ProcessedText:       strings.TrimSpace(render(cells)),
		ChangesMade:         changes,
		RTLMarkersAdded:     markers,
		FormattingPreserved: true,
	}
}

// lockCells marks every rune covered by any occurrence of any token,
// including overlapping occurrences.
func lockCells(text string, tokens []string) []cell {
	locked := make([]bool, len(text))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		for start := 0; start < len(text); {
			i := strings.Index(text[start:], tok)
			if i < 0 {
				break
			}
			pos := start + i
			for k := pos; k < pos+len(tok); k++ {
				locked[k] = true
			}
			_, size := utf8.DecodeRuneInString(text[pos:])
			start = pos + size
		}
	}

	cells := make([]cell, 0, utf8.RuneCountInString(text))
	for i, r := range text {
		cells = append(cells, cell{r: r, locked: locked[i]})
	}
	return cells
}

func render(cells []cell) string {
	var sb strings.Builder
	sb.Grow(len(cells))
	for _, c := range cells {
		sb.WriteRune(c.r)
	}
	return sb.String()
}

func replacePunctuation(cells []cell) ([]cell, []internal.ChangeRecord) {
	var changes []internal.ChangeRecord
	index := map[rune]int{}
	for i, c := range cells {
		repl, ok := arabicPunctuation[c.r]
		if !ok || c.locked {
			continue
		}
		cells[i].r = repl
		if idx, seen := index[c.r]; seen {
			changes[idx].Count++
			continue
		}
		index[c.r] = len(changes)
		changes = append(changes, internal.ChangeRecord{
			Type:        "punctuation",
			Original:    string(c.r),
			Replacement: string(repl),
			Count:       1,
		})
	}
	return cells, changes
}

func isArabicPunct(r rune) bool {
	return r == '،' || r == '؛' || r == '؟'
}

func isFreeSpace(c cell) bool {
	return !c.locked && unicode.IsSpace(c.r)
}

// fixPunctuationSpacing drops whitespace right before an Arabic mark and adds
// one space after a mark that is followed by anything but whitespace.
func fixPunctuationSpacing(cells []cell) []cell {
	out := make([]cell, 0, len(cells)+8)
	for i := 0; i < len(cells); i++ {
		c := cells[i]
		if isFreeSpace(c) {
			j := i
			for j < len(cells) && isFreeSpace(cells[j]) {
				j++
			}
			if j < len(cells) && !cells[j].locked && isArabicPunct(cells[j].r) {
				i = j - 1
				continue
			}
			out = append(out, cells[i:j]...)
			i = j - 1
			continue
		}
		out = append(out, c)
		if !c.locked && isArabicPunct(c.r) && i+1 < len(cells) && !unicode.IsSpace(cells[i+1].r) {
			out = append(out, cell{r: ' '})
		}
	}
	return out
}

func collapseSpaces(cells []cell) ([]cell, int) {
	out := make([]cell, 0, len(cells))
	removed := 0
	for _, c := range cells {
		if c.r == ' ' && !c.locked && len(out) > 0 {
			prev := out[len(out)-1]
			if prev.r == ' ' && !prev.locked {
				removed++
				continue
			}
		}
		out = append(out, c)
	}
	return out, removed
}

func isArabicScript(r rune) bool {
	return r >= 0x0600 && r <= 0x06FF
}

// insertRTLMarks adds U+200F after a standalone digit run that is followed,
// after optional whitespace, by an Arabic-script character other than a digit.
func insertRTLMarks(cells []cell) ([]cell, int) {
	out := make([]cell, 0, len(cells)+4)
	added := 0
	for i := 0; i < len(cells); {
		if !unicode.IsDigit(cells[i].r) {
			out = append(out, cells[i])
			i++
			continue
		}

		j := i
		locked := false
		for j < len(cells) && unicode.IsDigit(cells[j].r) {
			locked = locked || cells[j].locked
			j++
		}
		out = append(out, cells[i:j]...)

		standalone := i == 0 || !unicode.IsLetter(cells[i-1].r)
		k := j
		for k < len(cells) && unicode.IsSpace(cells[k].r) {
			k++
		}
		if !locked && standalone && k < len(cells) && isArabicScript(cells[k].r) && !unicode.IsDigit(cells[k].r) {
			out = append(out, cell{r: rlm})
			added++
		}
		i = j
	}
	return out, added
}

func tokensContainQuotes(tokens []string) bool {
	for _, t := range tokens {
		if strings.ContainsAny(t, `"'`) {
			return true
		}
	}
	return false
}

// replaceQuotePairs turns q...q spans with non-empty content into «...»,
// scanning left to right without overlap. It returns the number of pairs.
func replaceQuotePairs(cells []cell, q rune) int {
	pairs := 0
	for i := 0; i < len(cells); i++ {
		if cells[i].r != q || cells[i].locked {
			continue
		}
		j := i + 1
		for j < len(cells) && cells[j].r != q {
			j++
		}
		if j >= len(cells) {
			break
		}
		if j == i+1 {
			continue
		}
		cells[i].r = '«'
		cells[j].r = '»'
		pairs++
		i = j
	}
	return pairs
}
