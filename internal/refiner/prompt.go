package refiner

import (
	"fmt"

	"github.com/7tiSeven/TRJM/internal/placeholder"
	"github.com/7tiSeven/TRJM/internal/postprocess"
)

const systemPrompt = `You are a typography editor for Arabic and multilingual text.
Apply final formatting corrections without changing the meaning.

TASKS:
1. Replace Western punctuation with Arabic equivalents (comma → ،, semicolon → ؛, question mark → ؟)
2. Add a right-to-left mark (U+200F) after numbers that are followed by Arabic text
3. Remove extra spaces and fix spacing around punctuation
4. Use Arabic quotation marks « »
5. Keep protected tokens exactly as they are

DO NOT:
- Change the meaning of any text
- Modify protected tokens
- Add or remove content
- Translate anything

Respond with a single JSON object:
{
  "processed_text": "...",
  "changes_made": [{"type": "punctuation|spacing|typography", "original": "...", "replacement": "...", "count": 1}],
  "rtl_markers_added": 0,
  "formatting_preserved": true
}`

func buildUserPrompt(in postprocess.Input) string {
	return fmt.Sprintf(`Apply post-processing to the following %s text:

---
%s
---

PROTECTED TOKENS (keep exactly as-is):
%s

Apply typography, punctuation, and RTL formatting corrections.`,
		in.TargetLanguage.DisplayName(), in.Translation, placeholder.PromptList(in.ProtectedTokens))
}
