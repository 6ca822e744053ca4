package translator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/7tiSeven/TRJM/internal"
	"github.com/7tiSeven/TRJM/internal/placeholder"
)

// styleInstructions holds register guidance per preset. The MSA wording only
// applies when the target is Arabic; other targets get the generic register.
var styleInstructions = map[internal.StylePreset]string{
	internal.StyleFormalMSA: `Write in formal Modern Standard Arabic with an elevated register.
Avoid colloquial expressions. Prefer formal pronouns and verb forms, as in official correspondence and academic writing.`,
	internal.StyleNeutral: `Write clear, professional prose in Modern Standard Arabic.
Keep the tone accessible without becoming casual, as in ordinary business communication.`,
	internal.StyleMarketing: `Write engaging, persuasive copy. Adapt idioms so they land with the target audience.
Keep the brand voice and a natural flow; a slightly lighter register is acceptable.`,
	internal.StyleGovernmentMemo: `Write in a highly formal administrative register using official terminology.
Prefer the passive voice where natural, keep the tone impersonal and follow official memo conventions.`,
}

func instructionsFor(style internal.StylePreset, target internal.LanguageCode) string {
	text, ok := styleInstructions[style]
	if !ok {
		text = styleInstructions[internal.StyleNeutral]
	}
	if target != internal.LangArabic {
		text = strings.ReplaceAll(text, "Modern Standard Arabic", target.DisplayName())
	}
	return text
}

// GlossaryList renders glossary entries for a prompt, sorted by source term.
func GlossaryList(entries []internal.GlossaryEntry) string {
	if len(entries) == 0 {
		return "None"
	}
	sorted := make([]internal.GlossaryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SourceTerm < sorted[j].SourceTerm })

	var sb strings.Builder
	for i, e := range sorted {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "- %s → %s", e.SourceTerm, e.TargetTerm)
		if e.CaseSensitive {
			sb.WriteString(" (case-sensitive)")
		}
		if e.Context != "" {
			fmt.Fprintf(&sb, " [context: %s]", e.Context)
		}
	}
	return sb.String()
}

func buildUserPrompt(in Input) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate the following text from %s (%s) to %s (%s).\n\n",
		in.SourceLanguage.DisplayName(), in.SourceLanguage, in.TargetLanguage.DisplayName(), in.TargetLanguage)
	fmt.Fprintf(&sb, "STYLE: %s\n%s\n\n", in.Style, instructionsFor(in.Style, in.TargetLanguage))
	fmt.Fprintf(&sb, "PROTECTED TOKENS (copy exactly, never translate):\n%s\n\n", placeholder.PromptList(in.ProtectedTokens))
	fmt.Fprintf(&sb, "GLOSSARY (use exactly these translations):\n%s\n\n", GlossaryList(in.Glossary))
	sb.WriteString("Return the result as a JSON object.\n\n")
	sb.WriteString("TEXT TO TRANSLATE:\n")
	sb.WriteString(in.Text)
	return sb.String()
}

const systemPrompt = `You are an expert translator producing publication-quality, culturally appropriate translations.

Rules:
1. Protected tokens must appear in the translation exactly as given. Do not translate, transliterate, reorder or reformat them.
2. Glossary entries are mandatory: whenever a source term occurs, use the listed translation.
3. Keep the structure of the source: paragraphs, line breaks, lists and markdown.
4. Adapt idioms for the target culture instead of translating them literally.
5. Use consistent terminology throughout.

For Arabic output use Arabic punctuation (، ؛ ؟) and keep numbers and Latin-script runs readable in right-to-left text.

Respond ONLY with a JSON object:
{
  "translation": "the translated text",
  "protected_tokens_preserved": [{"original": "token", "preserved": true}],
  "glossary_terms_applied": [{"source_term": "term", "applied_translation": "translation", "count": 1}],
  "translator_notes": "optional notes on difficult choices"
}`
