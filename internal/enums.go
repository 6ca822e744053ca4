package internal

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type LanguageCode string

const (
	LangAuto    LanguageCode = "auto"
	LangEnglish LanguageCode = "en"
	LangArabic  LanguageCode = "ar"
	LangFrench  LanguageCode = "fr"
	LangGerman  LanguageCode = "de"
	LangSpanish LanguageCode = "es"
)

// Languages lists the concrete (non-auto) languages the pipeline translates between.
var Languages = []LanguageCode{LangEnglish, LangArabic, LangFrench, LangGerman, LangSpanish}

// ParseLanguageCode accepts a bare code ("ar"), a BCP 47 tag ("ar-SA"), an
// English language name ("Arabic") or "auto". The second return value is
// false when the input names no supported language.
func ParseLanguageCode(s string) (LanguageCode, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "", false
	}
	if s == string(LangAuto) {
		return LangAuto, true
	}
	if tag, err := language.Parse(s); err == nil {
		base, _ := tag.Base()
		if code, ok := parseEnum(base.String(), Languages); ok {
			return code, true
		}
	}
	for _, code := range Languages {
		if strings.EqualFold(code.DisplayName(), s) {
			return code, true
		}
	}
	return "", false
}

// DisplayName returns the English name of the language, e.g. "Arabic".
func (c LanguageCode) DisplayName() string {
	if c == LangAuto || c == "" {
		return "auto-detected language"
	}
	tag, err := language.Parse(string(c))
	if err != nil {
		return string(c)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return string(c)
}

// IsRTL reports whether the language is written right to left.
func (c LanguageCode) IsRTL() bool {
	return c == LangArabic
}

type StylePreset string

const (
	StyleFormalMSA      StylePreset = "formal_msa"
	StyleNeutral        StylePreset = "neutral"
	StyleMarketing      StylePreset = "marketing"
	StyleGovernmentMemo StylePreset = "government_memo"
)

var StylePresets = []StylePreset{StyleFormalMSA, StyleNeutral, StyleMarketing, StyleGovernmentMemo}

func ParseStylePreset(s string) (StylePreset, bool) {
	return parseEnum(s, StylePresets)
}

type ContentType string

const (
	ContentGeneral    ContentType = "general"
	ContentEmail      ContentType = "email"
	ContentLegal      ContentType = "legal"
	ContentTechnical  ContentType = "technical"
	ContentMarketing  ContentType = "marketing"
	ContentUIStrings  ContentType = "ui_strings"
	ContentGovernment ContentType = "government"
)

var ContentTypes = []ContentType{
	ContentGeneral, ContentEmail, ContentLegal, ContentTechnical,
	ContentMarketing, ContentUIStrings, ContentGovernment,
}

func ParseContentType(s string) (ContentType, bool) {
	return parseEnum(s, ContentTypes)
}

type FormalityLevel string

const (
	FormalityInformal     FormalityLevel = "informal"
	FormalityNeutral      FormalityLevel = "neutral"
	FormalityFormal       FormalityLevel = "formal"
	FormalityHighlyFormal FormalityLevel = "highly_formal"
)

var FormalityLevels = []FormalityLevel{FormalityInformal, FormalityNeutral, FormalityFormal, FormalityHighlyFormal}

func ParseFormalityLevel(s string) (FormalityLevel, bool) {
	return parseEnum(s, FormalityLevels)
}

type IssueSeverity string

const (
	SeverityCritical   IssueSeverity = "critical"
	SeverityMajor      IssueSeverity = "major"
	SeverityMinor      IssueSeverity = "minor"
	SeveritySuggestion IssueSeverity = "suggestion"
)

var IssueSeverities = []IssueSeverity{SeverityCritical, SeverityMajor, SeverityMinor, SeveritySuggestion}

func ParseIssueSeverity(s string) (IssueSeverity, bool) {
	return parseEnum(s, IssueSeverities)
}

type IssueCategory string

const (
	CategoryMeaning         IssueCategory = "meaning"
	CategoryOmission        IssueCategory = "omission"
	CategoryAddition        IssueCategory = "addition"
	CategoryNumbers         IssueCategory = "numbers"
	CategoryEntities        IssueCategory = "entities"
	CategoryGlossary        IssueCategory = "glossary"
	CategoryProtectedTokens IssueCategory = "protected_tokens"
	CategoryGrammar         IssueCategory = "grammar"
	CategoryPunctuation     IssueCategory = "punctuation"
	CategoryFormatting      IssueCategory = "formatting"
	CategoryLeftoverSource  IssueCategory = "leftover_source"
	CategoryCultural        IssueCategory = "cultural"
)

var IssueCategories = []IssueCategory{
	CategoryMeaning, CategoryOmission, CategoryAddition, CategoryNumbers,
	CategoryEntities, CategoryGlossary, CategoryProtectedTokens, CategoryGrammar,
	CategoryPunctuation, CategoryFormatting, CategoryLeftoverSource, CategoryCultural,
}

func ParseIssueCategory(s string) (IssueCategory, bool) {
	return parseEnum(s, IssueCategories)
}

type SpecialElementType string

const (
	ElementURL           SpecialElementType = "url"
	ElementEmail         SpecialElementType = "email"
	ElementPlaceholder   SpecialElementType = "placeholder"
	ElementCode          SpecialElementType = "code"
	ElementHTML          SpecialElementType = "html"
	ElementBracketed     SpecialElementType = "bracketed"
	ElementNumber        SpecialElementType = "number"
	ElementDate          SpecialElementType = "date"
	ElementCurrency      SpecialElementType = "currency"
	ElementEntity        SpecialElementType = "entity"
	ElementTechnicalTerm SpecialElementType = "technical_term"
)

var SpecialElementTypes = []SpecialElementType{
	ElementURL, ElementEmail, ElementPlaceholder, ElementCode, ElementHTML, ElementBracketed,
	ElementNumber, ElementDate, ElementCurrency, ElementEntity, ElementTechnicalTerm,
}

func ParseSpecialElementType(s string) (SpecialElementType, bool) {
	return parseEnum(s, SpecialElementTypes)
}

func parseEnum[T ~string](s string, valid []T) (T, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, v := range valid {
		if string(v) == s {
			return v, true
		}
	}
	var zero T
	return zero, false
}
