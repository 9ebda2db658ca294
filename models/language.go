package models

import "strings"

// LanguageCode identifies one of the languages content can be translated into.
type LanguageCode string

const (
	LangEnglish    LanguageCode = "en"
	LangSpanish    LanguageCode = "es"
	LangPortuguese LanguageCode = "pt"
	LangItalian    LanguageCode = "it"
	LangFrench     LanguageCode = "fr"
	LangJapanese   LanguageCode = "ja"
	LangChinese    LanguageCode = "zh"
	LangKorean     LanguageCode = "ko"
)

// DefaultLanguage is the language original content is written in and the
// one substituted when a requested translation is missing.
const DefaultLanguage = LangEnglish

// SupportedLanguages lists every language code in display order.
var SupportedLanguages = []LanguageCode{
	LangEnglish,
	LangSpanish,
	LangPortuguese,
	LangItalian,
	LangFrench,
	LangJapanese,
	LangChinese,
	LangKorean,
}

var languageNames = map[LanguageCode]string{
	LangEnglish:    "English",
	LangSpanish:    "Español",
	LangPortuguese: "Português",
	LangItalian:    "Italiano",
	LangFrench:     "Français",
	LangJapanese:   "日本語",
	LangChinese:    "中文",
	LangKorean:     "한국어",
}

func (l LanguageCode) Valid() bool {
	_, ok := languageNames[l]
	return ok
}

// NativeName returns the language name written in that language.
func (l LanguageCode) NativeName() string {
	return languageNames[l]
}

// ParseLanguage normalizes s ("PT", "pt-BR", " fr ") to a supported code.
func ParseLanguage(s string) (LanguageCode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	code := LanguageCode(s)
	return code, code.Valid()
}
