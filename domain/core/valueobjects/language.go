package valueobjects

import "fmt"

// Language is one of the four catalog languages, identified by its wire code
type Language string

const (
	LanguageGerman   Language = "de"
	LanguageFrench   Language = "fr"
	LanguageEnglish  Language = "en"
	LanguageJapanese Language = "ja"
)

// Languages lists every supported language in a fixed order
var Languages = []Language{LanguageGerman, LanguageFrench, LanguageEnglish, LanguageJapanese}

var fieldNames = map[Language]string{
	LanguageGerman:   "Name_de",
	LanguageFrench:   "Name_fr",
	LanguageEnglish:  "Name_en",
	LanguageJapanese: "Name_ja",
}

// ParseLanguage maps a two-letter wire code to a Language
func ParseLanguage(code string) (Language, error) {
	lang := Language(code)
	if _, ok := fieldNames[lang]; !ok {
		return "", fmt.Errorf("unknown language code %q", code)
	}
	return lang, nil
}

// LanguageFromFieldName maps a localized name field (e.g. "Name_en") back to its Language
func LanguageFromFieldName(name string) (Language, bool) {
	for lang, field := range fieldNames {
		if field == name {
			return lang, true
		}
	}
	return "", false
}

// Code returns the two-letter wire code
func (l Language) Code() string {
	return string(l)
}

// FieldName returns the localized name field, used as both the JSON key and the
// DynamoDB attribute name
func (l Language) FieldName() string {
	return fieldNames[l]
}

// IsValid reports whether l is one of the supported languages
func (l Language) IsValid() bool {
	_, ok := fieldNames[l]
	return ok
}

// String implements fmt.Stringer
func (l Language) String() string {
	return string(l)
}
