package service

import "golang.org/x/text/language"

// Supported UI languages. Hindi is the first-class second language of the
// original product.
var supportedLanguages = []language.Tag{
	language.English, // en (default)
	language.Hindi,   // hi
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// MatchLanguage negotiates a supported language code from an
// Accept-Language header or an explicit code. Unrecognized input falls back
// to English.
func MatchLanguage(accept string) string {
	if accept == "" {
		return "en"
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, index, _ := languageMatcher.Match(tags...)
	switch index {
	case 1:
		return "hi"
	default:
		return "en"
	}
}
