// Package i18n holds the supported UI languages and the short texts the
// assistant itself authors.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when nothing better is known.
const DefaultLanguage = "en"

// Language is one selectable UI language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var defaults = []Language{
	{Code: "en", Name: "English"},
	{Code: "pt", Name: "Português"},
	{Code: "es", Name: "Español"},
	{Code: "bg", Name: "Български"},
}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Portuguese,
	language.Spanish,
	language.Bulgarian,
})

// Defaults returns the built-in language list used when the remote list is unavailable.
func Defaults() []Language {
	return append([]Language(nil), defaults...)
}

// Supported reports whether code is one of the built-in languages.
func Supported(code string) bool {
	for _, l := range defaults {
		if l.Code == code {
			return true
		}
	}
	return false
}

// Match resolves a BCP 47 tag or Accept-Language value to a supported code,
// falling back to DefaultLanguage.
func Match(raw string) string {
	if code, ok := Resolve(raw); ok {
		return code
	}
	return DefaultLanguage
}

// Resolve maps a tag such as "pt-BR" to a supported code. It reports false
// when no built-in language is a reasonable match.
func Resolve(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if Supported(strings.ToLower(raw)) {
		return strings.ToLower(raw), true
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	tag, _, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return "", false
	}
	base, _ := tag.Base()
	if code := base.String(); Supported(code) {
		return code, true
	}
	return "", false
}
