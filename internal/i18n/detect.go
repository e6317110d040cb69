package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// DetectLanguage picks the message language from BRACEFMT_LANG, then LANG.
// Values like "ru_RU.UTF-8" are accepted. English is the default.
func DetectLanguage(lookup func(string) (string, bool)) language.Tag {
	for _, name := range []string{"BRACEFMT_LANG", "LANG"} {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if tag, ok := parseLocale(v); ok {
			return tag
		}
	}
	return language.English
}

func parseLocale(v string) (language.Tag, bool) {
	v = strings.TrimSpace(v)
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "" || v == "C" || v == "POSIX" {
		return language.Und, false
	}
	tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}
