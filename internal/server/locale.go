package server

import (
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// localeResolver picks one of the store locales from an Accept-Language header
type localeResolver struct {
	locales []string
	matcher language.Matcher
}

func newLocaleResolver(locales []string, defaultLocale string) *localeResolver {
	// The matcher falls back to its first tag, so the default goes first
	ordered := []string{defaultLocale}
	for _, locale := range locales {
		if locale != defaultLocale {
			ordered = append(ordered, locale)
		}
	}

	r := &localeResolver{}
	tags := make([]language.Tag, 0, len(ordered))
	for _, locale := range ordered {
		tag, err := language.Parse(locale)
		if err != nil {
			log.Warnf("⚠️ Ignoring unparseable locale %q: %v", locale, err)
			continue
		}
		r.locales = append(r.locales, locale)
		tags = append(tags, tag)
	}

	if len(tags) == 0 {
		r.locales = []string{defaultLocale}
		tags = []language.Tag{language.Und}
	}

	r.matcher = language.NewMatcher(tags)
	return r
}

func (r *localeResolver) resolve(acceptLanguage string) string {
	if acceptLanguage == "" {
		return r.locales[0]
	}

	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return r.locales[0]
	}

	_, index, confidence := r.matcher.Match(desired...)
	if confidence == language.No {
		return r.locales[0]
	}
	return r.locales[index]
}
