package render

import (
	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

// ErrUnsupportedLanguage is returned when a language tag matches neither Arabic nor English.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language is a rendering language.
type Language string

// Supported languages. Arabic is the default.
const (
	Arabic  Language = "ar"
	English Language = "en"
)

//nolint:gochecknoglobals // fixed language table
var (
	supported     = []Language{Arabic, English}
	supportedTags = []language.Tag{language.Arabic, language.English}
	matcher       = language.NewMatcher(supportedTags)
)

// Languages returns the supported languages, default first.
func Languages() (langs []Language) {
	langs = make([]Language, len(supported))
	copy(langs, supported)
	return langs
}

// ParseLanguage maps a language code, BCP 47 tag or Accept-Language header value
// to a supported language. Unsupported input yields Arabic and an error.
func ParseLanguage(s string) (lang Language, err error) {
	lang = Arabic

	switch Language(s) {
	case Arabic, English:
		lang = Language(s)
		return lang, err
	}

	tags, _, parseErr := language.ParseAcceptLanguage(s)
	if parseErr != nil || len(tags) == 0 {
		err = errors.Wrapf(ErrUnsupportedLanguage, "%q", s)
		return lang, err
	}

	// Tags are in preference order. A match counts only when the base
	// language is the same; the matcher alone maps e.g. "ur" to English.
	for _, tag := range tags {
		base, baseConf := tag.Base()
		if baseConf != language.Exact {
			continue
		}

		_, index, confidence := matcher.Match(tag)
		if confidence == language.No {
			continue
		}

		want, _ := supportedTags[index].Base()
		if base == want {
			lang = supported[index]
			return lang, err
		}
	}

	err = errors.Wrapf(ErrUnsupportedLanguage, "%q", s)
	return lang, err
}

// Dir returns the text direction for the language.
func (l Language) Dir() (dir string) {
	dir = "ltr"
	if l == Arabic {
		dir = "rtl"
	}
	return dir
}

// Labels holds the fixed strings a template prints around the profile fields.
type Labels struct {
	NamePlaceholder  string
	TitlePlaceholder string
	Summary          string
	Skills           string
	Experience       string
}

// Labels returns the localized strings for the language.
func (l Language) Labels() (labels Labels) {
	if l == English {
		labels = Labels{
			NamePlaceholder:  "Your Name",
			TitlePlaceholder: "Job Title",
			Summary:          "Summary",
			Skills:           "Skills",
			Experience:       "Experience",
		}
		return labels
	}

	labels = Labels{
		NamePlaceholder:  "اسمك هنا",
		TitlePlaceholder: "المسمى الوظيفي",
		Summary:          "نبذة",
		Skills:           "المهارات",
		Experience:       "الخبرات",
	}
	return labels
}
