package common

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

const maxSlugLength = 200

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify turns a title in any script into a URL slug. Non-Latin text is
// transliterated first, so "日本語の記事" still yields a usable slug.
func Slugify(s string) string {
	s = strings.ToLower(unidecode.Unidecode(s))
	s = nonSlugRunes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLength {
		s = strings.TrimRight(s[:maxSlugLength], "-")
	}
	return s
}

func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
