package normalize

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrEmptyLanguage is returned by LanguageTag for blank input.
var ErrEmptyLanguage = errors.New("language tag is empty")

// LanguageTag converts a configured language to the canonical BCP 47 form
// TMDB expects in its language query parameter.
// It handles:
//   - Canonical tags: "en-US" -> "en-US"
//   - Case and separators: "pt_br", "PT-BR" -> "pt-BR"
//   - Bare languages: "fr" -> "fr"
//
// Malformed or unknown tags are an error.
func LanguageTag(raw string) (string, error) {
	s := strings.TrimSpace(sanitizeString(raw))
	if s == "" {
		return "", ErrEmptyLanguage
	}

	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid language tag %q: %w", raw, err)
	}
	return tag.String(), nil
}

// sanitizeString removes null bytes, which pasted or upstream text sometimes
// carries and which SQLite and HTML both handle badly.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
