// Package normalize canonicalizes user and upstream text before it is stored
// or sent to the metadata service.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Matches any run of whitespace, including tabs and newlines.
var whitespaceRun = regexp.MustCompile(`\s+`)

// Title returns the canonical form of a movie title.
// "  Ame\u0301lie " -> "Am\u00e9lie".
// "The  Way\tof Water" -> "The Way of Water".
// Composing to NFC keeps visually identical titles from slipping past the
// unique title constraint.
func Title(s string) string {
	s = norm.NFC.String(sanitizeString(s))
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
