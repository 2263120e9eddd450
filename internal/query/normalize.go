package query

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalize lowercases, strips diacritics and collapses whitespace, per
// §4.7's normalization step.
func normalize(raw string) string {
	lower := strings.ToLower(raw)
	stripped, _, err := transform.String(diacriticStripper, lower)
	if err != nil {
		stripped = lower
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(stripped, " "))
}

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

func tokenize(normalized string) []string {
	return tokenRe.FindAllString(normalized, -1)
}
