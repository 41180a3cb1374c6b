package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	germanFold = strings.NewReplacer(
		"ä", "ae",
		"ö", "oe",
		"ü", "ue",
		"ß", "ss",
	)
	munsterFold = strings.NewReplacer(
		"muenster", "munster",
		"mnster", "munster",
	)
	nonAlphaNumPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// Fold lowercases value, spells out German umlauts and strips any remaining
// diacritics.
func Fold(value string) string {
	folded := germanFold.Replace(strings.ToLower(value))
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), folded)
	if err != nil {
		return folded
	}
	return stripped
}

// NormalizeName returns the matching key of a team or player name: folded,
// reduced to [a-z0-9] words separated by single spaces.
func NormalizeName(value string) string {
	normalized := munsterFold.Replace(Fold(value))
	normalized = nonAlphaNumPattern.ReplaceAllString(normalized, " ")
	return strings.Join(strings.Fields(normalized), " ")
}

// Slug returns a dash-separated form of value for file names and URLs.
func Slug(value string) string {
	slug := nonAlphaNumPattern.ReplaceAllString(Fold(value), "-")
	return strings.Trim(slug, "-")
}
