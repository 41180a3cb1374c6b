package reconcile

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	UnknownPlayer = "Unbekannte Spielerin"
	UnknownTeam   = "Unbekanntes Team"
)

var teamNameOverrides = map[string]string{
	"usc münster":                     "USC Münster",
	"vc wiesbaden":                    "VC Wiesbaden",
	"ssc palmberg schwerin":           "SSC Palmberg Schwerin",
	"etv hamburger volksbank volleys": "ETV Hamburger Volksbank Volleys",
	"ladies in black aachen":          "Ladies in Black Aachen",
	"vfb suhl lotto thüringen":        "VfB Suhl LOTTO Thüringen",
	"skurios volleys borken":          "Skurios Volleys Borken",
	"binder blaubären tsv flacht":     "Binder Blaubären TSV Flacht",
	"schwarz-weiß erfurt":             "Schwarz-Weiß Erfurt",
	"allianz mtv stuttgart":           "Allianz MTV Stuttgart",
	"dresdner sc":                     "Dresdner SC",
}

var teamShortNames = map[string]string{
	"Allianz MTV Stuttgart":           "Stuttgart",
	"Binder Blaubären TSV Flacht":     "Flacht",
	"Dresdner SC":                     "Dresden",
	"ETV Hamburger Volksbank Volleys": "Hamburg",
	"Ladies in Black Aachen":          "Aachen",
	"SSC Palmberg Schwerin":           "Schwerin",
	"Schwarz-Weiß Erfurt":             "Erfurt",
	"Skurios Volleys Borken":          "Borken",
	"USC Münster":                     "Münster",
	"VC Wiesbaden":                    "Wiesbaden",
	"VfB Suhl LOTTO Thüringen":        "Suhl",
}

var playerSuffixPattern = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// CanonicalTeamName maps known spellings to the league's official name and
// capitalizes everything else word by word.
func CanonicalTeamName(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return UnknownTeam
	}
	lower := strings.ToLower(value)
	if canonical, ok := teamNameOverrides[lower]; ok {
		return canonical
	}
	return smartCapitalize(lower)
}

// ShortTeamLabel returns the city label used in compact tables.
func ShortTeamLabel(name string) string {
	canonical := CanonicalTeamName(name)
	if short, ok := teamShortNames[canonical]; ok {
		return short
	}
	return canonical
}

// CanonicalPlayerName drops a trailing "(...)" annotation, collapses spaces
// and capitalizes each name part, including hyphenated ones.
func CanonicalPlayerName(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return UnknownPlayer
	}
	cleaned := playerSuffixPattern.ReplaceAllString(value, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return smartCapitalize(strings.ToLower(cleaned))
}

func smartCapitalize(value string) string {
	words := strings.Fields(value)
	for i, word := range words {
		parts := strings.Split(word, "-")
		for j, part := range parts {
			parts[j] = capitalize(part)
		}
		words[i] = strings.Join(parts, "-")
	}
	return strings.Join(words, " ")
}

func capitalize(value string) string {
	runes := []rune(strings.ToLower(value))
	if len(runes) == 0 {
		return value
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
