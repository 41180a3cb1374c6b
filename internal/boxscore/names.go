package boxscore

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	jerseyPattern      = regexp.MustCompile(`^\s*(\d{1,3})`)
	nameCutoffPattern  = regexp.MustCompile(`\s[.\d+-]`)
	gluedMarkerPattern = regexp.MustCompile(`^(\d{1,3})L?(\p{Lu}\p{Ll}.*)$`)
	newRowPattern      = regexp.MustCompile(`^\s*\d{1,3}\s*\p{L}`)
)

// positionWords are the roster positions some layouts print after the name.
var positionWords = map[string]struct{}{
	"außenangreiferin":    {},
	"außenangreifer":      {},
	"aussenangreiferin":   {},
	"aussenangreifer":     {},
	"diagonal":            {},
	"diagonalangreiferin": {},
	"mittelblockerin":     {},
	"mittelblocker":       {},
	"zuspielerin":         {},
	"zuspieler":           {},
	"libera":              {},
	"libero":              {},
	"universal":           {},
	"universalspielerin":  {},
	"outside":             {},
	"opposite":            {},
	"middle":              {},
	"setter":              {},
}

// roleWords prefix the staff rows that sometimes share a line with players.
var roleWords = map[string]struct{}{
	"trainer":    {},
	"kotrainer":  {},
	"co-trainer": {},
	"cotrainer":  {},
	"coach":      {},
	"team":       {},
}

var nonPlayerPrefixes = []string{"trainer", "team", "coaches"}

func isNonPlayerLine(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, prefix := range nonPlayerPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// splitJersey returns the leading jersey number and the rest of the line.
func splitJersey(line string) (int, string, bool) {
	match := jerseyPattern.FindStringSubmatchIndex(line)
	if match == nil {
		return 0, line, false
	}
	jersey := ParseIntToken(line[match[2]:match[3]])
	return jersey, strings.TrimSpace(line[match[1]:]), true
}

// cleanPlayerName turns the unconsumed prefix of a row into a display name.
func cleanPlayerName(prefix string) string {
	name := strings.TrimSpace(prefix)
	if loc := nameCutoffPattern.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}
	name = strings.Trim(name, " .:-")
	if name == "" {
		return ""
	}

	words := strings.Fields(name)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if isInitialMarker(word) {
			continue
		}
		kept = append(kept, word)
	}
	if len(kept) == 0 {
		kept = words
	}

	for len(kept) > 1 {
		if _, ok := positionWords[strings.ToLower(kept[len(kept)-1])]; !ok {
			break
		}
		kept = kept[:len(kept)-1]
	}

	return strings.Join(kept, " ")
}

// isInitialMarker reports single uppercase letters such as the "L" libero
// flag or a "K" captain flag.
func isInitialMarker(word string) bool {
	if utf8.RuneCountInString(word) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

// splitRowCandidates breaks a physical line that holds several roster rows, as
// in "Kotrainer 1LMolenaar Pippa ... 2LSchaefer Lara-Marie ...", into one
// candidate per row. Lines without glued jersey markers come back unchanged.
func splitRowCandidates(line string) []string {
	fields := strings.Fields(line)
	markers := make([]int, 0, 2)
	for i, field := range fields {
		if gluedMarkerPattern.MatchString(field) {
			markers = append(markers, i)
		}
	}
	if len(markers) == 0 {
		return []string{line}
	}

	candidates := make([]string, 0, len(markers)+1)
	if lead := fields[:markers[0]]; len(lead) > 0 && !onlyRoleWords(lead) {
		candidates = append(candidates, strings.Join(lead, " "))
	}
	for i, start := range markers {
		end := len(fields)
		if i+1 < len(markers) {
			end = markers[i+1]
		}
		parts := gluedMarkerPattern.FindStringSubmatch(fields[start])
		row := append([]string{parts[1], parts[2]}, fields[start+1:end]...)
		candidates = append(candidates, strings.Join(row, " "))
	}

	return candidates
}

func onlyRoleWords(words []string) bool {
	for _, word := range words {
		if _, ok := roleWords[strings.ToLower(strings.Trim(word, ":"))]; !ok {
			return false
		}
	}
	return true
}

func startsNewRow(line string) bool {
	return newRowPattern.MatchString(line)
}
