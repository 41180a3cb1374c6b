package boxscore

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
)

const headerWindow = 6

var sentinelPhrases = []string{"spieler insgesamt", "spieler gesamt", "players total"}

var (
	teamLinePattern = regexp.MustCompile(`^(?:Spielbericht\s+)?(.+?)\s+\d+\s*$`)
	pointsPattern   = regexp.MustCompile(`(?i)\b(?:punkte|points)\b`)
	digitPattern    = regexp.MustCompile(`\d`)
	wordPattern     = regexp.MustCompile(`\p{L}{2,}`)
)

// totalsLabels are the column captions that can appear inside a totals row.
var totalsLabels = map[string]struct{}{
	"punkte":    {},
	"points":    {},
	"aufschlag": {},
	"serve":     {},
	"annahme":   {},
	"reception": {},
	"angriff":   {},
	"attack":    {},
	"block":     {},
	"bk":        {},
	"pkt":       {},
	"gesamt":    {},
	"total":     {},
}

// Parser turns box score text into team totals.
type Parser struct {
	bounds GlueBounds
}

func NewParser(bounds GlueBounds) *Parser {
	return &Parser{bounds: bounds.orDefault()}
}

// ParsePage extracts one Totals per sentinel line in text. Team names come from
// the first "<name> <sets>" lines of the page; a team without one is called
// "Team N" after its position. NUL bytes left by PDF extraction are dropped.
// Metrics stay nil until ResolveMetrics reads them from TotalsLine.
func (p *Parser) ParsePage(text string) []matchstats.Totals {
	cleaned := strings.ReplaceAll(text, "\x00", "")
	lines := strings.Split(strings.ReplaceAll(cleaned, "\r\n", "\n"), "\n")
	teamNames := teamNamesFromLines(lines)

	var result []matchstats.Totals
	floor := 0
	for index, line := range lines {
		if !isSentinel(line) {
			continue
		}

		headerLines := headerBlock(lines, index)
		rosterStart := playerRegionStart(lines, floor, index)
		totalsLines, trailingLines, end := collectTotalsRegion(lines, index)
		floor = end

		teamName := fmt.Sprintf("Team %d", len(result)+1)
		if len(result) < len(teamNames) {
			teamName = teamNames[len(result)]
		}

		players := ParsePlayerLines(withoutLiberoCaptions(lines[rosterStart:index]), teamName)
		players = append(players, ParsePlayerLines(withoutLiberoCaptions(trailingLines), teamName)...)

		result = append(result, matchstats.Totals{
			TeamName:    teamName,
			HeaderLines: headerLines,
			TotalsLine:  NormalizeTotalsLine(strings.Join(pointsLinesFirst(totalsLines), " ")),
			Players:     players,
		})
	}

	return result
}

// pointsLinesFirst moves the lines carrying a Punkte/Points caption to the
// front, keeping the relative order on both sides.
func pointsLinesFirst(lines []string) []string {
	ordered := make([]string, 0, len(lines))
	for _, line := range lines {
		if pointsPattern.MatchString(line) {
			ordered = append(ordered, line)
		}
	}
	for _, line := range lines {
		if !pointsPattern.MatchString(line) {
			ordered = append(ordered, line)
		}
	}
	return ordered
}

func withoutLiberoCaptions(lines []string) []string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || isLiberoCaption(line) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

// isSentinel reports whether line marks the start of a team's totals block. A
// "/"-separated bilingual caption matches when either half does.
func isSentinel(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	if lower == "" {
		return false
	}
	for _, half := range strings.Split(lower, "/") {
		half = strings.TrimSpace(half)
		for _, phrase := range sentinelPhrases {
			if half == phrase {
				return true
			}
		}
	}
	return false
}

func containsSentinel(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range sentinelPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// headerBlock walks back up to headerWindow non-empty lines from the sentinel
// and returns them normalized, in reading order.
func headerBlock(lines []string, sentinel int) []string {
	collected := make([]string, 0, headerWindow)
	for i := sentinel - 1; i >= 0 && len(collected) < headerWindow; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if containsSentinel(trimmed) {
			break
		}
		collected = append(collected, normalizeHeaderLine(trimmed))
	}
	if len(collected) == 0 {
		return nil
	}

	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected
}

// playerRegionStart returns the first index in [floor, sentinel) from which
// every non-empty line belongs to the roster: a jersey row, a line ending in a
// value run, or a section divider.
func playerRegionStart(lines []string, floor, sentinel int) int {
	first := sentinel
	for i := sentinel - 1; i >= floor; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if containsSentinel(trimmed) || !isRosterLine(trimmed) {
			break
		}
		first = i
	}
	return first
}

func isRosterLine(line string) bool {
	if startsNewRow(line) || isSectionDivider(line) {
		return true
	}
	if gluedMarkerPattern.MatchString(strings.Fields(line)[0]) {
		return true
	}
	_, ok := ExtractTokens(Tokenize(line))
	return ok
}

// collectTotalsRegion scans forward from the sentinel. Numeric rows without a
// name form the totals line; named rows are roster rows printed after the
// caption. The returned index is the first line past the region.
func collectTotalsRegion(lines []string, sentinel int) ([]string, []string, int) {
	var totals, players []string
	for i := sentinel + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		collected := len(totals)+len(players) > 0
		switch {
		case trimmed == "":
			if collected {
				return totals, players, i
			}
			continue
		case strings.HasPrefix(strings.ToLower(trimmed), "satz"), containsSentinel(trimmed):
			return totals, players, i
		case !digitPattern.MatchString(trimmed):
			if len(totals) > 0 {
				return totals, players, i
			}
			continue
		}

		if looksLikePlayerRow(trimmed) {
			if len(totals) > 0 {
				return totals, players, i
			}
			players = append(players, trimmed)
			continue
		}
		totals = append(totals, trimmed)
	}
	return totals, players, len(lines)
}

// looksLikePlayerRow reports whether line carries a word that is not a totals
// column caption.
func looksLikePlayerRow(line string) bool {
	for _, word := range wordPattern.FindAllString(line, -1) {
		if _, ok := totalsLabels[strings.ToLower(word)]; !ok {
			return true
		}
	}
	return false
}

func normalizeHeaderLine(line string) string {
	if idx := strings.Index(line, "Satz"); idx >= 0 {
		line = line[idx:]
	}
	return strings.Join(strings.Fields(line), " ")
}

// teamNamesFromLines returns the first two "<name> <digits>" lines in order. A
// leading "Spielbericht" is not part of the name.
func teamNamesFromLines(lines []string) []string {
	names := make([]string, 0, 2)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		match := teamLinePattern.FindStringSubmatch(trimmed)
		if match == nil || !containsLetter(match[1]) || startsWithDigit(match[1]) {
			continue
		}
		candidate := strings.TrimSpace(match[1])
		lower := strings.ToLower(candidate)
		if lower == "spielbericht" || isSentinel(candidate) || strings.HasPrefix(lower, "satz") {
			continue
		}
		names = append(names, candidate)
		if len(names) == 2 {
			break
		}
	}
	return names
}

func startsWithDigit(value string) bool {
	return value != "" && value[0] >= '0' && value[0] <= '9'
}
