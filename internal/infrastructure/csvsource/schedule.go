package csvsource

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/riskibarqy/volleystats/internal/domain/match"
)

var (
	berlin        = mustLoadLocation("Europe/Berlin")
	resultPattern = regexp.MustCompile(`^\s*(\d+:\d+)(?:\s*/\s*(\d+:\d+))?(?:\s*\(([^)]+)\))?`)
)

// ParseSchedule maps rows of the league's schedule export to matches. Rows
// without a parseable date and time are skipped.
func ParseSchedule(rows []map[string]string) []match.Match {
	matches := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		kickoff, err := parseKickoff(row["Datum"], row["Uhrzeit"])
		if err != nil {
			continue
		}

		result := buildResultSummary(row)
		matches = append(matches, match.Match{
			MatchID:       firstValue(row, "SpielID", "Match ID", "match_id"),
			MatchNumber:   firstValue(row, "#", "Spielnummer", "match_number"),
			Kickoff:       kickoff,
			HomeTeam:      firstValue(row, "Mannschaft 1", "Home Team"),
			AwayTeam:      firstValue(row, "Mannschaft 2", "Guest Team", "Away Team"),
			Host:          firstValue(row, "Gastgeber", "Host"),
			Location:      firstValue(row, "Austragungsort", "Stadium", "Location"),
			ResultSummary: result,
			StatsURL:      firstValue(row, "Statistik", "Stats URL", "stats_url"),
			Finished:      result != "",
		})
	}
	return matches
}

func parseKickoff(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("missing date or time")
	}
	for _, layout := range []string{"02.01.2006 15:04:05", "02.01.2006 15:04"} {
		if kickoff, err := time.ParseInLocation(layout, date+" "+clock, berlin); err == nil {
			return kickoff, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized kickoff %q %q", date, clock)
}

// buildResultSummary renders "3:1 / 98:80 (25:20 23:25 25:18 25:17)" from the
// split result columns, falling back to the free-text "Ergebnis" column.
func buildResultSummary(row map[string]string) string {
	fallbackScore, fallbackPoints, fallbackSets := parseResultText(row["Ergebnis"])

	score := strings.TrimSpace(row["Satzpunkte"])
	points := strings.TrimSpace(row["Ballpunkte"])
	var sets []string
	for i := 1; i <= 5; i++ {
		home := strings.TrimSpace(row[fmt.Sprintf("Satz %d - Ballpunkte 1", i)])
		away := strings.TrimSpace(row[fmt.Sprintf("Satz %d - Ballpunkte 2", i)])
		if home != "" && away != "" {
			sets = append(sets, home+":"+away)
		}
	}

	if score == "" && points == "" && len(sets) == 0 {
		return formatResult(fallbackScore, fallbackPoints, fallbackSets)
	}
	if score == "" {
		score = fallbackScore
	}
	if points == "" {
		points = fallbackPoints
	}
	if len(sets) == 0 {
		sets = fallbackSets
	}
	return formatResult(score, points, sets)
}

func parseResultText(raw string) (string, string, []string) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" || cleaned == "-" || cleaned == "\u2013" {
		return "", "", nil
	}
	m := resultPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return cleaned, "", nil
	}
	return m[1], m[2], strings.Fields(strings.ReplaceAll(m[3], ",", " "))
}

func formatResult(score, points string, sets []string) string {
	if score == "" {
		return ""
	}
	parts := []string{score}
	if points != "" {
		parts = append(parts, "/ "+points)
	}
	if len(sets) > 0 {
		parts = append(parts, "("+strings.Join(sets, " ")+")")
	}
	return strings.Join(parts, " ")
}

func firstValue(row map[string]string, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(row[key]); value != "" {
			return value
		}
	}
	return ""
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}
