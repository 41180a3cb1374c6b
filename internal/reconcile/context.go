package reconcile

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/volleystats/internal/domain/match"
	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
	"github.com/riskibarqy/volleystats/internal/platform/textnorm"
)

// MatchContext is the match metadata shared by every record one source
// contributes for one team.
type MatchContext struct {
	MatchID       string
	MatchNumber   string
	Kickoff       time.Time
	Team          string
	Opponent      string
	OpponentShort string
	IsHome        bool
	Host          string
	Location      string
	ResultSummary string
	StatsURL      string
	CSVPath       string
}

// ContextFor describes m from team's point of view.
func ContextFor(m match.Match, team string) MatchContext {
	return MatchContext{
		MatchID:       strings.TrimSpace(m.MatchID),
		MatchNumber:   strings.TrimSpace(m.MatchNumber),
		Kickoff:       m.Kickoff,
		Team:          team,
		Opponent:      m.Opponent(team),
		IsHome:        team != "" && team == m.HomeTeam,
		Host:          m.Host,
		Location:      m.Location,
		ResultSummary: m.ResultSummary,
		StatsURL:      m.StatsURL,
		CSVPath:       m.CSVPaths[team],
	}
}

// ScheduleTeam returns the slot of m that name refers to. Normalized names
// must match exactly or, for captions truncated in the report, one must be a
// prefix of the other. name is returned unchanged when neither slot fits.
func ScheduleTeam(m match.Match, name string) string {
	key := textnorm.NormalizeName(name)
	if key == "" {
		return name
	}
	slots := []string{m.HomeTeam, m.AwayTeam}
	for _, slot := range slots {
		if textnorm.NormalizeName(slot) == key {
			return slot
		}
	}
	for _, slot := range slots {
		slotKey := textnorm.NormalizeName(slot)
		if slotKey == "" {
			continue
		}
		if strings.HasPrefix(slotKey, key) || strings.HasPrefix(key, slotKey) {
			return slot
		}
	}
	return name
}

// baseValues returns the match-level fields of a record.
func (c MatchContext) baseValues() map[string]string {
	team := CanonicalTeamName(c.Team)
	opponent := CanonicalTeamName(c.Opponent)

	values := make(map[string]string, len(mergedrow.FieldOrder))
	values[mergedrow.FieldTeam] = team
	values[mergedrow.FieldOpponent] = opponent
	values[mergedrow.FieldIsHome] = strconv.FormatBool(c.IsHome)
	setIfNotEmpty(values, mergedrow.FieldMatchID, c.MatchID)
	setIfNotEmpty(values, mergedrow.FieldMatchNumber, c.MatchNumber)
	if !c.Kickoff.IsZero() {
		values[mergedrow.FieldKickoff] = c.Kickoff.Format(time.RFC3339)
	}

	if short := strings.TrimSpace(c.OpponentShort); short != "" {
		values[mergedrow.FieldOpponentShort] = short
	} else {
		values[mergedrow.FieldOpponentShort] = ShortTeamLabel(opponent)
	}

	switch {
	case strings.TrimSpace(c.Host) != "":
		values[mergedrow.FieldHost] = CanonicalTeamName(c.Host)
	case c.IsHome:
		values[mergedrow.FieldHost] = team
	case strings.TrimSpace(c.Opponent) != "":
		values[mergedrow.FieldHost] = opponent
	}

	setIfNotEmpty(values, mergedrow.FieldLocation, c.Location)
	setIfNotEmpty(values, mergedrow.FieldResultSummary, c.ResultSummary)
	return values
}

func setIfNotEmpty(values map[string]string, field, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		values[field] = trimmed
	}
}

func setInt(values map[string]string, field string, value *int) {
	if value != nil {
		values[field] = strconv.Itoa(*value)
	}
}

func setFraction(values map[string]string, field string, value *float64) {
	if value != nil {
		values[field] = strconv.FormatFloat(*value, 'f', -1, 64)
	}
}

// estimateCount returns round(attempts * fraction), or nil when either input is
// missing.
func estimateCount(attempts *int, fraction *float64) *int {
	if attempts == nil || fraction == nil {
		return nil
	}
	count := int(math.RoundToEven(float64(*attempts) * *fraction))
	return &count
}
