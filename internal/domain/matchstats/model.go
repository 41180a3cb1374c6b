package matchstats

import (
	"math"
	"strconv"
	"strings"
)

// Metrics holds one team's or one player's statistics for a single match.
type Metrics struct {
	ServesAttempts        int    `json:"serves_attempts"`
	ServesErrors          int    `json:"serves_errors"`
	ServesPoints          int    `json:"serves_points"`
	ReceptionsAttempts    int    `json:"receptions_attempts"`
	ReceptionsErrors      int    `json:"receptions_errors"`
	ReceptionsPositivePct string `json:"receptions_positive_pct"`
	ReceptionsPerfectPct  string `json:"receptions_perfect_pct"`
	ReceptionsPositive    int    `json:"receptions_positive"`
	ReceptionsPerfect     int    `json:"receptions_perfect"`
	AttacksAttempts       int    `json:"attacks_attempts"`
	AttacksErrors         int    `json:"attacks_errors"`
	AttacksBlocked        int    `json:"attacks_blocked"`
	AttacksPoints         int    `json:"attacks_points"`
	AttacksSuccessPct     string `json:"attacks_success_pct"`
	BlocksPoints          int    `json:"blocks_points"`
}

// ZeroMetrics is the metrics value of a rostered player who did not play.
func ZeroMetrics() Metrics {
	return Metrics{
		ReceptionsPositivePct: "0%",
		ReceptionsPerfectPct:  "0%",
		AttacksSuccessPct:     "0%",
	}
}

// WithDerivedCounts returns a copy with the reception counts recomputed from the
// percentage strings.
func (m Metrics) WithDerivedCounts() Metrics {
	m.ReceptionsPositive = PercentageCount(m.ReceptionsAttempts, m.ReceptionsPositivePct)
	m.ReceptionsPerfect = PercentageCount(m.ReceptionsAttempts, m.ReceptionsPerfectPct)
	return m
}

// PlayerStats is one player's record within one team within one match.
type PlayerStats struct {
	TeamName     string  `json:"team_name"`
	PlayerName   string  `json:"player_name"`
	JerseyNumber *int    `json:"jersey_number,omitempty"`
	Metrics      Metrics `json:"metrics"`
	TotalPoints  *int    `json:"total_points,omitempty"`
	BreakPoints  *int    `json:"break_points,omitempty"`
	PlusMinus    *int    `json:"plus_minus,omitempty"`
}

// Totals is a team's full breakdown for a match. Metrics stays nil until it is
// resolved from TotalsLine or supplied by a manual override.
type Totals struct {
	TeamName    string        `json:"team_name"`
	HeaderLines []string      `json:"header_lines"`
	TotalsLine  string        `json:"totals_line"`
	Metrics     *Metrics      `json:"metrics,omitempty"`
	Players     []PlayerStats `json:"players"`
}

// WithMetrics returns a copy of t carrying metrics.
func (t Totals) WithMetrics(metrics Metrics) Totals {
	t.HeaderLines = append([]string(nil), t.HeaderLines...)
	t.Players = append([]PlayerStats(nil), t.Players...)
	t.Metrics = &metrics
	return t
}

// PercentageCount returns round(attempts * pct / 100), clamped to attempts.
// Rounding is half-to-even so that report figures reproduce the federation's
// own counts.
func PercentageCount(attempts int, pct string) int {
	if attempts <= 0 {
		return 0
	}
	value, ok := ParsePercentValue(pct)
	if !ok {
		return 0
	}
	count := int(math.RoundToEven(float64(attempts) * value / 100))
	if count < 0 {
		return 0
	}
	if count > attempts {
		return attempts
	}
	return count
}

// ParsePercentValue parses "27%", "27,5 %" or "27" into 27 / 27.5.
func ParsePercentValue(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "%", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Override is a hand-curated replacement for one team's totals in one match.
// Keys holds the normalized team name followed by its normalized aliases.
type Override struct {
	Keys     []string      `json:"keys"`
	TeamName string        `json:"team_name"`
	Metrics  Metrics       `json:"metrics"`
	Players  []PlayerStats `json:"players,omitempty"`
}

// HasKey reports whether normalizedTeam names the override's team.
func (o Override) HasKey(normalizedTeam string) bool {
	for _, key := range o.Keys {
		if key == normalizedTeam {
			return true
		}
	}
	return false
}

// CloneTotals deep-copies totals so callers cannot mutate a shared value.
func CloneTotals(in []Totals) []Totals {
	if in == nil {
		return nil
	}
	out := make([]Totals, len(in))
	for i, item := range in {
		item.HeaderLines = append([]string(nil), item.HeaderLines...)
		item.Players = append([]PlayerStats(nil), item.Players...)
		if item.Metrics != nil {
			metrics := *item.Metrics
			item.Metrics = &metrics
		}
		out[i] = item
	}
	return out
}
