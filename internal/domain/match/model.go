package match

import "time"

// Match is the schedule metadata a box score belongs to.
type Match struct {
	MatchID       string
	MatchNumber   string
	Kickoff       time.Time
	HomeTeam      string
	AwayTeam      string
	Host          string
	Location      string
	ResultSummary string
	StatsURL      string
	CSVPaths      map[string]string
	Finished      bool
}

// Opponent returns the other team of the match, or "" when team plays in
// neither slot.
func (m Match) Opponent(team string) string {
	switch team {
	case m.HomeTeam:
		return m.AwayTeam
	case m.AwayTeam:
		return m.HomeTeam
	default:
		return ""
	}
}
