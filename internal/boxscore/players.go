package boxscore

import (
	"regexp"
	"strings"

	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
)

// maxRowLines caps how many physical lines one roster row may wrap over.
const maxRowLines = 3

// ParsePlayerLine parses one roster row. It reports false for headers, staff
// rows, and rows without a name or value run.
func ParsePlayerLine(line, teamName string) (matchstats.PlayerStats, bool) {
	cleaned := strings.TrimSpace(sanitizeReplacer.Replace(line))
	if cleaned == "" || isNonPlayerLine(cleaned) {
		return matchstats.PlayerStats{}, false
	}

	jersey, rest, hasJersey := splitJersey(cleaned)
	if rest == "" {
		return matchstats.PlayerStats{}, false
	}

	run, ok := ExtractTokens(Tokenize(rest))
	if !ok || len(run.Prefix) == 0 {
		return matchstats.PlayerStats{}, false
	}

	name := cleanPlayerName(strings.Join(run.Prefix, " "))
	if name == "" {
		return matchstats.PlayerStats{}, false
	}

	player := matchstats.PlayerStats{
		TeamName:    teamName,
		PlayerName:  name,
		Metrics:     MetricsFromTokens(run.Tokens),
		TotalPoints: intPtr(ParseIntToken(run.Tokens[idxTotalPoints])),
		BreakPoints: intPtr(ParseIntToken(run.Tokens[idxBreakPoints])),
		PlusMinus:   intPtr(ParseIntToken(run.Tokens[idxPlusMinus])),
	}
	if hasJersey {
		player.JerseyNumber = intPtr(jersey)
	}
	return player, true
}

// inactivePlayer builds the zero-stat record of a rostered player whose row
// never carried values.
func inactivePlayer(text, teamName string) (matchstats.PlayerStats, bool) {
	cleaned := strings.TrimSpace(sanitizeReplacer.Replace(text))
	if cleaned == "" || isNonPlayerLine(cleaned) {
		return matchstats.PlayerStats{}, false
	}

	jersey, rest, hasJersey := splitJersey(cleaned)
	name := cleanPlayerName(rest)
	if name == "" || !containsLetter(name) {
		return matchstats.PlayerStats{}, false
	}

	player := matchstats.PlayerStats{
		TeamName:    teamName,
		PlayerName:  name,
		Metrics:     matchstats.ZeroMetrics(),
		TotalPoints: intPtr(0),
		BreakPoints: intPtr(0),
		PlusMinus:   intPtr(0),
	}
	if hasJersey {
		player.JerseyNumber = intPtr(jersey)
	}
	return player, true
}

// readerState is where playerLineReader stands within a roster row.
type readerState int

const (
	stateAwaitingPlayer readerState = iota
	statePendingContinuation
	stateDone
)

// playerLineReader reassembles roster rows that wrap over several physical
// lines.
type playerLineReader struct {
	teamName string
	state    readerState
	pending  []string
	players  []matchstats.PlayerStats
}

// ParsePlayerLines parses the roster lines of one team in order. Rows split over
// up to three lines are joined back together; a named row that never gets values
// becomes an inactive player with zero statistics.
func ParsePlayerLines(lines []string, teamName string) []matchstats.PlayerStats {
	reader := &playerLineReader{teamName: teamName}
	for _, line := range lines {
		reader.feed(line)
	}
	reader.finish()
	return reader.players
}

func (r *playerLineReader) feed(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || r.state == stateDone {
		return
	}
	if isSectionDivider(line) {
		r.pending = nil
		r.state = stateAwaitingPlayer
		return
	}

	for _, candidate := range splitRowCandidates(line) {
		r.feedCandidate(strings.TrimSpace(candidate))
	}
}

func (r *playerLineReader) feedCandidate(line string) {
	if line == "" {
		return
	}

	switch r.state {
	case stateAwaitingPlayer:
		if player, ok := ParsePlayerLine(line, r.teamName); ok {
			r.players = append(r.players, player)
			return
		}
		if isNonPlayerLine(line) {
			return
		}
		r.hold(line)

	case statePendingContinuation:
		// A line opening its own jersey row never continues the buffer.
		if !startsNewRow(line) {
			combined := strings.Join(append(append([]string(nil), r.pending...), line), " ")
			if player, ok := ParsePlayerLine(combined, r.teamName); ok {
				r.pending = nil
				r.state = stateAwaitingPlayer
				r.players = append(r.players, player)
				return
			}
		}
		if player, ok := ParsePlayerLine(line, r.teamName); ok {
			r.flushInactive()
			r.players = append(r.players, player)
			return
		}
		if startsNewRow(line) || len(r.pending) >= maxRowLines {
			r.flushInactive()
			r.hold(line)
			return
		}
		r.pending = append(r.pending, line)
	}
}

func (r *playerLineReader) finish() {
	switch r.state {
	case statePendingContinuation:
		if player, ok := ParsePlayerLine(strings.Join(r.pending, " "), r.teamName); ok {
			r.pending = nil
			r.players = append(r.players, player)
		} else {
			r.flushInactive()
		}
	case stateDone:
		return
	}
	r.state = stateDone
}

func (r *playerLineReader) hold(line string) {
	r.pending = []string{line}
	r.state = statePendingContinuation
}

// flushInactive emits the pending row, if any, as an inactive player.
func (r *playerLineReader) flushInactive() {
	if len(r.pending) > 0 {
		if player, ok := inactivePlayer(strings.Join(r.pending, " "), r.teamName); ok {
			r.players = append(r.players, player)
		}
	}
	r.pending = nil
	r.state = stateAwaitingPlayer
}

var rosterHeaderPattern = regexp.MustCompile(`(?i)^(?:nr\b|no\.|#)`)

// isSectionDivider reports column captions and the libero caption that split
// a roster. They carry no player data.
func isSectionDivider(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case rosterHeaderPattern.MatchString(line):
		return true
	case strings.Contains(lower, "aufschlag") && strings.Contains(lower, "annahme"):
		return true
	case strings.Contains(lower, "angriff") && strings.Contains(lower, "block"):
		return true
	default:
		return isLiberoCaption(line)
	}
}

func isLiberoCaption(line string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "libero")
}

func containsLetter(value string) bool {
	for _, r := range value {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r > 127 {
			return true
		}
	}
	return false
}

func intPtr(value int) *int {
	return &value
}
