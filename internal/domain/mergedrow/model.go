package mergedrow

import "time"

type Source string

const (
	SourcePDF    Source = "pdf"
	SourceCSV    Source = "csv"
	SourceManual Source = "manual"
)

// Priority ranks sources; a higher value wins a field over a lower one.
func (s Source) Priority() int {
	switch s {
	case SourceManual:
		return 3
	case SourceCSV:
		return 2
	case SourcePDF:
		return 1
	default:
		return 0
	}
}

// Label is the display name used in comparison columns.
func (s Source) Label() string {
	switch s {
	case SourcePDF:
		return "PDF"
	case SourceCSV:
		return "CSV"
	case SourceManual:
		return "Manual"
	default:
		return string(s)
	}
}

const (
	FieldDataSources           = "data_sources"
	FieldMatchNumber           = "match_number"
	FieldMatchID               = "match_id"
	FieldKickoff               = "kickoff"
	FieldKickoffComparison     = "kickoff_comparison"
	FieldIsHome                = "is_home"
	FieldTeam                  = "team"
	FieldOpponent              = "opponent"
	FieldOpponentComparison    = "opponent_comparison"
	FieldOpponentShort         = "opponent_short"
	FieldHost                  = "host"
	FieldHostComparison        = "host_comparison"
	FieldLocation              = "location"
	FieldResultSummary         = "result_summary"
	FieldPlayerName            = "player_name"
	FieldJerseyNumber          = "jersey_number"
	FieldTotalPoints           = "total_points"
	FieldBreakPoints           = "break_points"
	FieldPlusMinus             = "plus_minus"
	FieldServesAttempts        = "serves_attempts"
	FieldServesErrors          = "serves_errors"
	FieldServesPoints          = "serves_points"
	FieldReceptionsAttempts    = "receptions_attempts"
	FieldReceptionsErrors      = "receptions_errors"
	FieldReceptionsPositive    = "receptions_positive"
	FieldReceptionsPerfect     = "receptions_perfect"
	FieldReceptionsPositivePct = "receptions_positive_pct"
	FieldReceptionsPerfectPct  = "receptions_perfect_pct"
	FieldAttacksAttempts       = "attacks_attempts"
	FieldAttacksErrors         = "attacks_errors"
	FieldAttacksBlocked        = "attacks_blocked"
	FieldAttacksPoints         = "attacks_points"
	FieldAttacksSuccessPct     = "attacks_success_pct"
	FieldBlocksPoints          = "blocks_points"
	FieldStatsURL              = "stats_url"
	FieldCSVPath               = "csv_path"
)

// FieldOrder is the column order of the merged export.
var FieldOrder = []string{
	FieldDataSources,
	FieldMatchNumber,
	FieldMatchID,
	FieldKickoff,
	FieldKickoffComparison,
	FieldIsHome,
	FieldTeam,
	FieldOpponent,
	FieldOpponentComparison,
	FieldOpponentShort,
	FieldHost,
	FieldHostComparison,
	FieldLocation,
	FieldResultSummary,
	FieldPlayerName,
	FieldJerseyNumber,
	FieldTotalPoints,
	FieldBreakPoints,
	FieldPlusMinus,
	FieldServesAttempts,
	FieldServesErrors,
	FieldServesPoints,
	FieldReceptionsAttempts,
	FieldReceptionsErrors,
	FieldReceptionsPositive,
	FieldReceptionsPerfect,
	FieldReceptionsPositivePct,
	FieldReceptionsPerfectPct,
	FieldAttacksAttempts,
	FieldAttacksErrors,
	FieldAttacksBlocked,
	FieldAttacksPoints,
	FieldAttacksSuccessPct,
	FieldBlocksPoints,
	FieldStatsURL,
	FieldCSVPath,
}

// Record is one source's view of a player in a match. A field missing from
// Values is absent, which differs from an empty string.
type Record struct {
	Source Source
	Values map[string]string
}

// Row is a merged, emitted output row.
type Row struct {
	Values map[string]string
}

// Get returns the value of field, or "" when absent.
func (r Row) Get(field string) string {
	return r.Values[field]
}

// Strings returns the row's values in FieldOrder.
func (r Row) Strings() []string {
	out := make([]string, len(FieldOrder))
	for i, field := range FieldOrder {
		out[i] = r.Values[field]
	}
	return out
}

// Run is a persisted merge result.
type Run struct {
	ID        string
	CreatedAt time.Time
	Rows      []Row
}
