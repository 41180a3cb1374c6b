package reconcile

import (
	"strconv"
	"strings"

	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
)

// csvTotalsMarker names the team totals row of a CSV export.
const csvTotalsMarker = "totals"

// Column names of the federation CSV export. Each field lists its variants in
// lookup order; older exports carry the typos.
var (
	columnName            = []string{"Name"}
	columnNumber          = []string{"Number"}
	columnTotalPoints     = []string{"Total Points"}
	columnBreakPoints     = []string{"Break Points"}
	columnPlusMinus       = []string{"W-L"}
	columnServes          = []string{"Total Serve", "Total Serves"}
	columnServeErrors     = []string{"Serve Errors"}
	columnAces            = []string{"Ace", "Aces"}
	columnReceptions      = []string{"Total Receptions"}
	columnReceptionErrors = []string{"Reception Erros", "Reception Errors"}
	columnPositivePct     = []string{"Positive Pass Percentage", "Positive Pass Percentage (Pos%)"}
	columnPerfectPct      = []string{"Excellent/ Perfect Pass Percentage", "Excellent/ Perfect Pass Percentage (Exc.%)"}
	columnAttacks         = []string{"Total Attacks"}
	columnAttackErrors    = []string{"Attack Erros", "Attack Errors"}
	columnBlockedAttacks  = []string{"Blocked Attack", "Blocked Attacks"}
	columnAttackPoints    = []string{"Attack Points (Exc.)", "Attack Points"}
	columnAttackPct       = []string{"Attack Points Percentage (Exc.%)", "Attack Points Percentage"}
	columnBlockPoints     = []string{"Block Points"}
)

// RecordsFromCSV turns the player rows of one team's CSV export into records.
// The totals row and rows without a name are skipped.
func RecordsFromCSV(ctx MatchContext, rows []map[string]string) []mergedrow.Record {
	records := make([]mergedrow.Record, 0, len(rows))
	for _, row := range rows {
		rawName, _ := resolveColumn(row, columnName...)
		if rawName == "" || strings.EqualFold(rawName, csvTotalsMarker) {
			continue
		}

		values := ctx.baseValues()
		values[mergedrow.FieldPlayerName] = CanonicalPlayerName(rawName)
		setIfNotEmpty(values, mergedrow.FieldCSVPath, ctx.CSVPath)

		receptions := csvInt(row, columnReceptions...)
		positivePct := csvFraction(row, columnPositivePct...)
		perfectPct := csvFraction(row, columnPerfectPct...)

		setInt(values, mergedrow.FieldJerseyNumber, csvInt(row, columnNumber...))
		setInt(values, mergedrow.FieldTotalPoints, csvInt(row, columnTotalPoints...))
		setInt(values, mergedrow.FieldBreakPoints, csvInt(row, columnBreakPoints...))
		setInt(values, mergedrow.FieldPlusMinus, csvInt(row, columnPlusMinus...))
		setInt(values, mergedrow.FieldServesAttempts, csvInt(row, columnServes...))
		setInt(values, mergedrow.FieldServesErrors, csvInt(row, columnServeErrors...))
		setInt(values, mergedrow.FieldServesPoints, csvInt(row, columnAces...))
		setInt(values, mergedrow.FieldReceptionsAttempts, receptions)
		setInt(values, mergedrow.FieldReceptionsErrors, csvInt(row, columnReceptionErrors...))
		setInt(values, mergedrow.FieldReceptionsPositive, estimateCount(receptions, positivePct))
		setInt(values, mergedrow.FieldReceptionsPerfect, estimateCount(receptions, perfectPct))
		setFraction(values, mergedrow.FieldReceptionsPositivePct, positivePct)
		setFraction(values, mergedrow.FieldReceptionsPerfectPct, perfectPct)
		setInt(values, mergedrow.FieldAttacksAttempts, csvInt(row, columnAttacks...))
		setInt(values, mergedrow.FieldAttacksErrors, csvInt(row, columnAttackErrors...))
		setInt(values, mergedrow.FieldAttacksBlocked, csvInt(row, columnBlockedAttacks...))
		setInt(values, mergedrow.FieldAttacksPoints, csvInt(row, columnAttackPoints...))
		setFraction(values, mergedrow.FieldAttacksSuccessPct, csvFraction(row, columnAttackPct...))
		setInt(values, mergedrow.FieldBlocksPoints, csvInt(row, columnBlockPoints...))

		records = append(records, mergedrow.Record{Source: mergedrow.SourceCSV, Values: values})
	}
	return records
}

// resolveColumn returns the first non-empty value among names.
func resolveColumn(row map[string]string, names ...string) (string, bool) {
	for _, name := range names {
		if value := strings.TrimSpace(row[name]); value != "" {
			return value, true
		}
	}
	return "", false
}

func csvInt(row map[string]string, names ...string) *int {
	raw, ok := resolveColumn(row, names...)
	if !ok {
		return nil
	}
	value, ok := ParseOptionalInt(raw)
	if !ok {
		return nil
	}
	return &value
}

func csvFraction(row map[string]string, names ...string) *float64 {
	raw, ok := resolveColumn(row, names...)
	if !ok {
		return nil
	}
	value, ok := ParseFraction(raw)
	if !ok {
		return nil
	}
	return &value
}

// ParseOptionalInt parses an export count. Placeholders report false; decimals
// are truncated.
func ParseOptionalInt(raw string) (int, bool) {
	text := strings.TrimSpace(raw)
	switch strings.ToLower(text) {
	case "", "-", ".", "na", "n/a":
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return int(value), true
}

// ParseFraction parses "27%", "27,5" or "27" into 0.27 / 0.275 / 0.27.
func ParseFraction(raw string) (float64, bool) {
	text := strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
	if text == "" || text == "-" || text == "." {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return value / 100, true
}
