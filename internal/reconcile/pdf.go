package reconcile

import (
	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
)

// RecordsFromTotals turns the players of a parsed box score into PDF records.
func RecordsFromTotals(ctx MatchContext, totals matchstats.Totals) []mergedrow.Record {
	return recordsFromPlayers(mergedrow.SourcePDF, ctx, totals)
}

// ManualRecords turns hand-curated players into records that outrank both PDF
// and CSV values.
func ManualRecords(ctx MatchContext, totals matchstats.Totals) []mergedrow.Record {
	return recordsFromPlayers(mergedrow.SourceManual, ctx, totals)
}

func recordsFromPlayers(source mergedrow.Source, ctx MatchContext, totals matchstats.Totals) []mergedrow.Record {
	if ctx.Team == "" {
		ctx.Team = totals.TeamName
	}

	records := make([]mergedrow.Record, 0, len(totals.Players))
	for _, player := range totals.Players {
		values := ctx.baseValues()
		values[mergedrow.FieldPlayerName] = CanonicalPlayerName(player.PlayerName)
		setIfNotEmpty(values, mergedrow.FieldStatsURL, ctx.StatsURL)
		setInt(values, mergedrow.FieldJerseyNumber, player.JerseyNumber)
		setInt(values, mergedrow.FieldTotalPoints, player.TotalPoints)
		setInt(values, mergedrow.FieldBreakPoints, player.BreakPoints)
		setInt(values, mergedrow.FieldPlusMinus, player.PlusMinus)
		setMetrics(values, player.Metrics)

		records = append(records, mergedrow.Record{Source: source, Values: values})
	}
	return records
}

func setMetrics(values map[string]string, m matchstats.Metrics) {
	setInt(values, mergedrow.FieldServesAttempts, &m.ServesAttempts)
	setInt(values, mergedrow.FieldServesErrors, &m.ServesErrors)
	setInt(values, mergedrow.FieldServesPoints, &m.ServesPoints)
	setInt(values, mergedrow.FieldReceptionsAttempts, &m.ReceptionsAttempts)
	setInt(values, mergedrow.FieldReceptionsErrors, &m.ReceptionsErrors)
	setInt(values, mergedrow.FieldReceptionsPositive, &m.ReceptionsPositive)
	setInt(values, mergedrow.FieldReceptionsPerfect, &m.ReceptionsPerfect)
	setFraction(values, mergedrow.FieldReceptionsPositivePct, percentFraction(m.ReceptionsPositivePct))
	setFraction(values, mergedrow.FieldReceptionsPerfectPct, percentFraction(m.ReceptionsPerfectPct))
	setInt(values, mergedrow.FieldAttacksAttempts, &m.AttacksAttempts)
	setInt(values, mergedrow.FieldAttacksErrors, &m.AttacksErrors)
	setInt(values, mergedrow.FieldAttacksBlocked, &m.AttacksBlocked)
	setInt(values, mergedrow.FieldAttacksPoints, &m.AttacksPoints)
	setFraction(values, mergedrow.FieldAttacksSuccessPct, percentFraction(m.AttacksSuccessPct))
	setInt(values, mergedrow.FieldBlocksPoints, &m.BlocksPoints)
}

func percentFraction(pct string) *float64 {
	value, ok := ParseFraction(pct)
	if !ok {
		return nil
	}
	return &value
}
