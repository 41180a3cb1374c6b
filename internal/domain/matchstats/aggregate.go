package matchstats

import (
	"fmt"
	"math"
)

// AggregatedMetrics sums Metrics over several matches. Percentages are
// recomputed from the summed counts.
type AggregatedMetrics struct {
	Matches               int    `json:"matches"`
	ServesAttempts        int    `json:"serves_attempts"`
	ServesErrors          int    `json:"serves_errors"`
	ServesPoints          int    `json:"serves_points"`
	ReceptionsAttempts    int    `json:"receptions_attempts"`
	ReceptionsErrors      int    `json:"receptions_errors"`
	ReceptionsPositive    int    `json:"receptions_positive"`
	ReceptionsPerfect     int    `json:"receptions_perfect"`
	ReceptionsPositivePct string `json:"receptions_positive_pct"`
	ReceptionsPerfectPct  string `json:"receptions_perfect_pct"`
	AttacksAttempts       int    `json:"attacks_attempts"`
	AttacksErrors         int    `json:"attacks_errors"`
	AttacksBlocked        int    `json:"attacks_blocked"`
	AttacksPoints         int    `json:"attacks_points"`
	AttacksSuccessPct     string `json:"attacks_success_pct"`
	BlocksPoints          int    `json:"blocks_points"`
}

// Accumulator folds per-match Metrics into AggregatedMetrics. The zero value is
// ready to use.
type Accumulator struct {
	total AggregatedMetrics
}

func (a *Accumulator) Add(m Metrics) {
	a.total.Matches++
	a.total.ServesAttempts += m.ServesAttempts
	a.total.ServesErrors += m.ServesErrors
	a.total.ServesPoints += m.ServesPoints
	a.total.ReceptionsAttempts += m.ReceptionsAttempts
	a.total.ReceptionsErrors += m.ReceptionsErrors
	a.total.ReceptionsPositive += m.ReceptionsPositive
	a.total.ReceptionsPerfect += m.ReceptionsPerfect
	a.total.AttacksAttempts += m.AttacksAttempts
	a.total.AttacksErrors += m.AttacksErrors
	a.total.AttacksBlocked += m.AttacksBlocked
	a.total.AttacksPoints += m.AttacksPoints
	a.total.BlocksPoints += m.BlocksPoints
}

func (a *Accumulator) Result() AggregatedMetrics {
	out := a.total
	out.ReceptionsPositivePct = ratioPct(out.ReceptionsPositive, out.ReceptionsAttempts)
	out.ReceptionsPerfectPct = ratioPct(out.ReceptionsPerfect, out.ReceptionsAttempts)
	out.AttacksSuccessPct = ratioPct(out.AttacksPoints, out.AttacksAttempts)
	return out
}

func ratioPct(numerator, denominator int) string {
	if denominator <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(math.RoundToEven(float64(numerator)/float64(denominator)*100)))
}
