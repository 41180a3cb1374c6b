package reconcile

import (
	"sort"
	"strings"

	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	"github.com/riskibarqy/volleystats/internal/platform/textnorm"
)

// PlayerAggregate is one player's statistics summed over several matches.
type PlayerAggregate struct {
	TeamName     string                       `json:"team_name"`
	PlayerName   string                       `json:"player_name"`
	JerseyNumber *int                         `json:"jersey_number,omitempty"`
	TotalPoints  int                          `json:"total_points"`
	BreakPoints  int                          `json:"break_points"`
	PlusMinus    int                          `json:"plus_minus"`
	Metrics      matchstats.AggregatedMetrics `json:"metrics"`
}

type playerAccumulator struct {
	aggregate PlayerAggregate
	metrics   matchstats.Accumulator
}

// AggregatePlayers sums players across matches. Entries for the same team and
// player name are combined regardless of spelling differences the name
// normalization folds away. The result is sorted by team and player.
func AggregatePlayers(players []matchstats.PlayerStats) []PlayerAggregate {
	byKey := make(map[string]*playerAccumulator)
	order := make([]string, 0)

	for _, player := range players {
		key := textnorm.NormalizeName(player.TeamName) + "|" + textnorm.NormalizeName(player.PlayerName)
		acc, ok := byKey[key]
		if !ok {
			acc = &playerAccumulator{aggregate: PlayerAggregate{
				TeamName:   player.TeamName,
				PlayerName: player.PlayerName,
			}}
			byKey[key] = acc
			order = append(order, key)
		}

		if player.JerseyNumber != nil && acc.aggregate.JerseyNumber == nil {
			jersey := *player.JerseyNumber
			acc.aggregate.JerseyNumber = &jersey
		}
		acc.aggregate.TotalPoints += derefInt(player.TotalPoints)
		acc.aggregate.BreakPoints += derefInt(player.BreakPoints)
		acc.aggregate.PlusMinus += derefInt(player.PlusMinus)
		acc.metrics.Add(player.Metrics)
	}

	result := make([]PlayerAggregate, 0, len(order))
	for _, key := range order {
		acc := byKey[key]
		acc.aggregate.Metrics = acc.metrics.Result()
		result = append(result, acc.aggregate)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !strings.EqualFold(result[i].TeamName, result[j].TeamName) {
			return strings.ToLower(result[i].TeamName) < strings.ToLower(result[j].TeamName)
		}
		return strings.ToLower(result[i].PlayerName) < strings.ToLower(result[j].PlayerName)
	})
	return result
}

func derefInt(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
