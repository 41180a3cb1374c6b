package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
)

type MatchStatsRepository struct {
	mu    sync.RWMutex
	items map[string][]matchstats.Totals
}

func NewMatchStatsRepository() *MatchStatsRepository {
	return &MatchStatsRepository{items: make(map[string][]matchstats.Totals)}
}

func (r *MatchStatsRepository) GetByStatsURL(_ context.Context, statsURL string) ([]matchstats.Totals, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals, ok := r.items[strings.TrimSpace(statsURL)]
	if !ok {
		return nil, false, nil
	}
	return matchstats.CloneTotals(totals), true, nil
}

func (r *MatchStatsRepository) UpsertByStatsURL(_ context.Context, statsURL string, totals []matchstats.Totals) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[strings.TrimSpace(statsURL)] = matchstats.CloneTotals(totals)
	return nil
}
