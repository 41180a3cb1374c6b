package cache

import (
	"context"
	"strings"

	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	basecache "github.com/riskibarqy/volleystats/internal/platform/cache"
)

const totalsKeyPrefix = "totals:url:"

// TotalsCache is the in-process matchstats.Cache.
type TotalsCache struct {
	store *basecache.Store
}

func NewTotalsCache(store *basecache.Store) *TotalsCache {
	return &TotalsCache{store: store}
}

func (c *TotalsCache) Get(ctx context.Context, statsURL string) ([]matchstats.Totals, bool, error) {
	v, ok := c.store.Get(ctx, totalsKey(statsURL))
	if !ok {
		return nil, false, nil
	}
	totals, ok := v.([]matchstats.Totals)
	if !ok {
		return nil, false, nil
	}
	return matchstats.CloneTotals(totals), true, nil
}

func (c *TotalsCache) Set(ctx context.Context, statsURL string, totals []matchstats.Totals) error {
	if totals == nil {
		totals = []matchstats.Totals{}
	}
	c.store.Set(ctx, totalsKey(statsURL), matchstats.CloneTotals(totals))
	return nil
}

// MatchStatsRepository reads through the store and keeps it current on upsert.
type MatchStatsRepository struct {
	next  matchstats.Repository
	cache *basecache.Store
}

func NewMatchStatsRepository(next matchstats.Repository, cache *basecache.Store) *MatchStatsRepository {
	return &MatchStatsRepository{next: next, cache: cache}
}

func (r *MatchStatsRepository) GetByStatsURL(ctx context.Context, statsURL string) ([]matchstats.Totals, bool, error) {
	key := "repo:" + totalsKey(statsURL)
	cached, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) (cachedTotals, error) {
		totals, exists, err := r.next.GetByStatsURL(ctx, statsURL)
		if err != nil {
			return cachedTotals{}, err
		}
		return cachedTotals{value: matchstats.CloneTotals(totals), exists: exists}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return matchstats.CloneTotals(cached.value), cached.exists, nil
}

func (r *MatchStatsRepository) UpsertByStatsURL(ctx context.Context, statsURL string, totals []matchstats.Totals) error {
	if err := r.next.UpsertByStatsURL(ctx, statsURL, totals); err != nil {
		return err
	}
	r.cache.Set(ctx, "repo:"+totalsKey(statsURL), cachedTotals{value: matchstats.CloneTotals(totals), exists: true})
	return nil
}

type cachedTotals struct {
	value  []matchstats.Totals
	exists bool
}

func totalsKey(statsURL string) string {
	return totalsKeyPrefix + strings.TrimSpace(statsURL)
}
