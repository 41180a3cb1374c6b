package matchstats

import "context"

// Repository persists parsed totals per stats URL.
type Repository interface {
	GetByStatsURL(ctx context.Context, statsURL string) ([]Totals, bool, error)
	UpsertByStatsURL(ctx context.Context, statsURL string, totals []Totals) error
}

// Cache keeps parsed totals keyed by stats URL for the life of the process or
// of the backing store.
type Cache interface {
	Get(ctx context.Context, statsURL string) ([]Totals, bool, error)
	Set(ctx context.Context, statsURL string, totals []Totals) error
}

// OverrideSource returns the manual overrides registered for a stats URL.
type OverrideSource interface {
	OverridesFor(statsURL string) []Override
}
