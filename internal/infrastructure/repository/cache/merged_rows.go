package cache

import (
	"context"

	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
	basecache "github.com/riskibarqy/volleystats/internal/platform/cache"
)

const latestRunKey = "merge:run:latest"

type MergedRowRepository struct {
	next  mergedrow.Repository
	cache *basecache.Store
}

func NewMergedRowRepository(next mergedrow.Repository, cache *basecache.Store) *MergedRowRepository {
	return &MergedRowRepository{next: next, cache: cache}
}

func (r *MergedRowRepository) SaveRun(ctx context.Context, run mergedrow.Run) error {
	if err := r.next.SaveRun(ctx, run); err != nil {
		return err
	}
	r.cache.Delete(ctx, latestRunKey)
	return nil
}

func (r *MergedRowRepository) GetLatestRun(ctx context.Context) (mergedrow.Run, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, latestRunKey, func(ctx context.Context) (cachedRun, error) {
		run, exists, err := r.next.GetLatestRun(ctx)
		if err != nil {
			return cachedRun{}, err
		}
		return cachedRun{value: run, exists: exists}, nil
	})
	if err != nil {
		return mergedrow.Run{}, false, err
	}
	return copyRun(cached.value), cached.exists, nil
}

type cachedRun struct {
	value  mergedrow.Run
	exists bool
}

func copyRun(run mergedrow.Run) mergedrow.Run {
	rows := make([]mergedrow.Row, len(run.Rows))
	for i, row := range run.Rows {
		values := make(map[string]string, len(row.Values))
		for k, v := range row.Values {
			values[k] = v
		}
		rows[i] = mergedrow.Row{Values: values}
	}
	run.Rows = rows
	return run
}
