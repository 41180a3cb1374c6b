package cache

import (
	"context"
	"testing"

	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
	"github.com/riskibarqy/volleystats/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/volleystats/internal/platform/cache"
)

const statsURL = "https://example.com/uploads/4021.pdf"

type countingTotalsRepo struct {
	matchstats.Repository
	gets int
}

func (r *countingTotalsRepo) GetByStatsURL(ctx context.Context, url string) ([]matchstats.Totals, bool, error) {
	r.gets++
	return r.Repository.GetByStatsURL(ctx, url)
}

type countingRunRepo struct {
	mergedrow.Repository
	gets int
}

func (r *countingRunRepo) GetLatestRun(ctx context.Context) (mergedrow.Run, bool, error) {
	r.gets++
	return r.Repository.GetLatestRun(ctx)
}

func TestTotalsCache_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewTotalsCache(basecache.NewStore(0))

	if _, ok, err := c.Get(ctx, statsURL); err != nil || ok {
		t.Fatalf("unexpected hit on empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, " "+statsURL+" ", []matchstats.Totals{{TeamName: "Team A", HeaderLines: []string{"h"}}}); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := c.Get(ctx, statsURL)
	if err != nil || !ok {
		t.Fatalf("expected hit: ok=%v err=%v", ok, err)
	}
	got[0].HeaderLines[0] = "mutated"

	again, _, _ := c.Get(ctx, statsURL)
	if again[0].HeaderLines[0] != "h" {
		t.Fatalf("unexpected shared slice: got=%q want=%q", again[0].HeaderLines[0], "h")
	}
}

func TestTotalsCache_CachesEmptyResult(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewTotalsCache(basecache.NewStore(0))
	if err := c.Set(ctx, statsURL, nil); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, statsURL)
	if err != nil || !ok || len(got) != 0 {
		t.Fatalf("unexpected empty entry: got=%v ok=%v err=%v", got, ok, err)
	}
}

func TestMatchStatsRepository_ReadThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := &countingTotalsRepo{Repository: memory.NewMatchStatsRepository()}
	repo := NewMatchStatsRepository(next, basecache.NewStore(0))

	if _, exists, err := repo.GetByStatsURL(ctx, statsURL); err != nil || exists {
		t.Fatalf("unexpected first read: exists=%v err=%v", exists, err)
	}
	if _, _, err := repo.GetByStatsURL(ctx, statsURL); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if next.gets != 1 {
		t.Fatalf("unexpected backend reads: got=%d want=1", next.gets)
	}

	if err := repo.UpsertByStatsURL(ctx, statsURL, []matchstats.Totals{{TeamName: "Team A"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, exists, err := repo.GetByStatsURL(ctx, statsURL)
	if err != nil || !exists || len(got) != 1 || got[0].TeamName != "Team A" {
		t.Fatalf("unexpected read after upsert: got=%v exists=%v err=%v", got, exists, err)
	}
	if next.gets != 1 {
		t.Fatalf("unexpected backend reads after upsert: got=%d want=1", next.gets)
	}
}

func TestMergedRowRepository_InvalidatesOnSave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := &countingRunRepo{Repository: memory.NewMergedRowRepository()}
	repo := NewMergedRowRepository(next, basecache.NewStore(0))

	if _, exists, err := repo.GetLatestRun(ctx); err != nil || exists {
		t.Fatalf("unexpected empty read: exists=%v err=%v", exists, err)
	}
	if _, _, err := repo.GetLatestRun(ctx); err != nil {
		t.Fatalf("cached read: %v", err)
	}
	if next.gets != 1 {
		t.Fatalf("unexpected backend reads: got=%d want=1", next.gets)
	}

	run := mergedrow.Run{ID: "run-1", Rows: []mergedrow.Row{{Values: map[string]string{mergedrow.FieldTeam: "Team A"}}}}
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, exists, err := repo.GetLatestRun(ctx)
	if err != nil || !exists || got.ID != "run-1" {
		t.Fatalf("unexpected latest run: got=%+v exists=%v err=%v", got, exists, err)
	}
	if next.gets != 2 {
		t.Fatalf("unexpected backend reads after save: got=%d want=2", next.gets)
	}

	got.Rows[0].Values[mergedrow.FieldTeam] = "mutated"
	again, _, _ := repo.GetLatestRun(ctx)
	if again.Rows[0].Get(mergedrow.FieldTeam) != "Team A" {
		t.Fatalf("unexpected shared row map: got=%q", again.Rows[0].Get(mergedrow.FieldTeam))
	}
}
