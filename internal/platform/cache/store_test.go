package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const statsURL = "https://example.com/uploads/4021.pdf"

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "totals", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), statsURL, loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "totals" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("download failed")
		}
		return "totals", nil
	}

	if _, err := store.GetOrLoad(context.Background(), statsURL, loader); err == nil {
		t.Fatalf("expected first load to fail")
	}
	if store.Len() != 0 {
		t.Fatalf("unexpected entries after failed load: got=%d want=0", store.Len())
	}
	if _, err := store.GetOrLoad(context.Background(), statsURL, loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("loader called %d times, want 2", got)
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 10, 18, 17, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), statsURL, "totals")
	if _, ok := store.Get(context.Background(), statsURL); !ok {
		t.Fatalf("expected fresh entry to be present")
	}

	now = now.Add(time.Minute)
	if _, ok := store.Get(context.Background(), statsURL); ok {
		t.Fatalf("expected entry to expire at its deadline")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", store.Len())
	}
}

func TestStore_EmptyKeyBypassesCache(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "totals", nil
	}

	for i := 0; i < 2; i++ {
		if _, err := store.GetOrLoad(context.Background(), "", loader); err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
	}
	if calls.Load() != 2 || store.Len() != 0 {
		t.Fatalf("expected empty key to bypass the cache: calls=%d len=%d", calls.Load(), store.Len())
	}
	if _, err := store.GetOrLoad(context.Background(), statsURL, nil); err == nil {
		t.Fatalf("expected error for nil loader")
	}
}

func TestLoad_Typed(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	store.Set(context.Background(), statsURL, 42)

	got, err := Load(context.Background(), store, statsURL, func(context.Context) ([]string, error) {
		return []string{"Team A", "Team B"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "Team A" {
		t.Fatalf("unexpected value: got=%v", got)
	}

	again, err := Load(context.Background(), store, statsURL, func(context.Context) ([]string, error) {
		return nil, errors.New("loader must not run on a hit")
	})
	if err != nil || len(again) != 2 {
		t.Fatalf("expected cached value, got=%v err=%v", again, err)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
