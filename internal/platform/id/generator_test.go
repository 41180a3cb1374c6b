package id

import (
	"regexp"
	"testing"
	"time"
)

func TestRandomGenerator_NewID(t *testing.T) {
	t.Parallel()

	g := NewRandomGenerator("run-")
	g.now = func() time.Time { return time.Date(2025, 10, 4, 23, 30, 0, 0, time.FixedZone("CEST", 2*3600)) }

	first, err := g.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := g.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}

	pattern := regexp.MustCompile(`^run-20251004-[0-9a-f]{16}$`)
	if !pattern.MatchString(first) {
		t.Fatalf("unexpected id format: got=%s", first)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %s twice", first)
	}
}
