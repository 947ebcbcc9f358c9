package cache

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := NewRedisCache(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestVisibilityCacheRoundTrip(t *testing.T) {
	vc := NewVisibilityCache(newTestRedis(t))

	if _, ok := vc.Get(1); ok {
		t.Fatalf("expected miss on empty cache")
	}

	want := []uint{10, 12, 99}
	if err := vc.Set(1, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := vc.Get(1)
	if !ok {
		t.Fatalf("expected hit after Set")
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestVisibilityCacheEmptySetIsCached(t *testing.T) {
	vc := NewVisibilityCache(newTestRedis(t))

	// An empty visible set is a valid cached value, distinct from a miss.
	if err := vc.Set(1, nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := vc.Get(1)
	if !ok {
		t.Fatalf("expected hit for cached empty set")
	}
	if len(got) != 0 {
		t.Errorf("expected empty set, got %v", got)
	}
}

func TestVisibilityCacheInvalidate(t *testing.T) {
	vc := NewVisibilityCache(newTestRedis(t))

	_ = vc.Set(1, []uint{10})
	_ = vc.Set(2, []uint{10})
	_ = vc.Set(3, []uint{10})

	if err := vc.Invalidate(1); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := vc.Get(1); ok {
		t.Errorf("expected miss after invalidate")
	}

	if err := vc.InvalidateMany([]uint{2, 3}); err != nil {
		t.Fatalf("InvalidateMany: %v", err)
	}
	if _, ok := vc.Get(2); ok {
		t.Errorf("expected miss after InvalidateMany")
	}
	if _, ok := vc.Get(3); ok {
		t.Errorf("expected miss after InvalidateMany")
	}

	// Invalidating absent entries and empty batches is a no-op.
	if err := vc.Invalidate(42); err != nil {
		t.Errorf("Invalidate absent: %v", err)
	}
	if err := vc.InvalidateMany(nil); err != nil {
		t.Errorf("InvalidateMany empty: %v", err)
	}
}

func TestVisibilityCacheNilSafe(t *testing.T) {
	var vc *VisibilityCache

	if _, ok := vc.Get(1); ok {
		t.Errorf("nil cache must miss")
	}
	if err := vc.Set(1, []uint{10}); err != nil {
		t.Errorf("nil cache Set must be a no-op, got %v", err)
	}
	if err := vc.Invalidate(1); err != nil {
		t.Errorf("nil cache Invalidate must be a no-op, got %v", err)
	}

	// Same for a cache wrapping a nil Redis client (Redis down at startup).
	down := NewVisibilityCache(nil)
	if _, ok := down.Get(1); ok {
		t.Errorf("cache without redis must miss")
	}
	if err := down.Set(1, []uint{10}); err != nil {
		t.Errorf("cache without redis Set must be a no-op, got %v", err)
	}
}
