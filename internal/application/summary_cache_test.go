package application

import (
	"testing"
	"time"
)

func TestSummaryCache(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	t.Run("serves entries until their ttl lapses", func(t *testing.T) {
		t.Parallel()

		current := base
		cache := newSummaryCache(30*time.Second, 4, func() time.Time { return current })

		cache.Store("user-1", Summary{TotalEvents: 3})
		if got, ok := cache.Get("user-1"); !ok || got.TotalEvents != 3 {
			t.Fatalf("expected cached summary, got %#v (hit=%v)", got, ok)
		}

		current = base.Add(31 * time.Second)
		if _, ok := cache.Get("user-1"); ok {
			t.Fatal("expected entry to expire")
		}
	})

	t.Run("invalidate drops a single user", func(t *testing.T) {
		t.Parallel()

		cache := newSummaryCache(time.Minute, 4, func() time.Time { return base })
		cache.Store("user-1", Summary{TotalEvents: 1})
		cache.Store("user-2", Summary{TotalEvents: 2})

		cache.Invalidate("user-1")
		if _, ok := cache.Get("user-1"); ok {
			t.Fatal("expected user-1 to be invalidated")
		}
		if _, ok := cache.Get("user-2"); !ok {
			t.Fatal("expected user-2 to survive")
		}
	})

	t.Run("invalidate with an empty id drops everything", func(t *testing.T) {
		t.Parallel()

		cache := newSummaryCache(time.Minute, 4, func() time.Time { return base })
		cache.Store("user-1", Summary{})
		cache.Store("user-2", Summary{})

		cache.Invalidate("")
		if _, ok := cache.Get("user-1"); ok {
			t.Fatal("expected the whole cache to clear")
		}
		if _, ok := cache.Get("user-2"); ok {
			t.Fatal("expected the whole cache to clear")
		}
	})

	t.Run("stays within its entry budget", func(t *testing.T) {
		t.Parallel()

		cache := newSummaryCache(time.Minute, 2, func() time.Time { return base })
		cache.Store("user-1", Summary{})
		cache.Store("user-2", Summary{})
		cache.Store("user-3", Summary{})

		if len(cache.entries) > 2 {
			t.Fatalf("expected at most 2 entries, got %d", len(cache.entries))
		}
		if _, ok := cache.Get("user-3"); !ok {
			t.Fatal("expected the newest entry to be present")
		}
	})
}
