package scoreline

import (
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	cache := NewMemoryCache()

	cache.Set("leaderboard_top", "payload")

	value, ok := cache.Get("leaderboard_top", time.Minute)
	if !ok {
		t.Fatal("Get() should find a fresh entry")
	}
	if value != "payload" {
		t.Errorf("value = %v, want payload", value)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	cache := NewMemoryCache()

	if _, ok := cache.Get("absent", time.Minute); ok {
		t.Error("Get() should miss on an absent key")
	}
}

func TestMemoryCacheReadSideTTL(t *testing.T) {
	now := time.Now()
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	cache.Set("key", 42)
	now = now.Add(45 * time.Second)

	// The same entry is stale for a 30s reader but fresh for a 60s reader.
	if _, ok := cache.Get("key", time.Minute); !ok {
		t.Fatal("entry should be fresh under a 60s TTL")
	}
	if _, ok := cache.Get("key", 30*time.Second); ok {
		t.Fatal("entry should be stale under a 30s TTL")
	}
}

func TestMemoryCacheLazyExpiryIsIdempotent(t *testing.T) {
	now := time.Now()
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	cache.Set("key", 42)
	now = now.Add(time.Hour)

	if _, ok := cache.Get("key", time.Second); ok {
		t.Fatal("entry should be stale")
	}
	// The stale read deleted the entry; a larger TTL cannot resurrect it.
	if _, ok := cache.Get("key", 48*time.Hour); ok {
		t.Error("expired entry should stay gone for any TTL")
	}
	if cache.Size() != 0 {
		t.Errorf("Size() = %d, want 0", cache.Size())
	}
}

func TestMemoryCacheSetResetsTimestamp(t *testing.T) {
	now := time.Now()
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	cache.Set("key", "old")
	now = now.Add(50 * time.Second)
	cache.Set("key", "new")

	value, ok := cache.Get("key", time.Minute)
	if !ok {
		t.Fatal("rewritten entry should be fresh again")
	}
	if value != "new" {
		t.Errorf("value = %v, want new", value)
	}
}

func TestMemoryCacheDeleteClearSize(t *testing.T) {
	cache := NewMemoryCache()
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("c", 3)

	if cache.Size() != 3 {
		t.Errorf("Size() = %d, want 3", cache.Size())
	}

	cache.Delete("b")
	if cache.Size() != 2 {
		t.Errorf("Size() after Delete = %d, want 2", cache.Size())
	}
	if _, ok := cache.Get("b", time.Minute); ok {
		t.Error("deleted key should miss")
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", cache.Size())
	}
}

func TestCacheKeyStableOrdering(t *testing.T) {
	a := cacheKey("leaderboard_period", map[string]string{"period": "weekly", "limit": "10"})
	b := cacheKey("leaderboard_period", map[string]string{"limit": "10", "period": "weekly"})
	if a != b {
		t.Errorf("equivalent queries should collide: %q vs %q", a, b)
	}

	c := cacheKey("leaderboard_period", map[string]string{"period": "daily", "limit": "10"})
	if a == c {
		t.Error("different parameters should produce different keys")
	}

	if got := cacheKey("leaderboard_top", nil); got != "leaderboard_top" {
		t.Errorf("cacheKey with no params = %q, want bare name", got)
	}
}
