package cache

import (
	"errors"
	"testing"
	"time"
)

func newTestCache(t *testing.T, cfg Config) (*Cache[string], *time.Time) {
	t.Helper()
	c := New[string](cfg)
	t.Cleanup(c.Close)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_GetSet(t *testing.T) {
	c, _ := newTestCache(t, Config{TTL: time.Minute})

	if _, ok := c.Get("en/unknown"); ok {
		t.Error("Get() on empty cache should miss")
	}
	c.Set("en/unknown", "Unknown command")
	if v, ok := c.Get("en/unknown"); !ok || v != "Unknown command" {
		t.Errorf("Get() = %q, %v", v, ok)
	}

	c.Delete("en/unknown")
	if c.Size() != 0 {
		t.Errorf("Size() after Delete = %d", c.Size())
	}

	hits, misses, rate := c.Stats()
	if hits != 1 || misses != 1 || rate != 50 {
		t.Errorf("Stats() = %d, %d, %v", hits, misses, rate)
	}
}

func TestCache_DeleteFunc(t *testing.T) {
	c, _ := newTestCache(t, Config{TTL: time.Minute})
	c.Set("en/register.ok", "Thank you")
	c.Set("fr/register.ok", "Merci")
	c.Set("en/ok", "OK")

	n := c.DeleteFunc(func(key string) bool { return key != "en/ok" })
	if n != 2 || c.Size() != 1 {
		t.Errorf("DeleteFunc() removed %d, size %d", n, c.Size())
	}
	if _, ok := c.Get("en/ok"); !ok {
		t.Error("non-matching key was removed")
	}
}

func TestCache_Expiration(t *testing.T) {
	c, now := newTestCache(t, Config{TTL: time.Minute})

	c.Set("a", "1")
	c.SetWithTTL("b", "2", 0)

	*now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry returned")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("entry without TTL expired")
	}

	c.Set("c", "3")
	*now = now.Add(2 * time.Minute)
	c.cleanup()
	if c.Size() != 1 {
		t.Errorf("Size() after cleanup = %d, want 1", c.Size())
	}
}

func TestCache_EvictsOldest(t *testing.T) {
	c, now := newTestCache(t, Config{MaxItems: 2})

	c.Set("first", "1")
	*now = now.Add(time.Second)
	c.Set("second", "2")
	*now = now.Add(time.Second)
	c.Set("second", "2b")
	if c.Size() != 2 {
		t.Fatalf("overwrite evicted an entry, Size() = %d", c.Size())
	}

	c.Set("third", "3")
	if _, ok := c.Get("first"); ok {
		t.Error("oldest entry survived eviction")
	}
	if v, _ := c.Get("second"); v != "2b" {
		t.Errorf("second = %q, want 2b", v)
	}
}

func TestCache_GetOrSet(t *testing.T) {
	c, _ := newTestCache(t, DefaultConfig())

	calls := 0
	load := func() (string, error) {
		calls++
		return "loaded", nil
	}
	for i := 0; i < 3; i++ {
		if v, err := c.GetOrSet("k", load); err != nil || v != "loaded" {
			t.Fatalf("GetOrSet() = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}

	if _, err := c.GetOrSet("bad", func() (string, error) { return "", errors.New("db down") }); err == nil {
		t.Error("GetOrSet() should return the loader error")
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed load was cached")
	}

	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size() after Clear = %d", c.Size())
	}
}
