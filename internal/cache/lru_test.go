// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newClockedLRU[V any](capacity int, ttl time.Duration) (*LRU[V], *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[V](capacity, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRU_GetAdd(t *testing.T) {
	t.Parallel()

	c, _ := newClockedLRU[int](3, time.Minute)
	c.Add("a", 1)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) returned ok")
	}

	c.Add("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("updated value = %d, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	hits, misses, size := c.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Errorf("Stats() = %d, %d, %d", hits, misses, size)
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c, _ := newClockedLRU[int](2, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Get("a") // b is now least recently used
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be present")
	}
}

func TestLRU_TTL(t *testing.T) {
	t.Parallel()

	c, clock := newClockedLRU[string](10, time.Minute)
	c.Add("a", "x")
	c.Add("b", "y")

	clock.Advance(30 * time.Second)
	c.Add("b", "z") // refresh b

	clock.Advance(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if v, ok := c.Get("b"); !ok || v != "z" {
		t.Errorf("refreshed b = %q, %v", v, ok)
	}

	clock.Advance(time.Minute)
	if n := c.CleanupExpired(); n != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", n)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after cleanup", c.Len())
	}
}

func TestLRU_Remove(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](0, 0)
	c.Add("a", 1)
	if !c.Remove("a") || c.Remove("a") {
		t.Error("Remove should succeed once")
	}
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](100, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := strconv.Itoa((g*500 + i) % 150)
				c.Add(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
