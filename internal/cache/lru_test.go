package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

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
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit 1, got %v %v", v, ok)
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Size != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "A")
	c.Set("b", "B")
	c.Get("a")
	c.Set("c", "C")

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to survive")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUCache_TTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Minute).WithClock(clock.Now)
	c.Set("a", 1)
	c.Set("b", 2)

	clock.Advance(30 * time.Second)
	c.Set("b", 3)
	clock.Advance(45 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to expire")
	}
	if removed := c.CleanExpired(); removed != 0 {
		t.Fatalf("expected nothing left to clean, removed %d", removed)
	}
	if v, ok := c.Get("b"); !ok || v != 3 {
		t.Fatalf("expected refreshed b=3, got %v %v", v, ok)
	}

	clock.Advance(time.Minute)
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("expected 1 expired entry, removed %d", removed)
	}
}

func TestLRUCache_GetOrCompute(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	calls := 0
	compute := func() int { calls++; return 42 }

	for i := 0; i < 3; i++ {
		if v := c.GetOrCompute("k", compute); v != 42 {
			t.Fatalf("expected 42, got %d", v)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one computation, got %d", calls)
	}

	c.Purge()
	c.GetOrCompute("k", compute)
	if calls != 2 {
		t.Fatalf("expected recompute after purge, got %d calls", calls)
	}
}

func TestManager(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := NewLRUCache[int](4, time.Millisecond).WithClock(clock.Now)
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)

	clock.Advance(time.Second)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("expected Sweep to remove 1 entry, got %d", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, 5*time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	m.Stop()
}
