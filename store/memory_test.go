package store

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

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_FirstIncrementStartsAtOne(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := NewMemoryStoreWithClock(clock.Now)

	counter, err := store.Increment(context.Background(), "submit:1.2.3.4", time.Minute)
	if err != nil {
		t.Fatalf("Increment() unexpected error: %v", err)
	}
	if counter.Count != 1 {
		t.Errorf("Count = %d, want 1", counter.Count)
	}
	if want := clock.Now().Add(time.Minute); !counter.ResetAt.Equal(want) {
		t.Errorf("ResetAt = %v, want %v", counter.ResetAt, want)
	}
}

func TestMemoryStore_CountsWithinWindow(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := NewMemoryStoreWithClock(clock.Now)
	ctx := context.Background()

	first, _ := store.Increment(ctx, "key", time.Minute)
	for i := int64(2); i <= 5; i++ {
		clock.Advance(5 * time.Second)
		counter, err := store.Increment(ctx, "key", time.Minute)
		if err != nil {
			t.Fatalf("Increment() unexpected error: %v", err)
		}
		if counter.Count != i {
			t.Errorf("Count = %d, want %d", counter.Count, i)
		}
		if !counter.ResetAt.Equal(first.ResetAt) {
			t.Errorf("ResetAt moved within window: %v, want %v", counter.ResetAt, first.ResetAt)
		}
	}
}

func TestMemoryStore_ExpiredWindowResets(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := NewMemoryStoreWithClock(clock.Now)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		store.Increment(ctx, "key", time.Minute)
	}

	clock.Advance(time.Minute)
	counter, err := store.Increment(ctx, "key", time.Minute)
	if err != nil {
		t.Fatalf("Increment() unexpected error: %v", err)
	}
	if counter.Count != 1 {
		t.Errorf("Count after window expiry = %d, want 1", counter.Count)
	}
	if want := clock.Now().Add(time.Minute); !counter.ResetAt.Equal(want) {
		t.Errorf("ResetAt = %v, want %v", counter.ResetAt, want)
	}
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Increment(ctx, "a", time.Minute)
	store.Increment(ctx, "a", time.Minute)

	counter, _ := store.Increment(ctx, "b", time.Minute)
	if counter.Count != 1 {
		t.Errorf("Count for separate key = %d, want 1", counter.Count)
	}
}

func TestMemoryStore_InvalidArgs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Increment(ctx, "", time.Minute); err != ErrInvalidKey {
		t.Errorf("empty key error = %v, want %v", err, ErrInvalidKey)
	}
	if _, err := store.Increment(ctx, "key", 0); err != ErrInvalidWindow {
		t.Errorf("zero window error = %v, want %v", err, ErrInvalidWindow)
	}
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const goroutines = 50
	const perGoroutine = 20

	var wg sync.WaitGroup
	seen := make(chan int64, goroutines*perGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				counter, err := store.Increment(ctx, "shared", time.Hour)
				if err != nil {
					t.Errorf("Increment() unexpected error: %v", err)
					return
				}
				seen <- counter.Count
			}
		}()
	}
	wg.Wait()
	close(seen)

	// Every count must be handed out exactly once
	counts := make(map[int64]bool)
	for c := range seen {
		if counts[c] {
			t.Fatalf("count %d returned twice", c)
		}
		counts[c] = true
	}
	if len(counts) != goroutines*perGoroutine {
		t.Errorf("distinct counts = %d, want %d", len(counts), goroutines*perGoroutine)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := NewMemoryStoreWithClock(clock.Now)
	ctx := context.Background()

	store.Increment(ctx, "short", time.Second)
	store.Increment(ctx, "long", time.Hour)

	clock.Advance(2 * time.Second)
	if removed := store.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if store.Count() != 1 {
		t.Errorf("Count() = %d, want 1", store.Count())
	}
}

func TestMemoryStore_StartBackgroundCleanup(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Increment(ctx, "key1", 20*time.Millisecond)
	store.Increment(ctx, "key2", 20*time.Millisecond)

	if store.Count() != 2 {
		t.Fatalf("expected 2 entries, got %d", store.Count())
	}

	stop := store.StartBackgroundCleanup(10 * time.Millisecond)
	defer stop()

	deadline := time.Now().Add(2 * time.Second)
	for store.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if store.Count() != 0 {
		t.Errorf("expected 0 entries after cleanup, got %d", store.Count())
	}

	// stopping twice must not panic
	stop()
}
