package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps fixed-window counters in process memory.
// State is lost on restart and is not shared between processes, so it only
// suits single-instance and development deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

// Ensure MemoryStore implements Store interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an in-memory store that reads time from now.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     now,
	}
}

// Increment counts one request for key. An entry whose window has passed is
// treated as absent and restarts at 1.
func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (Counter, error) {
	if err := checkArgs(key, window); err != nil {
		return Counter{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &memoryEntry{count: 0, resetAt: now.Add(window)}
		s.entries[key] = entry
	}
	entry.count++

	return Counter{Count: entry.count, ResetAt: entry.resetAt}, nil
}

// Sweep removes entries whose window has passed.
// Returns the number of entries removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if !now.Before(entry.resetAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Count returns the number of tracked keys, expired or not.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartBackgroundCleanup sweeps expired entries every interval.
// Call the returned function to stop the cleanup goroutine.
func (s *MemoryStore) StartBackgroundCleanup(interval time.Duration) func() {
	if interval <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

// Ping always succeeds for the in-memory store
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close drops all entries
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*memoryEntry)
	return nil
}
