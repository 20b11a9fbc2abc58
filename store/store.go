package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidKey is returned when a counter key is empty
	ErrInvalidKey = errors.New("counter key cannot be empty")

	// ErrInvalidWindow is returned when the window is zero or negative
	ErrInvalidWindow = errors.New("counter window must be positive")

	// ErrSharedStoreRequired is returned by Open when no shared store can be used
	// and the process is not allowed to fall back to local counters
	ErrSharedStoreRequired = errors.New("shared counter store required")
)

// Counter is the state of one key after an increment
type Counter struct {
	Count   int64     // Requests seen in the window, including this one
	ResetAt time.Time // When the window for this key resets
}

// Store defines the interface for windowed counter storage.
// Implementations must make Increment atomic for callers racing on the same key.
type Store interface {
	// Increment counts one request for key within window and returns the new state.
	Increment(ctx context.Context, key string, window time.Duration) (Counter, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

func checkArgs(key string, window time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	if window <= 0 {
		return ErrInvalidWindow
	}
	return nil
}
