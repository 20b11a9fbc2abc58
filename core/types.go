package core

import (
	"errors"
	"time"
)

var (
	// ErrInvalidMax is returned when a policy allows no requests at all
	ErrInvalidMax = errors.New("policy max must be positive")

	// ErrInvalidWindow is returned when a policy window is zero or negative
	ErrInvalidWindow = errors.New("policy window must be positive")
)

// Policy defines a named rate limiting policy
type Policy struct {
	Name   string        // Limiter name, used as the store key prefix
	Max    int64         // Maximum requests per window
	Window time.Duration // Window length
}

// Validate checks that the policy can admit at least one request.
func (p Policy) Validate() error {
	if p.Max <= 0 {
		return ErrInvalidMax
	}
	if p.Window <= 0 {
		return ErrInvalidWindow
	}
	return nil
}

// Decision contains the result of a rate limit check
type Decision struct {
	Allowed   bool      // Whether the request is allowed
	Limit     int64     // Policy max
	Remaining int64     // Requests left in the current window
	ResetAt   time.Time // When the window resets, as reported by the store
}

// RetryAfter returns how long the caller should wait before the window resets.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if wait := d.ResetAt.Sub(now); wait > 0 {
		return wait
	}
	return 0
}
