// Package rsvpfence guards a small RSVP service with per-action rate limits
// and unguessable edit links.
//
// The server lives in cmd/server. This package re-exports the pieces needed to
// embed the limiter in another program.
package rsvpfence

import (
	"github.com/yourusername/rsvpfence/core"
	"github.com/yourusername/rsvpfence/limiter"
	"github.com/yourusername/rsvpfence/store"
)

// Re-export main types for convenience
type (
	Policy   = core.Policy
	Decision = core.Decision
	Limiter  = limiter.Limiter
	Store    = store.Store
)

var (
	// NewLimiter creates a limiter for one policy over a counter store
	NewLimiter = limiter.New

	// NewMemoryStore creates a single-process counter store
	NewMemoryStore = store.NewMemoryStore

	// FormatWait converts a reset time into a rounded wait
	FormatWait = core.RetryAfter
)
