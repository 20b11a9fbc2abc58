package limiter

import (
	"context"
	"fmt"

	"github.com/yourusername/rsvpfence/core"
	"github.com/yourusername/rsvpfence/store"
)

// Recorder receives every decision a limiter makes.
type Recorder interface {
	RecordDecision(limiter string, allowed bool)
}

// Limiter applies one sliding-window policy over a counter store.
type Limiter struct {
	policy   core.Policy
	store    store.Store
	recorder Recorder
}

// Option is a functional option for configuring a Limiter or Registry.
type Option func(*options) error

type options struct {
	recorder Recorder
}

// WithRecorder reports every decision to r.
func WithRecorder(r Recorder) Option {
	return func(o *options) error {
		if r == nil {
			return fmt.Errorf("%w: recorder cannot be nil", ErrInvalidConfig)
		}
		o.recorder = r
		return nil
	}
}

// New creates a limiter for policy backed by s.
func New(policy core.Policy, s store.Store, opts ...Option) (*Limiter, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, policy.Name, err)
	}
	if policy.Name == "" {
		return nil, fmt.Errorf("%w: policy name cannot be empty", ErrInvalidConfig)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: store cannot be nil", ErrInvalidConfig)
	}

	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return &Limiter{policy: policy, store: s, recorder: o.recorder}, nil
}

// Policy returns the policy this limiter enforces.
func (l *Limiter) Policy() core.Policy {
	return l.policy
}

// Key returns the store key used for identifier.
func (l *Limiter) Key(identifier string) string {
	return "rsvp_" + l.policy.Name + ":" + identifier
}

// Limit counts one request for identifier and decides whether it may proceed.
// The request is counted even when denied.
func (l *Limiter) Limit(ctx context.Context, identifier string) (core.Decision, error) {
	if identifier == "" {
		return core.Decision{}, ErrInvalidKey
	}

	counter, err := l.store.Increment(ctx, l.Key(identifier), l.policy.Window)
	if err != nil {
		return core.Decision{}, fmt.Errorf("%w: %s: %v", ErrStoreFailed, l.policy.Name, err)
	}

	decision := core.Evaluate(l.policy, counter.Count, counter.ResetAt)
	if l.recorder != nil {
		l.recorder.RecordDecision(l.policy.Name, decision.Allowed)
	}
	return decision, nil
}
