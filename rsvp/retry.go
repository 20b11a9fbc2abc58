package rsvp

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/yourusername/rsvpfence/sheet"
)

// RetryPolicy bounds retries of sheet calls.
type RetryPolicy struct {
	Attempts  uint          // Total tries including the first. Default: 3
	BaseDelay time.Duration // Delay before the second try, doubling after. Default: 1s
}

// DefaultRetryPolicy tries three times, waiting 1s then 2s.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Attempts == 0 {
		p.Attempts = DefaultRetryPolicy.Attempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	return p
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = p.BaseDelay << p.Attempts
	return b
}

// withRetry runs fn until it succeeds, fails permanently or runs out of tries.
// Transient sheet errors are retried; anything else stops at once. The
// returned error is always an *Error.
func withRetry[T any](ctx context.Context, policy RetryPolicy, logger *zap.Logger, op string, fn func() (T, error)) (T, *Error) {
	attempt := 0
	operation := func() (T, error) {
		attempt++
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if sheet.IsTransient(err) {
			return v, &Error{Kind: KindUpstreamTransient, Reason: sheet.KindOf(err).String(), Err: err}
		}
		return v, backoff.Permanent(&Error{Kind: KindUpstreamFatal, Reason: sheet.KindOf(err).String(), Err: err})
	}

	v, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxTries(policy.Attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("sheet call failed, retrying",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Duration("delay", next),
				zap.Error(err),
			)
		}),
	)
	if err == nil {
		return v, nil
	}

	var opErr *Error
	if !errors.As(err, &opErr) {
		return v, &Error{Kind: KindUnknown, Reason: op, Err: err}
	}
	if opErr.Kind == KindUpstreamTransient {
		// out of tries
		return v, &Error{Kind: KindUpstreamFatal, Reason: opErr.Reason, Err: opErr.Err}
	}
	return v, opErr
}
