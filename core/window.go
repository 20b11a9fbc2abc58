package core

import "time"

// Evaluate turns a window count into a decision.
// The count already includes the current request, so the first request in a
// fresh window arrives with count == 1.
func Evaluate(policy Policy, count int64, resetAt time.Time) Decision {
	if count <= policy.Max {
		return Decision{
			Allowed:   true,
			Limit:     policy.Max,
			Remaining: policy.Max - count,
			ResetAt:   resetAt,
		}
	}

	return Decision{
		Allowed:   false,
		Limit:     policy.Max,
		Remaining: 0,
		ResetAt:   resetAt,
	}
}
