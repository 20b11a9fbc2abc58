package limiter

import "errors"

var (
	// ErrInvalidKey is returned when the identifier is empty
	ErrInvalidKey = errors.New("rate limit identifier cannot be empty")

	// ErrStoreFailed wraps counter store errors
	ErrStoreFailed = errors.New("rate limit store failed")

	// ErrInvalidConfig is returned when a limiter option is invalid
	ErrInvalidConfig = errors.New("invalid limiter configuration")
)
