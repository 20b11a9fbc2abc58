package sheet

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a sheet failure once, at the collaborator boundary.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindQuotaExceeded
	KindAuthFailed
	KindNotFound
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindAuthFailed:
		return "auth_failed"
	case KindNotFound:
		return "not_found"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

var (
	// ErrQuotaExceeded is returned when the request quota is spent
	ErrQuotaExceeded = errors.New("sheet request quota exceeded")

	// ErrInvalidRowIndex is returned for updates outside the data range
	ErrInvalidRowIndex = errors.New("invalid row index")

	// ErrRowNotFound is returned when an update matches no row
	ErrRowNotFound = errors.New("row not found")
)

// Error is a classified sheet failure.
type Error struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sheet %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) ErrorKind {
	var sheetErr *Error
	if errors.As(err, &sheetErr) {
		return sheetErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// IsTransient reports whether err is worth retrying.
// Quota, timeout and unclassified server failures are; auth and not-found are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindAuthFailed, KindNotFound:
		return false
	default:
		return true
	}
}
