package rsvp

import (
	"errors"
	"fmt"
)

// Kind is the closed set of outcomes a failed operation can report.
type Kind int

const (
	KindNone Kind = iota
	KindDeadlinePassed
	KindInvalidToken
	KindRateLimited
	KindValidationFailed
	KindStatusNotEligible
	KindUpstreamTransient
	KindUpstreamFatal
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return ""
	case KindDeadlinePassed:
		return "DEADLINE_PASSED"
	case KindInvalidToken:
		return "INVALID_EDIT_TOKEN"
	case KindRateLimited:
		return "RATE_LIMITED"
	case KindValidationFailed:
		return "VALIDATION_FAILED"
	case KindStatusNotEligible:
		return "STATUS_NOT_ELIGIBLE"
	case KindUpstreamTransient:
		return "UPSTREAM_TRANSIENT"
	case KindUpstreamFatal:
		return "UPSTREAM_FATAL"
	default:
		return "UNKNOWN_ERROR"
	}
}

// MarshalText encodes the kind as its code.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind code. Unrecognised codes become KindUnknown.
func (k *Kind) UnmarshalText(text []byte) error {
	code := string(text)
	for candidate := KindNone; candidate <= KindUnknown; candidate++ {
		if candidate.String() == code {
			*k = candidate
			return nil
		}
	}
	*k = KindUnknown
	return nil
}

// Reasons attached to invalid token rejections. They only reach logs.
const (
	ReasonInvalidFormat    = "invalid_format"
	ReasonSchemaValidation = "schema_validation_failed"
	ReasonTokenNotFound    = "token_not_found"
)

var (
	// ErrInvalidConfig is returned when a service option is invalid
	ErrInvalidConfig = errors.New("invalid rsvp service configuration")

	// ErrUnsupportedLocale is returned for locales without a message catalog
	ErrUnsupportedLocale = errors.New("unsupported locale")
)

// Error is a classified failure inside an operation.
type Error struct {
	Kind   Kind
	Reason string
	Fields map[string]string // field -> message key, validation only
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
