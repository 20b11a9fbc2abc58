// Package rsvp authorizes and performs the three RSVP operations: submitting a
// new response, loading a response for editing, and updating it.
//
// Every operation runs the same gate sequence and stops at the first failure:
// deadline, token syntax, rate limit, token re-validation, record lookup,
// status, payload, mutation. Each returns a result value and never an error or
// a panic; the caller only has to render it.
package rsvp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/rsvpfence/core"
	"github.com/yourusername/rsvpfence/limiter"
	"github.com/yourusername/rsvpfence/sheet"
	"github.com/yourusername/rsvpfence/token"
)

// Operation names used in logs and metrics.
const (
	ActionSubmit = "submitRSVP"
	ActionUpdate = "updateRSVP"
	ActionFetch  = "fetchRSVPForEdit"
)

// UnknownClient is the rate limit identifier for requests without a client IP.
const UnknownClient = "unknown"

// OutcomeRecorder receives the outcome of every operation.
type OutcomeRecorder interface {
	RecordOutcome(operation, outcome string)
}

// SubmitRequest is a new RSVP.
type SubmitRequest struct {
	ClientIP   string
	Name       string
	Status     string
	GuestCount *int
}

// UpdateRequest carries the only fields an edit may change.
type UpdateRequest struct {
	Name       string
	GuestCount *int
}

// Result is the outcome of an operation.
type Result struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Kind       Kind              `json:"kind,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	RetryAfter time.Duration     `json:"-"`

	// RateLimit is the limiter decision, when the limiter was consulted.
	RateLimit *core.Decision `json:"-"`
}

// SubmitResult adds the edit link of a new RSVP.
type SubmitResult struct {
	Result
	EditLink string `json:"editLink,omitempty"`
}

// FetchResult adds the editable fields of an existing RSVP.
type FetchResult struct {
	Result
	Name       string `json:"name,omitempty"`
	GuestCount int    `json:"guestCount,omitempty"`
}

// Config holds the service settings that come from process configuration.
type Config struct {
	Deadline time.Time
	Retry    RetryPolicy
}

// Service runs the RSVP operations.
type Service struct {
	sheet    sheet.Sheet
	limits   *limiter.Registry
	tokens   *token.Authority
	messages *Messages
	deadline time.Time
	retry    RetryPolicy
	now      func() time.Time
	logger   *zap.Logger
	recorder OutcomeRecorder
}

// Option is a functional option for configuring a Service.
type Option func(*Service) error

// WithLogger sets the logger. Default: no-op
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
		}
		s.logger = logger
		return nil
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		if now == nil {
			return fmt.Errorf("%w: clock cannot be nil", ErrInvalidConfig)
		}
		s.now = now
		return nil
	}
}

// WithOutcomeRecorder reports every operation outcome to r.
func WithOutcomeRecorder(r OutcomeRecorder) Option {
	return func(s *Service) error {
		if r == nil {
			return fmt.Errorf("%w: recorder cannot be nil", ErrInvalidConfig)
		}
		s.recorder = r
		return nil
	}
}

// NewService wires the operations to their collaborators.
func NewService(sh sheet.Sheet, limits *limiter.Registry, tokens *token.Authority, messages *Messages, config Config, opts ...Option) (*Service, error) {
	switch {
	case sh == nil:
		return nil, fmt.Errorf("%w: sheet cannot be nil", ErrInvalidConfig)
	case limits == nil:
		return nil, fmt.Errorf("%w: limiter registry cannot be nil", ErrInvalidConfig)
	case tokens == nil:
		return nil, fmt.Errorf("%w: token authority cannot be nil", ErrInvalidConfig)
	case messages == nil:
		return nil, fmt.Errorf("%w: messages cannot be nil", ErrInvalidConfig)
	case config.Deadline.IsZero():
		return nil, fmt.Errorf("%w: deadline is required", ErrInvalidConfig)
	}

	s := &Service{
		sheet:    sh,
		limits:   limits,
		tokens:   tokens,
		messages: messages,
		deadline: config.Deadline,
		retry:    config.Retry.withDefaults(),
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return s, nil
}

// Deadline returns the RSVP cutoff.
func (s *Service) Deadline() time.Time {
	return s.deadline
}

// Submit records a new RSVP and returns its edit link.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (res SubmitResult) {
	defer s.finish(ActionSubmit, &res.Result)

	if s.deadlinePassed() {
		res.Result = s.failure(ActionSubmit, &Error{Kind: KindDeadlinePassed}, nil)
		return res
	}

	clientIP := strings.TrimSpace(req.ClientIP)
	if clientIP == "" {
		clientIP = UnknownClient
	}
	decision, opErr := s.checkLimit(ctx, ActionSubmit, s.limits.Submit(), clientIP, zap.String("ip", RedactIP(clientIP)))
	if opErr != nil {
		res.Result = s.failure(ActionSubmit, opErr, decision)
		return res
	}

	sub, fieldErrs := validateSubmission(req)
	if fieldErrs != nil {
		res.Result = s.failure(ActionSubmit, &Error{Kind: KindValidationFailed, Fields: fieldErrs}, decision)
		return res
	}

	tok, err := s.tokens.Generate()
	if err != nil {
		res.Result = s.failure(ActionSubmit, &Error{Kind: KindUnknown, Reason: "token_generation", Err: err}, decision)
		return res
	}
	link := s.tokens.EditLink(tok)

	rec := sheet.Record{
		Timestamp:  s.now(),
		Name:       sub.name,
		Status:     sub.status,
		GuestCount: sub.guestCount,
		EditLink:   link,
	}
	_, opErr = withRetry(ctx, s.retry, s.logger, "append", func() (struct{}, error) {
		return struct{}{}, s.sheet.AppendRow(ctx, rec)
	})
	if opErr != nil {
		res.Result = s.failure(ActionSubmit, opErr, decision)
		return res
	}

	key := keySubmittedNotAttending
	if sub.status == sheet.StatusAttending {
		key = keySubmittedAttending
	}
	res.Result = Result{Success: true, Message: s.messages.text(key), RateLimit: decision}
	res.EditLink = link
	return res
}

// FetchForEdit returns the editable fields of the RSVP bound to tok.
func (s *Service) FetchForEdit(ctx context.Context, tok string) (res FetchResult) {
	defer s.finish(ActionFetch, &res.Result)

	row, decision, opErr := s.authorize(ctx, ActionFetch, s.limits.View(), tok)
	if opErr != nil {
		res.Result = s.failure(ActionFetch, opErr, decision)
		return res
	}

	guests := row.GuestCount
	if guests == 0 {
		guests = 1
	}
	res.Result = Result{Success: true, RateLimit: decision}
	res.Name = row.Name
	res.GuestCount = guests
	return res
}

// Update overwrites name and guest count of the RSVP bound to tok.
func (s *Service) Update(ctx context.Context, tok string, req UpdateRequest) (res Result) {
	defer s.finish(ActionUpdate, &res)

	row, decision, opErr := s.authorize(ctx, ActionUpdate, s.limits.Edit(), tok)
	if opErr != nil {
		return s.failure(ActionUpdate, opErr, decision)
	}

	e, fieldErrs := validateEdit(req)
	if fieldErrs != nil {
		return s.failure(ActionUpdate, &Error{Kind: KindValidationFailed, Fields: fieldErrs}, decision)
	}

	fields := sheet.Fields{Name: e.name, GuestCount: e.guestCount}
	_, opErr = withRetry(ctx, s.retry, s.logger, "update", func() (struct{}, error) {
		return struct{}{}, s.sheet.UpdateRowFields(ctx, row.Index, fields)
	})
	if opErr != nil {
		return s.failure(ActionUpdate, opErr, decision)
	}

	return Result{Success: true, Message: s.messages.text(keyUpdated), RateLimit: decision}
}

// authorize runs the token gates shared by fetch and update, through the
// status check, and returns the matching row.
func (s *Service) authorize(ctx context.Context, action string, lim *limiter.Limiter, candidate string) (sheet.Row, *core.Decision, *Error) {
	if s.deadlinePassed() {
		return sheet.Row{}, nil, &Error{Kind: KindDeadlinePassed}
	}

	tok, ok := token.ValidateSyntax(candidate)
	if !ok {
		return sheet.Row{}, nil, &Error{Kind: KindInvalidToken, Reason: ReasonInvalidFormat}
	}

	decision, opErr := s.checkLimit(ctx, action, lim, tok, zap.String("token", token.Redact(tok)))
	if opErr != nil {
		return sheet.Row{}, decision, opErr
	}

	// Checked again after rate limiting, with an independent validator.
	if !token.CheckSchema(tok) {
		return sheet.Row{}, decision, &Error{Kind: KindInvalidToken, Reason: ReasonSchemaValidation}
	}

	type lookup struct {
		row   sheet.Row
		found bool
	}
	found, opErr := withRetry(ctx, s.retry, s.logger, "find", func() (lookup, error) {
		row, ok, err := s.sheet.FindRow(ctx, func(rec sheet.Record) bool {
			return token.Compare(tok, token.FromLink(rec.EditLink))
		})
		return lookup{row: row, found: ok}, err
	})
	if opErr != nil {
		return sheet.Row{}, decision, opErr
	}
	if !found.found {
		return sheet.Row{}, decision, &Error{Kind: KindInvalidToken, Reason: ReasonTokenNotFound}
	}

	if found.row.Status != sheet.StatusAttending {
		return sheet.Row{}, decision, &Error{Kind: KindStatusNotEligible}
	}
	return found.row, decision, nil
}

// checkLimit consumes one slot of lim for identifier. A store failure fails
// closed. logField carries the redacted identifier for the security log.
func (s *Service) checkLimit(ctx context.Context, action string, lim *limiter.Limiter, identifier string, logField zap.Field) (*core.Decision, *Error) {
	decision, err := lim.Limit(ctx, identifier)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Reason: "rate_limit_store", Err: err}
	}
	if decision.Allowed {
		return &decision, nil
	}

	wait := core.RetryAfter(decision.ResetAt, s.now())
	s.securityEvent("rate_limit_exceeded", action,
		logField,
		zap.String("limiter", lim.Policy().Name),
		zap.String("resetIn", wait.String()),
	)
	return &decision, &Error{Kind: KindRateLimited}
}

// failure turns an operation error into its result and logs it.
func (s *Service) failure(action string, opErr *Error, decision *core.Decision) Result {
	res := Result{
		Success:   false,
		Kind:      opErr.Kind,
		Message:   s.messages.ForKind(opErr.Kind),
		RateLimit: decision,
	}

	switch opErr.Kind {
	case KindRateLimited:
		now := s.now()
		res.Message = s.messages.RateLimited(core.RetryAfter(decision.ResetAt, now))
		res.RetryAfter = decision.RetryAfter(now)
	case KindInvalidToken:
		s.securityEvent("invalid_token", action, zap.String("reason", opErr.Reason))
	case KindValidationFailed:
		res.Errors = s.messages.Fields(opErr.Fields)
		s.securityEvent("validation_failed", action, zap.Int("errorCount", len(opErr.Fields)))
	case KindStatusNotEligible:
		s.logger.Info("edit refused for non-attending rsvp", zap.String("action", action))
	case KindUpstreamTransient, KindUpstreamFatal, KindUnknown:
		s.logger.Error("operation failed", zap.String("action", action), zap.Error(opErr))
		s.securityEvent("api_error", action, zap.String("error", opErr.Error()))
	}
	return res
}

// finish keeps operations total: a panic becomes an Unknown result. It also
// reports the final outcome.
func (s *Service) finish(action string, res *Result) {
	if r := recover(); r != nil {
		s.logger.Error("operation panicked",
			zap.String("action", action),
			zap.Any("panic", r),
			zap.Stack("stack"),
		)
		*res = s.failure(action, &Error{Kind: KindUnknown, Reason: "panic", Err: fmt.Errorf("%v", r)}, nil)
	}
	if s.recorder != nil {
		outcome := "success"
		if !res.Success {
			outcome = res.Kind.String()
		}
		s.recorder.RecordOutcome(action, outcome)
	}
}

func (s *Service) securityEvent(event, action string, fields ...zap.Field) {
	fields = append([]zap.Field{zap.String("event", event), zap.String("action", action)}, fields...)
	s.logger.Warn("security event", fields...)
}

func (s *Service) deadlinePassed() bool {
	return s.now().After(s.deadline)
}
