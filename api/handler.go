package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/rsvpfence/middleware"
	"github.com/yourusername/rsvpfence/rsvp"
)

const maxBodyBytes = 16 << 10

// Service is the RSVP operation surface served over HTTP
type Service interface {
	Submit(ctx context.Context, req rsvp.SubmitRequest) rsvp.SubmitResult
	Update(ctx context.Context, token string, req rsvp.UpdateRequest) rsvp.Result
	FetchForEdit(ctx context.Context, token string) rsvp.FetchResult
}

// Handler serves the RSVP endpoints
type Handler struct {
	svc      Service
	messages *rsvp.Messages
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a new API handler
func NewHandler(svc Service, messages *rsvp.Messages, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:      svc,
		messages: messages,
		logger:   logger,
		now:      time.Now,
	}
}

// SubmitRequest is the POST /rsvp body
type SubmitRequest struct {
	Name             string `json:"name"`
	AttendanceStatus string `json:"attendanceStatus"`
	GuestCount       *int   `json:"guestCount,omitempty"`
}

// UpdateRequest is the PUT /rsvp/edit/{token} body. No other fields are accepted.
type UpdateRequest struct {
	Name       string `json:"name"`
	GuestCount *int   `json:"guestCount"`
}

// Register adds the RSVP routes to mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /rsvp", h.Submit)
	mux.HandleFunc("GET /rsvp/edit/{token}", h.FetchForEdit)
	mux.HandleFunc("PUT /rsvp/edit/{token}", h.Update)
}

// Submit handles POST /rsvp
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.badRequest(w, r, err)
		return
	}

	res := h.svc.Submit(r.Context(), rsvp.SubmitRequest{
		ClientIP:   middleware.ClientIP(r),
		Name:       req.Name,
		Status:     req.AttendanceStatus,
		GuestCount: req.GuestCount,
	})

	status := statusFor(res.Result)
	if res.Success {
		status = http.StatusCreated
	}
	h.respond(w, res.Result, status, res)
}

// FetchForEdit handles GET /rsvp/edit/{token}
func (h *Handler) FetchForEdit(w http.ResponseWriter, r *http.Request) {
	res := h.svc.FetchForEdit(r.Context(), r.PathValue("token"))
	h.respond(w, res.Result, statusFor(res.Result), res)
}

// Update handles PUT /rsvp/edit/{token}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		h.badRequest(w, r, err)
		return
	}

	res := h.svc.Update(r.Context(), r.PathValue("token"), rsvp.UpdateRequest{
		Name:       req.Name,
		GuestCount: req.GuestCount,
	})
	h.respond(w, res, statusFor(res), res)
}

func (h *Handler) respond(w http.ResponseWriter, res rsvp.Result, status int, body any) {
	if res.RateLimit != nil {
		middleware.SetRateLimitHeaders(w, *res.RateLimit, h.now())
	}
	writeJSON(w, status, body)
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug("rejected request body",
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.Error(err),
	)
	writeJSON(w, http.StatusBadRequest, rsvp.Result{
		Success: false,
		Kind:    rsvp.KindValidationFailed,
		Message: h.messages.ForKind(rsvp.KindValidationFailed),
	})
}

// statusFor maps a result to its HTTP status
func statusFor(res rsvp.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Kind {
	case rsvp.KindDeadlinePassed, rsvp.KindStatusNotEligible:
		return http.StatusForbidden
	case rsvp.KindInvalidToken:
		return http.StatusNotFound
	case rsvp.KindRateLimited:
		return http.StatusTooManyRequests
	case rsvp.KindValidationFailed:
		return http.StatusBadRequest
	case rsvp.KindUpstreamTransient, rsvp.KindUpstreamFatal:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, strict bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
