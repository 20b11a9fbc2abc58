package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/rsvpfence/core"
	"github.com/yourusername/rsvpfence/limiter"
	"github.com/yourusername/rsvpfence/metrics"
	"github.com/yourusername/rsvpfence/rsvp"
	"github.com/yourusername/rsvpfence/sheet"
	"github.com/yourusername/rsvpfence/store"
	"github.com/yourusername/rsvpfence/token"
)

type stubService struct {
	submit rsvp.SubmitResult
	update rsvp.Result
	fetch  rsvp.FetchResult

	gotSubmit rsvp.SubmitRequest
	gotUpdate rsvp.UpdateRequest
	gotToken  string
}

func (s *stubService) Submit(_ context.Context, req rsvp.SubmitRequest) rsvp.SubmitResult {
	s.gotSubmit = req
	return s.submit
}

func (s *stubService) Update(_ context.Context, tok string, req rsvp.UpdateRequest) rsvp.Result {
	s.gotToken, s.gotUpdate = tok, req
	return s.update
}

func (s *stubService) FetchForEdit(_ context.Context, tok string) rsvp.FetchResult {
	s.gotToken = tok
	return s.fetch
}

func newTestMux(t *testing.T, svc Service) *http.ServeMux {
	t.Helper()
	messages, err := rsvp.NewMessages("ms")
	require.NoError(t, err)
	mux := http.NewServeMux()
	NewHandler(svc, messages, nil).Register(mux)
	return mux
}

func do(mux http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestSubmit_PassesFieldsAndClientIP(t *testing.T) {
	svc := &stubService{submit: rsvp.SubmitResult{
		Result:   rsvp.Result{Success: true, Message: "ok"},
		EditLink: "https://x/edit/abc",
	}}
	mux := newTestMux(t, svc)

	w := do(mux, http.MethodPost, "/rsvp",
		`{"name":"Ahmad","attendanceStatus":"attending","guestCount":2}`,
		map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Ahmad", svc.gotSubmit.Name)
	assert.Equal(t, "attending", svc.gotSubmit.Status)
	require.NotNil(t, svc.gotSubmit.GuestCount)
	assert.Equal(t, 2, *svc.gotSubmit.GuestCount)
	assert.Equal(t, "203.0.113.7", svc.gotSubmit.ClientIP)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "https://x/edit/abc", body["editLink"])
	assert.NotContains(t, body, "kind")
}

func TestSubmit_MalformedBody(t *testing.T) {
	svc := &stubService{}
	mux := newTestMux(t, svc)

	for _, body := range []string{`{`, `{"guestCount":2.5}`, `{"name":"a"}{"name":"b"}`, `[]`} {
		w := do(mux, http.MethodPost, "/rsvp", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
	}
	assert.Empty(t, svc.gotSubmit.Name)
}

func TestUpdate_RejectsUnknownFields(t *testing.T) {
	svc := &stubService{update: rsvp.Result{Success: true}}
	mux := newTestMux(t, svc)

	w := do(mux, http.MethodPut, "/rsvp/edit/abc", `{"name":"A","guestCount":2,"attendanceStatus":"not_attending"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.gotToken)

	w = do(mux, http.MethodPut, "/rsvp/edit/abc", `{"name":"A","guestCount":2}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", svc.gotToken)
	assert.Equal(t, "A", svc.gotUpdate.Name)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		kind rsvp.Kind
		want int
	}{
		{rsvp.KindDeadlinePassed, http.StatusForbidden},
		{rsvp.KindInvalidToken, http.StatusNotFound},
		{rsvp.KindRateLimited, http.StatusTooManyRequests},
		{rsvp.KindValidationFailed, http.StatusBadRequest},
		{rsvp.KindStatusNotEligible, http.StatusForbidden},
		{rsvp.KindUpstreamTransient, http.StatusServiceUnavailable},
		{rsvp.KindUpstreamFatal, http.StatusServiceUnavailable},
		{rsvp.KindUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			svc := &stubService{fetch: rsvp.FetchResult{Result: rsvp.Result{Kind: tt.kind, Message: "m"}}}
			w := do(newTestMux(t, svc), http.MethodGet, "/rsvp/edit/abc", "", nil)
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), `"kind":"`+tt.kind.String()+`"`)
		})
	}
}

func TestRateLimitedResponseHeaders(t *testing.T) {
	svc := &stubService{fetch: rsvp.FetchResult{Result: rsvp.Result{
		Kind:    rsvp.KindRateLimited,
		Message: "Terlalu banyak percubaan. Sila cuba lagi dalam 1 minit.",
		RateLimit: &core.Decision{
			Allowed: false,
			Limit:   10,
			ResetAt: time.Now().Add(30 * time.Second),
		},
	}}}

	w := do(newTestMux(t, svc), http.MethodGet, "/rsvp/edit/abc", "", nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestMethodNotAllowed(t *testing.T) {
	w := do(newTestMux(t, &stubService{}), http.MethodDelete, "/rsvp/edit/abc", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// TestEndToEnd runs the real service over SQLite and in-memory counters.
func TestEndToEnd(t *testing.T) {
	db, err := sheet.OpenSQLite(filepath.Join(t.TempDir(), "rsvp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := metrics.NewMetrics()
	limits, err := limiter.NewRegistry(store.NewMemoryStore(), limiter.WithRecorder(m))
	require.NoError(t, err)
	tokens, err := token.NewAuthority("https://rsvp.example.com")
	require.NoError(t, err)
	messages, err := rsvp.NewMessages("en")
	require.NoError(t, err)

	svc, err := rsvp.NewService(sheet.NewGuard(db, sheet.GuardConfig{}, nil), limits, tokens, messages,
		rsvp.Config{Deadline: time.Now().Add(time.Hour)},
		rsvp.WithOutcomeRecorder(m),
	)
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHandler(svc, messages, nil).Register(mux)
	mux.Handle("GET /metrics", NewMetricsHandler(m))

	// submit
	w := do(mux, http.MethodPost, "/rsvp", `{"name":"Ahmad","attendanceStatus":"attending","guestCount":2}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var submitted rsvp.SubmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	tok := token.FromLink(submitted.EditLink)
	_, ok := token.ValidateSyntax(tok)
	require.True(t, ok, submitted.EditLink)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Remaining"))

	// fetch
	w = do(mux, http.MethodGet, "/rsvp/edit/"+tok, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var fetched rsvp.FetchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "Ahmad", fetched.Name)
	assert.Equal(t, 2, fetched.GuestCount)

	// update
	w = do(mux, http.MethodPut, "/rsvp/edit/"+tok, `{"name":"Ahmad Ali","guestCount":5}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Your RSVP has been updated!")

	w = do(mux, http.MethodGet, "/rsvp/edit/"+tok, "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "Ahmad Ali", fetched.Name)
	assert.Equal(t, 5, fetched.GuestCount)

	// unknown token looks the same as a malformed one
	unknown := do(mux, http.MethodGet, "/rsvp/edit/"+strings.Repeat("0", 64), "", nil)
	malformed := do(mux, http.MethodGet, "/rsvp/edit/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, unknown.Code)
	assert.Equal(t, unknown.Body.String(), malformed.Body.String())

	// metrics reflect the traffic
	w = do(mux, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, int64(5), snap.TotalChecks)
	assert.Len(t, snap.Operations, 3)
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("down") })

	w := httptest.NewRecorder()
	NewHealthHandler(map[string]Pinger{"store": ok, "sheet": ok}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	NewHealthHandler(map[string]Pinger{"store": ok, "sheet": down}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, map[string]string{"store": "ok", "sheet": "unavailable"}, resp.Checks)
}
