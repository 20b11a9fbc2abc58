package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger is anything whose reachability can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles GET /health requests
type HealthHandler struct {
	checks  map[string]Pinger
	timeout time.Duration
}

// HealthResponse reports each dependency as "ok" or "unavailable"
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewHealthHandler checks every named dependency on each request
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// ServeHTTP handles the health endpoint
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, status, resp)
}
