package api

import (
	"net/http"

	"github.com/yourusername/rsvpfence/metrics"
)

// MetricsProvider defines the interface for getting metrics
type MetricsProvider interface {
	GetSnapshot() *metrics.Snapshot
}

// MetricsHandler handles GET /metrics requests
type MetricsHandler struct {
	provider MetricsProvider
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(provider MetricsProvider) *MetricsHandler {
	return &MetricsHandler{provider: provider}
}

// ServeHTTP handles the metrics endpoint
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.provider.GetSnapshot())
}
