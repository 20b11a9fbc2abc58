package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks rate limiting decisions and RSVP operation outcomes
type Metrics struct {
	totalChecks   atomic.Int64
	allowedChecks atomic.Int64
	blockedChecks atomic.Int64

	mu           sync.RWMutex
	limiterStats map[string]*LimiterStats
	operations   map[string]*OperationStats
	startTime    time.Time
}

// LimiterStats tracks decisions for one named limiter
type LimiterStats struct {
	Limiter   string    `json:"limiter"`
	Allowed   int64     `json:"allowed"`
	Blocked   int64     `json:"blocked"`
	LastBlock time.Time `json:"last_block,omitempty"`
}

// OperationStats tracks outcomes for one RSVP operation
type OperationStats struct {
	Operation string           `json:"operation"`
	Total     int64            `json:"total"`
	Outcomes  map[string]int64 `json:"outcomes"`
}

// Ensure Metrics satisfies the recorder interfaces used by limiter and rsvp
var (
	_ interface{ RecordDecision(string, bool) }   = (*Metrics)(nil)
	_ interface{ RecordOutcome(string, string) } = (*Metrics)(nil)
)

// NewMetrics creates a new metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{
		limiterStats: make(map[string]*LimiterStats),
		operations:   make(map[string]*OperationStats),
		startTime:    time.Now(),
	}
}

// RecordDecision records one limiter check
func (m *Metrics) RecordDecision(limiter string, allowed bool) {
	m.totalChecks.Add(1)
	if allowed {
		m.allowedChecks.Add(1)
	} else {
		m.blockedChecks.Add(1)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stats, exists := m.limiterStats[limiter]
	if !exists {
		stats = &LimiterStats{Limiter: limiter}
		m.limiterStats[limiter] = stats
	}
	if allowed {
		stats.Allowed++
	} else {
		stats.Blocked++
		stats.LastBlock = time.Now()
	}
}

// RecordOutcome records the result of one RSVP operation
func (m *Metrics) RecordOutcome(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, exists := m.operations[operation]
	if !exists {
		stats = &OperationStats{Operation: operation, Outcomes: make(map[string]int64)}
		m.operations[operation] = stats
	}
	stats.Total++
	stats.Outcomes[outcome]++
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limiters := make([]LimiterStats, 0, len(m.limiterStats))
	for _, stats := range m.limiterStats {
		limiters = append(limiters, *stats)
	}
	sort.Slice(limiters, func(i, j int) bool { return limiters[i].Limiter < limiters[j].Limiter })

	operations := make([]OperationStats, 0, len(m.operations))
	for _, stats := range m.operations {
		outcomes := make(map[string]int64, len(stats.Outcomes))
		for k, v := range stats.Outcomes {
			outcomes[k] = v
		}
		operations = append(operations, OperationStats{
			Operation: stats.Operation,
			Total:     stats.Total,
			Outcomes:  outcomes,
		})
	}
	sort.Slice(operations, func(i, j int) bool { return operations[i].Operation < operations[j].Operation })

	return &Snapshot{
		TotalChecks:   m.totalChecks.Load(),
		AllowedChecks: m.allowedChecks.Load(),
		BlockedChecks: m.blockedChecks.Load(),
		Limiters:      limiters,
		Operations:    operations,
		UptimeSeconds: int64(time.Since(m.startTime).Seconds()),
		StartTime:     m.startTime,
	}
}

// Snapshot represents a point-in-time view of metrics
type Snapshot struct {
	TotalChecks   int64            `json:"total_checks"`
	AllowedChecks int64            `json:"allowed_checks"`
	BlockedChecks int64            `json:"blocked_checks"`
	Limiters      []LimiterStats   `json:"limiters"`
	Operations    []OperationStats `json:"operations"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     time.Time        `json:"start_time"`
}
