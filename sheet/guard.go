package sheet

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// GuardConfig bounds every call made through a Guard.
type GuardConfig struct {
	Timeout        time.Duration // Per-call deadline. Default: 10s
	QuotaPerSecond float64       // Sustained request rate. Default: 1
	QuotaBurst     int           // Requests allowed in a burst. Default: 100
}

// Guard wraps a Sheet with a per-call timeout and a local request quota,
// mirroring the limits of a hosted spreadsheet API (100 requests per 100s).
type Guard struct {
	next    Sheet
	timeout time.Duration
	quota   *rate.Limiter
	logger  *zap.Logger
}

// Ensure Guard implements Sheet interface
var _ Sheet = (*Guard)(nil)

// NewGuard wraps next.
func NewGuard(next Sheet, config GuardConfig, logger *zap.Logger) *Guard {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.QuotaPerSecond <= 0 {
		config.QuotaPerSecond = 1
	}
	if config.QuotaBurst <= 0 {
		config.QuotaBurst = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		next:    next,
		timeout: config.Timeout,
		quota:   rate.NewLimiter(rate.Limit(config.QuotaPerSecond), config.QuotaBurst),
		logger:  logger,
	}
}

func (g *Guard) begin(ctx context.Context, op string) (context.Context, context.CancelFunc, error) {
	if !g.quota.Allow() {
		g.logger.Warn("sheet quota exhausted", zap.String("op", op))
		return nil, nil, &Error{Op: op, Kind: KindQuotaExceeded, Err: ErrQuotaExceeded}
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	return ctx, cancel, nil
}

func (g *Guard) AppendRow(ctx context.Context, rec Record) error {
	ctx, cancel, err := g.begin(ctx, "append")
	if err != nil {
		return err
	}
	defer cancel()
	return g.next.AppendRow(ctx, rec)
}

func (g *Guard) FindRow(ctx context.Context, match func(Record) bool) (Row, bool, error) {
	ctx, cancel, err := g.begin(ctx, "find")
	if err != nil {
		return Row{}, false, err
	}
	defer cancel()
	return g.next.FindRow(ctx, match)
}

func (g *Guard) UpdateRowFields(ctx context.Context, index int, fields Fields) error {
	ctx, cancel, err := g.begin(ctx, "update")
	if err != nil {
		return err
	}
	defer cancel()
	return g.next.UpdateRowFields(ctx, index, fields)
}

// Ping bypasses the quota so health checks never consume it.
func (g *Guard) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.next.Ping(ctx)
}
