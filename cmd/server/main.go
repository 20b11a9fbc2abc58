package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yourusername/rsvpfence/api"
	"github.com/yourusername/rsvpfence/config"
	"github.com/yourusername/rsvpfence/limiter"
	"github.com/yourusername/rsvpfence/metrics"
	"github.com/yourusername/rsvpfence/middleware"
	"github.com/yourusername/rsvpfence/rsvp"
	"github.com/yourusername/rsvpfence/sheet"
	"github.com/yourusername/rsvpfence/store"
	"github.com/yourusername/rsvpfence/token"
)

const (
	cleanupInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", "rsvpfence")), nil
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	counters, err := store.Open(ctx, store.Options{
		Redis: store.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		PingTimeout:   cfg.Redis.PingTimeout,
		RequireShared: cfg.SharedStoreRequired(),
	}, logger.Named("store"))
	if err != nil {
		return err
	}
	defer counters.Close()

	if mem, ok := counters.(*store.MemoryStore); ok {
		stopCleanup := mem.StartBackgroundCleanup(cleanupInterval)
		defer stopCleanup()
	}

	rows, err := sheet.OpenSQLite(cfg.Sheet.Path)
	if err != nil {
		return err
	}
	defer rows.Close()

	guarded := sheet.NewGuard(rows, sheet.GuardConfig{
		Timeout:        cfg.Sheet.Timeout,
		QuotaPerSecond: cfg.Sheet.QuotaPerSecond,
		QuotaBurst:     cfg.Sheet.QuotaBurst,
	}, logger.Named("sheet"))

	tracker := metrics.NewMetrics()

	limits, err := limiter.NewRegistry(counters, limiter.WithRecorder(tracker))
	if err != nil {
		return err
	}

	tokens, err := token.NewAuthority(cfg.BaseURL)
	if err != nil {
		return err
	}

	messages, err := rsvp.NewMessages(cfg.Locale)
	if err != nil {
		return err
	}

	svc, err := rsvp.NewService(guarded, limits, tokens, messages, rsvp.Config{
		Deadline: cfg.DeadlineTime(),
		Retry: rsvp.RetryPolicy{
			Attempts:  cfg.Retry.Attempts,
			BaseDelay: cfg.Retry.BaseDelay,
		},
	}, rsvp.WithLogger(logger.Named("rsvp")), rsvp.WithOutcomeRecorder(tracker))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	api.NewHandler(svc, messages, logger.Named("http")).Register(mux)
	mux.Handle("GET /metrics", api.NewMetricsHandler(tracker))
	mux.Handle("GET /health", api.NewHealthHandler(map[string]api.Pinger{
		"store": counters,
		"sheet": guarded,
	}))
	mux.HandleFunc("GET /dashboard", dashboardHandler)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           middleware.Logging(logger.Named("http"))(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("environment", cfg.Environment),
			zap.Stringer("locale", messages.Locale()),
			zap.Time("deadline", cfg.DeadlineTime()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
