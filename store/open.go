package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Options controls which counter store Open picks
type Options struct {
	Redis RedisConfig

	// PingTimeout bounds the startup reachability check. Default: 2s
	PingTimeout time.Duration

	// RequireShared refuses the in-memory fallback. Production deployments run
	// several instances, and per-process counters would multiply every quota.
	RequireShared bool
}

// Open selects the counter store once at startup.
// A configured and reachable Redis wins. Otherwise the in-memory store is used
// for the rest of the process lifetime, unless RequireShared is set, in which
// case Open fails with ErrSharedStoreRequired.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.Redis.Addr == "" {
		if opts.RequireShared {
			return nil, fmt.Errorf("%w: no redis address configured", ErrSharedStoreRequired)
		}
		logger.Warn("redis not configured, using in-memory counters (single instance only)")
		return NewMemoryStore(), nil
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	redisStore := NewRedisStore(opts.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := redisStore.Ping(pingCtx); err != nil {
		_ = redisStore.Close()
		if opts.RequireShared {
			return nil, fmt.Errorf("%w: redis at %s unreachable: %v", ErrSharedStoreRequired, opts.Redis.Addr, err)
		}
		logger.Warn("redis unreachable, using in-memory counters for this process",
			zap.String("addr", opts.Redis.Addr),
			zap.Error(err),
		)
		return NewMemoryStore(), nil
	}

	logger.Info("connected to redis", zap.String("addr", opts.Redis.Addr))
	return redisStore, nil
}
