package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rsvpfence:"

// fixedWindowScript keeps {count, reset} in a hash per key. A missing entry,
// or one whose reset time has passed, restarts at 1 with reset = now + window.
// Read, reset and increment run as one script so concurrent instances sharing
// the server never interleave.
//
// Returns {count, resetAtMillis}.
var fixedWindowScript = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local count
local reset = tonumber(redis.call("HGET", key, "reset"))
if reset == nil or now >= reset then
  reset = now + window
  count = 1
  redis.call("HSET", key, "count", count, "reset", reset)
else
  count = redis.call("HINCRBY", key, "count", 1)
end
redis.call("PEXPIRE", key, reset - now)

return {count, reset}
`)

// RedisStore provides Redis-backed fixed window counters shared by every
// instance pointed at the same server
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// Ensure RedisStore implements Store interface
var _ Store = (*RedisStore)(nil)

// RedisConfig for creating a Redis store
type RedisConfig struct {
	Addr     string // Redis address (e.g., "localhost:6379")
	Password string // Redis password (empty for no auth)
	DB       int    // Redis database number
}

// NewRedisStore creates a new Redis-backed store
func NewRedisStore(config RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	return NewRedisStoreFromClient(client)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		now:    time.Now,
	}
}

// Increment counts one request for key. An entry whose window has passed is
// treated as absent and restarts at 1.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (Counter, error) {
	if err := checkArgs(key, window); err != nil {
		return Counter{}, err
	}

	windowMs := window.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}

	vals, err := fixedWindowScript.Run(ctx, s.client,
		[]string{keyPrefix + key},
		s.now().UnixMilli(), // ARGV[1]
		windowMs,            // ARGV[2]
	).Int64Slice()
	if err != nil {
		return Counter{}, fmt.Errorf("fixed window script: %w", err)
	}
	if len(vals) != 2 {
		return Counter{}, fmt.Errorf("fixed window script: unexpected reply length %d", len(vals))
	}

	return Counter{
		Count:   vals[0],
		ResetAt: time.UnixMilli(vals[1]),
	}, nil
}

// Clear removes all rsvpfence keys from Redis
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Ping checks if Redis connection is alive
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
