package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// NewClient creates a go-redis client from a URL (e.g. "redis://localhost:6379")
// and verifies the connection. A circuit breaker hook guards every
// operation so callers see fast failures during an outage.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	rdb.AddHook(newBreakerHook())

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}

// HealthChecker adapts the go-redis client to the plain Ping(ctx) error
// shape the readiness probe wants.
type HealthChecker struct {
	Client *redis.Client
}

func (h HealthChecker) Ping(ctx context.Context) error {
	return h.Client.Ping(ctx).Err()
}
