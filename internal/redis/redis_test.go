package redis

import (
	"context"
	"sync"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

var (
	containerOnce sync.Once
	testRedisURL  string
	containerErr  error
)

// setupTestClient starts one shared Redis container on first use and
// returns a flushed client. Skipped entirely in short mode.
func setupTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	containerOnce.Do(func() {
		ctx := context.Background()
		container, err := redis.Run(ctx, "redis:7-alpine")
		if err != nil {
			containerErr = err
			return
		}
		endpoint, err := container.Endpoint(ctx, "")
		if err != nil {
			containerErr = err
			return
		}
		testRedisURL = "redis://" + endpoint
	})
	if containerErr != nil {
		t.Fatalf("failed to start redis container: %v", containerErr)
	}

	ctx := context.Background()
	client, err := NewClient(ctx, testRedisURL)
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	if err := client.FlushAll(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return client
}
