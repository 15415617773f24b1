package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

const rateWindow = time.Minute

// ConnectRateLimiter throttles OAuth initiations per user with a fixed
// one-minute window in Redis. It only slows a misbehaving client down;
// state token expiry is what bounds the flow itself.
type ConnectRateLimiter struct {
	rdb       *goredis.Client
	clock     clockwork.Clock
	perMinute int
}

// NewConnectRateLimiter creates a limiter allowing perMinute initiations
// per user per minute.
func NewConnectRateLimiter(rdb *goredis.Client, clock clockwork.Clock, perMinute int) *ConnectRateLimiter {
	return &ConnectRateLimiter{rdb: rdb, clock: clock, perMinute: perMinute}
}

// Allow reports whether the user may start another OAuth flow now.
// Fails open only on explicit caller decision; an error is returned, not
// hidden.
func (l *ConnectRateLimiter) Allow(ctx context.Context, userID uuid.UUID) (bool, error) {
	window := l.clock.Now().Unix() / int64(rateWindow.Seconds())
	key := fmt.Sprintf("rate_limit:connect:%s:%d", userID, window)

	pipe := l.rdb.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rateWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return count.Val() <= int64(l.perMinute), nil
}
