package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	// loginAttemptPrefix is the Redis key prefix for login attempt counters.
	loginAttemptPrefix = "ratelimit:login:"
	// loginAttemptWindow is the fixed window for counting login attempts.
	loginAttemptWindow = time.Minute
)

// LoginAttemptResult contains the result of a login rate limit check.
type LoginAttemptResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// CheckLoginAttempts counts a login attempt for the client and reports
// whether it stays within the per-window limit. The INCR+EXPIRE pair is
// pipelined so the counter and its TTL are set together.
func (c *Cache) CheckLoginAttempts(ctx context.Context, clientIP string, max int) (*LoginAttemptResult, error) {
	key := loginAttemptPrefix + clientIP

	pipe := c.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, loginAttemptWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("count login attempt: %w", err)
	}

	n := count.Val()
	if n > int64(max) {
		ttl, err := c.client.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = loginAttemptWindow
		}
		return &LoginAttemptResult{Allowed: false, RetryAfter: ttl}, nil
	}

	return &LoginAttemptResult{Allowed: true, Remaining: int64(max) - n}, nil
}
