package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionPrefix is the Redis key prefix for active session records.
const sessionPrefix = "session:"

// SessionRecord is the server-side state kept per active session.
// Its presence makes the session live; deleting it revokes the session
// before the token's own expiry.
type SessionRecord struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PutSession stores a session record with a TTL matching its lifetime.
func (c *Cache) PutSession(ctx context.Context, sessionID string, rec *SessionRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}

	if err := c.client.Set(ctx, sessionPrefix+sessionID, data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// SessionExists reports whether a session record is still live.
// Expired records disappear via TTL; revoked ones via DeleteSession.
func (c *Cache) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	err := c.client.Get(ctx, sessionPrefix+sessionID).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup session: %w", err)
	}
	return true, nil
}

// DeleteSession revokes a session record. Deleting an already-absent
// session is not an error.
func (c *Cache) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, sessionPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
