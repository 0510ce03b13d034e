// Package ratelimit counts requests per identity within a rolling window,
// backed by an external counter store.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Counter is the external counter store: an atomic increment that sets the
// window expiry on the first increment.
type Counter interface {
	// Increment bumps the counter for key and returns the post-increment
	// count. When the increment creates the key, the store arms ttl on it.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisCounter implements Counter on Redis.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter wraps a redis client.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Increment uses INCR and arms EXPIRE only when the count is 1, so the
// window keeps its original deadline for the rest of the period.
func (c *RedisCounter) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			return count, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return count, nil
}

// Limiter applies a per-identity threshold over a rolling window.
type Limiter struct {
	counter   Counter
	limit     int64
	window    time.Duration
	keyPrefix string
}

// NewLimiter creates a limiter allowing limit requests per window.
func NewLimiter(counter Counter, limit int, window time.Duration) *Limiter {
	return &Limiter{
		counter:   counter,
		limit:     int64(limit),
		window:    window,
		keyPrefix: "ratelimit:",
	}
}

// Limit returns the configured threshold.
func (l *Limiter) Limit() int { return int(l.limit) }

// Window returns the configured window.
func (l *Limiter) Window() time.Duration { return l.window }

// Check increments the identity's counter and reports whether the request
// is allowed. Rejected attempts keep counting; the window resets only when
// the store expires the key. Counter errors are returned to the caller,
// which decides the failure policy.
func (l *Limiter) Check(ctx context.Context, identity string) (bool, error) {
	count, err := l.counter.Increment(ctx, l.keyPrefix+identity, l.window)
	if err != nil {
		return false, err
	}
	return count <= l.limit, nil
}
