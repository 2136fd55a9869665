package identity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedLookup is a read-through Redis cache in front of a PrincipalLookup.
// Cache failures degrade to the underlying lookup; they are logged, never
// surfaced.
type CachedLookup struct {
	next   PrincipalLookup
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedLookup wraps next with a Redis cache.
func NewCachedLookup(next PrincipalLookup, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedLookup {
	return &CachedLookup{next: next, client: client, ttl: ttl, logger: logger}
}

// FindBySubject returns the cached principal when present, otherwise resolves
// through the underlying lookup and stores the result.
func (c *CachedLookup) FindBySubject(ctx context.Context, subject string) (*Principal, error) {
	key := cacheKey(subject)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var p Principal
		if err := json.Unmarshal(payload, &p); err == nil {
			return &p, nil
		}
		c.warn("decode cached principal", subject, err)
	} else if !errors.Is(err, redis.Nil) {
		c.warn("read principal cache", subject, err)
	}

	p, err := c.next.FindBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.warn("write principal cache", subject, err)
		}
	}
	return p, nil
}

// Invalidate drops a cached principal, e.g. after a membership change.
func (c *CachedLookup) Invalidate(ctx context.Context, subject string) error {
	err := c.client.Del(ctx, cacheKey(subject)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (c *CachedLookup) warn(msg, subject string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, slog.String("subject", subject), slog.Any("error", err))
	}
}

func cacheKey(subject string) string {
	return "principal:" + subject
}
