package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/muhtasib/backend/pkg/redis"
)

// RedisCache keeps session metadata in redis. Only metadata is cached:
// equities and orders keep growing while a session runs.
type RedisCache struct {
	cache *redis.Cache
	ttl   time.Duration
}

// NewRedisCache creates a metadata cache; a disabled client makes it a no-op
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		cache: redis.NewCache(client, "muhtasib"),
		ttl:   ttl,
	}
}

func (c *RedisCache) GetSession(ctx context.Context, id uuid.UUID) (*Session, bool, error) {
	var s Session
	found, err := c.cache.Get(ctx, redis.SessionKey(id.String()), &s)
	if err != nil || !found {
		return nil, false, err
	}
	return &s, true, nil
}

func (c *RedisCache) SetSession(ctx context.Context, s *Session) error {
	return c.cache.Set(ctx, redis.SessionKey(s.ID.String()), s, c.ttl)
}
