package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/cinepos/internal/model"
)

// DefaultCacheKey is the Redis key holding the cached film list.
const DefaultCacheKey = "cinepos:catalog:films"

// redisKV is the subset of redis.Cmdable used by CachedSource.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedSource wraps a Source and keeps its last result in Redis for TTL.
// Redis errors never fail a lookup; the wrapped source is queried instead.
type CachedSource struct {
	next   Source
	rdb    redisKV
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource returns next unchanged when rdb is nil.
func NewCachedSource(next Source, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) Source {
	if rdb == nil {
		return next
	}
	return newCachedSource(next, rdb, ttl, logger)
}

func newCachedSource(next Source, rdb redisKV, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{next: next, rdb: rdb, key: DefaultCacheKey, ttl: ttl, logger: logger}
}

// Films serves the cached list or refills it from the wrapped source.
func (c *CachedSource) Films(ctx context.Context) ([]model.Film, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var films []model.Film
		if jerr := json.Unmarshal(raw, &films); jerr == nil {
			return films, nil
		}
		c.logger.Warn("catalog cache: corrupt entry", zap.String("key", c.key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("catalog cache: get failed", zap.Error(err))
	}

	films, err := c.next.Films(ctx)
	if err != nil {
		return nil, err
	}
	if b, jerr := json.Marshal(films); jerr == nil {
		if serr := c.rdb.Set(ctx, c.key, b, c.ttl).Err(); serr != nil {
			c.logger.Warn("catalog cache: set failed", zap.Error(serr))
		}
	}
	return films, nil
}

// Invalidate drops the cached list so the next lookup hits the source.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}
