// README: Redis-backed departures cache for warm starts.
package departures

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "mrx:departures"

type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: client, ttl: ttl}
}

func (c *RedisCache) Save(ctx context.Context, deps LineDepartures) error {
	data, err := json.Marshal(deps)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, cacheKey, data, c.ttl).Err()
}

func (c *RedisCache) Load(ctx context.Context) (LineDepartures, bool, error) {
	data, err := c.redis.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var deps LineDepartures
	if err := json.Unmarshal(data, &deps); err != nil {
		return nil, false, err
	}
	return deps, len(deps) > 0, nil
}
