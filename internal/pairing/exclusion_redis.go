package pairing

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const redisExclusionKey = "alumnirank:recently_shown"

// redisExclusionCache shares the recently-shown window across server
// instances through a redis list. Same semantics as the memory cache:
// most recent first, bounded, re-adding refreshes.
type redisExclusionCache struct {
	client   *redis.Client
	capacity int
}

// NewRedisExclusionCache creates an exclusion cache backed by redis.
func NewRedisExclusionCache(client *redis.Client, capacity int) ExclusionCache {
	if capacity <= 0 {
		capacity = DefaultExclusionSize
	}
	return &redisExclusionCache{client: client, capacity: capacity}
}

func (c *redisExclusionCache) Add(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	pipe := c.client.TxPipeline()
	for _, id := range ids {
		if id == "" {
			continue
		}
		pipe.LRem(ctx, redisExclusionKey, 0, id)
		pipe.LPush(ctx, redisExclusionKey, id)
	}
	pipe.LTrim(ctx, redisExclusionKey, 0, int64(c.capacity-1))
	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisExclusionCache) Recent(ctx context.Context) ([]string, error) {
	return c.client.LRange(ctx, redisExclusionKey, 0, -1).Result()
}

func (c *redisExclusionCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, redisExclusionKey).Err()
}

func (c *redisExclusionCache) Len(ctx context.Context) (int, error) {
	n, err := c.client.LLen(ctx, redisExclusionKey).Result()
	return int(n), err
}
