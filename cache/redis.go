package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"blognest/domain"
)

// keyPrefix scopes all page cache entries, so Clear can wipe them without
// touching anything else living in the same Redis.
const keyPrefix = "page:"

// Redis is a PageCache backed by a Redis instance. Entries expire after the
// configured TTL. Clear scans the key prefix and deletes everything under it.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis returns a Redis page cache talking to the given address.
func NewRedis(addr string, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
		ttl: ttl,
	}
}

// Ensure the Redis struct properly implements the domain.PageCache interface.
var _ domain.PageCache = &Redis{}

// Get returns the cached body for the key, if present and not expired.
// A Redis error counts as a miss - the page is then composed fresh.
func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set stores the body under the key with the configured TTL.
func (c *Redis) Set(ctx context.Context, key string, body []byte) error {
	return c.client.Set(ctx, keyPrefix+key, body, c.ttl).Err()
}

// Clear deletes every entry under the page cache prefix.
func (c *Redis) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
