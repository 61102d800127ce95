// Package cache provides a minimal byte cache used for geocode lookups.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a byte-value cache with TTL expiry. A nil Cache is valid and
// means caching is disabled.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Redis implements Cache on a Redis connection.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the given Redis URL (redis://...) and verifies the
// connection with a ping.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	return r.client.Get(ctx, key).Bytes()
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the underlying connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
