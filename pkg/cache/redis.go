package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/popdyn/pkg/buildinfo"
)

// DefaultRedisPrefix namespaces popdyn keys on a shared Redis.
const DefaultRedisPrefix = "popdyn:"

// RedisCache stores entries in Redis with native expiry. It is meant for
// server deployments where several popdyn processes share one cache.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a [RedisCache].
type RedisOption func(*RedisCache)

// WithRedisPrefix overrides [DefaultRedisPrefix].
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisCache) { c.prefix = prefix }
}

// NewRedisCache wraps an existing client. The cache owns the client and
// closes it on [RedisCache.Close].
func NewRedisCache(client redis.UniversalClient, opts ...RedisOption) *RedisCache {
	c := &RedisCache{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OpenRedis connects to the Redis server at url (redis://[user:pass@]host:port/db)
// and verifies the connection.
func OpenRedis(ctx context.Context, url string, opts ...RedisOption) (*RedisCache, error) {
	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if ropts.ClientName == "" {
		ropts.ClientName = buildinfo.UserAgent()
	}
	client := redis.NewClient(ropts)
	err = RetryWithBackoff(ctx, func() error {
		return classify(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisCache(client, opts...), nil
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, err = c.client.Get(ctx, c.prefix+key).Bytes()
		return classify(err)
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in Redis. A zero ttl stores without expiry.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		return classify(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
	})
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		return classify(c.client.Del(ctx, c.prefix+key).Err())
	})
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// classify marks connectivity failures as retryable.
func classify(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return Retryable(fmt.Errorf("%w: %w", ErrNetwork, err))
	}
	return err
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
