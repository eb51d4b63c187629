package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/bankdash/internal/infrastructure/metrics"
)

// KeyPrefix namespaces every key written by bankdash.
const KeyPrefix = "bankdash:"

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// Cache implements usecase.Cache using Redis.
type Cache struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewCache creates a new Cache. metrics may be nil.
func NewCache(client *redis.Client, metrics *metrics.Metrics) *Cache {
	return &Cache{
		client:  client,
		prefix:  KeyPrefix,
		metrics: metrics,
	}
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		c.countError("get")
		return "", err
	}
	return val, nil
}

// Set stores a value with TTL.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		c.countError("set")
		return err
	}
	return nil
}

// Ping reports whether Redis answers.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.countError("ping")
		return err
	}
	return nil
}

func (c *Cache) countError(op string) {
	if c.metrics != nil {
		c.metrics.RedisErrors.WithLabelValues(op).Inc()
	}
}
