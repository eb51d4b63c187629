package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RetryConfig controls how the start-up ping is retried.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryConfig returns the retry settings used by the server.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsedTime:  15 * time.Second,
	}
}

// NewClient creates a new Redis client and verifies the connection, retrying
// the ping with exponential backoff.
func NewClient(ctx context.Context, redisURL string, retry RetryConfig, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retry.InitialInterval
	b.MaxInterval = retry.MaxInterval
	b.MaxElapsedTime = retry.MaxElapsedTime

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		pingErr := client.Ping(ctx).Err()
		if pingErr == nil {
			return nil
		}
		if attempt > retry.MaxRetries {
			return backoff.Permanent(pingErr)
		}

		logger.Warn().Err(pingErr).Int("attempt", attempt).Str("addr", opts.Addr).Msg("redis not reachable, retrying")
		return pingErr
	}, backoff.WithContext(b, ctx))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
