package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/impairment-ledger/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotObtained is returned when another holder owns the lock
var ErrLockNotObtained = errors.New("lock not obtained")

// ReleaseFunc releases a previously obtained lock
type ReleaseFunc func(ctx context.Context) error

// RedisLocker hands out short-lived distributed locks backed by Redis
type RedisLocker struct {
	client *redis.Client
	locker *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	logger *slog.Logger
}

// NewRedisLocker connects to Redis. It returns nil, nil when no address is
// configured so callers can fall back to NoopLocker.
func NewRedisLocker(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (*RedisLocker, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Connected to Redis", "addr", cfg.Addr)

	return &RedisLocker{
		client: client,
		locker: redislock.New(client),
		ttl:    cfg.LockTTL,
		wait:   cfg.LockWait,
		retry:  cfg.LockRetry,
		logger: logger,
	}, nil
}

// Obtain takes the lock on key for the configured TTL, retrying while another
// holder owns it for up to the configured wait.
func (r *RedisLocker) Obtain(ctx context.Context, key string) (ReleaseFunc, error) {
	lock, err := r.locker.Obtain(ctx, key, r.ttl, &redislock.Options{
		RetryStrategy: retryStrategy(r.wait, r.retry),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrLockNotObtained
		}
		return nil, fmt.Errorf("failed to obtain redis lock: %w", err)
	}

	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("failed to release redis lock: %w", err)
		}
		return nil
	}, nil
}

// retryStrategy spreads attempts evenly over wait. A zero wait tries once.
func retryStrategy(wait, interval time.Duration) redislock.RetryStrategy {
	if wait <= 0 || interval <= 0 {
		return redislock.NoRetry()
	}
	return redislock.LimitRetry(redislock.LinearBackoff(interval), int(wait/interval))
}

func (r *RedisLocker) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}
	r.logger.Info("Closed Redis connection")
	return nil
}

// NoopLocker always grants the lock. Used when Redis is not configured.
type NoopLocker struct{}

func (NoopLocker) Obtain(context.Context, string) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}
