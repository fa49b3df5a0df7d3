package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"itemMarket/internal/config"
	cache "itemMarket/internal/infra/redis"
	zapLogger "itemMarket/internal/logger/zap"
)

// RateLimiter counts submissions per user inside a fixed window in redis.
// Calls go through a circuit breaker: when redis is down the breaker opens
// and the limiter fails open, trading loses the rate cap instead of the
// whole submission path.
type RateLimiter struct {
	client         cache.Client
	limit          int64
	window         time.Duration
	prefix         string
	circuitBreaker *gobreaker.CircuitBreaker[int64]
}

func NewRateLimiter(
	client cache.Client,
	limit int64,
	window time.Duration,
	prefix string,
	cfg config.CircuitBreakerConfig,
) *RateLimiter {
	circuitBreaker := gobreaker.NewCircuitBreaker[int64](gobreaker.Settings{
		Name:        "redis-rate-limiter",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	})

	return &RateLimiter{
		client:         client,
		limit:          limit,
		window:         window,
		prefix:         prefix,
		circuitBreaker: circuitBreaker,
	}
}

func (r *RateLimiter) Allow(ctx context.Context, userID uuid.UUID) (bool, error) {
	const op = "RateLimiter.Allow"

	key := r.prefix + userID.String()

	count, err := r.circuitBreaker.Execute(func() (int64, error) {
		count, err := r.client.Incr(ctx, key)
		if err != nil {
			return 0, err
		}

		if count == 1 {
			if err := r.client.Expire(ctx, key, r.window); err != nil {
				return 0, err
			}
		}

		return count, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			zapLogger.Warn(ctx, "rate limiter breaker open, allowing request", zap.String("key", key))
			return true, nil
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return count <= r.limit, nil
}
