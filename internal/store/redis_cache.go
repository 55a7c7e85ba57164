package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-hashprefix/internal/lookup"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// RedisCache is a Redis implementation of lookup.Cache.
// Calls go through a circuit breaker so a failing Redis stops adding latency to lookups.
type RedisCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	prefix  string
	ttl     time.Duration
}

// NewRedisCache creates a new Redis-backed computation cache.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &RedisCache{
		client:  client,
		breaker: breaker,
		prefix:  "prefixes:",
		ttl:     ttl,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*lookup.Computation, error) {
	raw, err := r.breaker.Execute(func() (any, error) {
		return r.client.Get(ctx, r.prefix+key).Bytes()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, lookup.ErrNotFound
		}

		return nil, fmt.Errorf("redis get: %w", err)
	}

	var c lookup.Computation
	if err := json.Unmarshal(raw.([]byte), &c); err != nil {
		return nil, fmt.Errorf("decode computation: %w", err)
	}

	return &c, nil
}

func (r *RedisCache) Set(ctx context.Context, computation *lookup.Computation) error {
	payload, err := json.Marshal(computation)
	if err != nil {
		return fmt.Errorf("encode computation: %w", err)
	}

	_, err = r.breaker.Execute(func() (any, error) {
		return nil, r.client.Set(ctx, r.prefix+computation.Key(), payload, r.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// State reports the circuit breaker state.
func (r *RedisCache) State() gobreaker.State {
	return r.breaker.State()
}

// Shutdown is a no-op for RedisCache (client managed externally).
func (r *RedisCache) Shutdown() error {
	return nil
}

// Compile-time check.
var _ lookup.Cache = (*RedisCache)(nil)
