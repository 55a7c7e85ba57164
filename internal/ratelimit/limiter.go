// Package ratelimit throttles API clients with a sliding window over a pluggable store.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed   bool
	Count     int64
	Limit     int64
	Remaining int64
	Window    time.Duration
}

// Limiter defines the interface for rate limiting.
type Limiter interface {
	// Allow records a request from key and reports whether it fits the limit.
	Allow(ctx context.Context, key string) (Decision, error)
}

// SlidingWindowLimiter implements rate limiting using a sliding window algorithm.
type SlidingWindowLimiter struct {
	store  Store
	limit  int64
	window time.Duration
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter.
func NewSlidingWindowLimiter(store Store, limit int64, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, err := l.store.Record(ctx, key, l.window)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		Allowed:   count <= l.limit,
		Count:     count,
		Limit:     l.limit,
		Remaining: max(l.limit-count, 0),
		Window:    l.window,
	}, nil
}

// Unlimited is a Limiter that accepts every request.
type Unlimited struct{}

func (Unlimited) Allow(_ context.Context, _ string) (Decision, error) {
	return Decision{Allowed: true}, nil
}
