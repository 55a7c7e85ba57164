package ratelimit

import (
	"context"
	"time"
)

// Store keeps per-key request timestamps.
type Store interface {
	// Record adds a request for key, drops those older than window and
	// returns how many remain.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
