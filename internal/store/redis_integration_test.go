//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-hashprefix/internal/lookup"
	"github.com/serroba/url-hashprefix/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}

	return "localhost:6379"
}

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: getRedisAddr()})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedisCacheIntegration(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	cache := store.NewRedisCache(client, time.Minute, zap.NewNop())

	t.Run("miss returns ErrNotFound", func(t *testing.T) {
		_, err := cache.Get(ctx, uuid.NewString())

		assert.ErrorIs(t, err, lookup.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		c, err := lookup.NewPipeline().Compute(ctx, "http://"+uuid.NewString()+".example/a", 32)
		require.NoError(t, err)

		require.NoError(t, cache.Set(ctx, c))

		got, err := cache.Get(ctx, c.Key())
		require.NoError(t, err)
		assert.Equal(t, c.Canonical, got.Canonical)
		assert.Equal(t, c.Entries, got.Entries)
		assert.Equal(t, c.Bits, got.Bits)

		_ = client.Del(ctx, "prefixes:"+c.Key())
	})

	t.Run("misses keep the breaker closed", func(t *testing.T) {
		for range 10 {
			_, _ = cache.Get(ctx, uuid.NewString())
		}

		assert.Equal(t, "closed", cache.State().String())
	})
}

func TestRateLimitRedisStoreIntegration(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	s := store.NewRateLimitRedisStore(client)

	t.Run("counts requests in window", func(t *testing.T) {
		key := uuid.NewString()

		for i := range 3 {
			count, err := s.Record(ctx, key, time.Minute)

			require.NoError(t, err)
			assert.Equal(t, int64(i+1), count)
		}

		_ = client.Del(ctx, "ratelimit:"+key)
	})

	t.Run("prunes expired entries", func(t *testing.T) {
		key := uuid.NewString()

		_, _ = s.Record(ctx, key, 50*time.Millisecond)
		_, _ = s.Record(ctx, key, 50*time.Millisecond)

		time.Sleep(60 * time.Millisecond)

		count, err := s.Record(ctx, key, 50*time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		_ = client.Del(ctx, "ratelimit:"+key)
	})
}
