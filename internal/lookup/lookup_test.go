package lookup_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/url-hashprefix/internal/hashprefix"
	"github.com/serroba/url-hashprefix/internal/lookup"
	"github.com/serroba/url-hashprefix/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errMock = errors.New("mock error")

// mockCache is a test double for lookup.Cache that can be configured to fail.
type mockCache struct {
	getErr error
	setErr error
	sets   int
}

func (m *mockCache) Get(_ context.Context, _ string) (*lookup.Computation, error) {
	return nil, m.getErr
}

func (m *mockCache) Set(_ context.Context, _ *lookup.Computation) error {
	m.sets++

	return m.setErr
}

// countingService counts how often the pipeline actually runs.
type countingService struct {
	next  lookup.Service
	calls int
}

func (c *countingService) Compute(ctx context.Context, rawURL string, bits int) (*lookup.Computation, error) {
	c.calls++

	return c.next.Compute(ctx, rawURL, bits)
}

type mockRecorder struct {
	canonicalized []bool
	expressions   []int
	hits          []bool
}

func (m *mockRecorder) ObserveComputation(canonicalized bool, expressions int) {
	m.canonicalized = append(m.canonicalized, canonicalized)
	m.expressions = append(m.expressions, expressions)
}

func (m *mockRecorder) ObserveCache(hit bool) {
	m.hits = append(m.hits, hit)
}

func TestPipeline_Compute(t *testing.T) {
	t.Run("computes entries", func(t *testing.T) {
		c, err := lookup.NewPipeline().Compute(context.Background(), "http://a.b.c/1/2.html?param=1", 32)

		require.NoError(t, err)
		assert.True(t, c.OK())
		assert.Equal(t, "http://a.b.c/1/2.html?param=1", c.Canonical)
		assert.Len(t, c.Entries, 8)
		assert.Len(t, c.Prefixes(), 8)
		assert.False(t, c.ComputedAt.IsZero())
	})

	t.Run("uncanonicalizable url is not an error", func(t *testing.T) {
		c, err := lookup.NewPipeline().Compute(context.Background(), "ftp://example.com", 32)

		require.NoError(t, err)
		assert.False(t, c.OK())
		assert.Empty(t, c.Entries)
	})

	t.Run("rejects invalid bits", func(t *testing.T) {
		for _, bits := range []int{-1, hashprefix.DigestBits + 1} {
			c, err := lookup.NewPipeline().Compute(context.Background(), "http://example.com/", bits)

			assert.Nil(t, c)
			assert.ErrorIs(t, err, lookup.ErrInvalidBits)
		}
	})
}

func TestKey(t *testing.T) {
	assert.Equal(t, lookup.Key("http://example.com/", 32), lookup.Key("http://example.com/", 32))
	assert.NotEqual(t, lookup.Key("http://example.com/", 32), lookup.Key("http://example.com/", 64))
	assert.Len(t, lookup.Key("http://example.com/", 32), 64)
}

func TestCachedService_Compute(t *testing.T) {
	t.Run("second call is served from cache", func(t *testing.T) {
		counter := &countingService{next: lookup.NewPipeline()}
		svc := lookup.NewCachedService(counter, store.NewMemoryCache(), &mockRecorder{}, zap.NewNop())

		first, err := svc.Compute(context.Background(), "http://example.com/a", 32)
		require.NoError(t, err)
		assert.False(t, first.CacheHit)

		second, err := svc.Compute(context.Background(), "http://example.com/a", 32)
		require.NoError(t, err)
		assert.True(t, second.CacheHit)
		assert.Equal(t, first.Entries, second.Entries)
		assert.Equal(t, 1, counter.calls)
	})

	t.Run("different bits are cached separately", func(t *testing.T) {
		counter := &countingService{next: lookup.NewPipeline()}
		svc := lookup.NewCachedService(counter, store.NewMemoryCache(), &mockRecorder{}, zap.NewNop())

		_, _ = svc.Compute(context.Background(), "http://example.com/a", 32)
		_, _ = svc.Compute(context.Background(), "http://example.com/a", 64)

		assert.Equal(t, 2, counter.calls)
	})

	t.Run("falls through when cache fails", func(t *testing.T) {
		cache := &mockCache{getErr: errMock, setErr: errMock}
		svc := lookup.NewCachedService(lookup.NewPipeline(), cache, &mockRecorder{}, zap.NewNop())

		c, err := svc.Compute(context.Background(), "http://example.com/a", 32)

		require.NoError(t, err)
		assert.True(t, c.OK())
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("rejects invalid bits before touching cache", func(t *testing.T) {
		cache := &mockCache{getErr: lookup.ErrNotFound}
		recorder := &mockRecorder{}
		svc := lookup.NewCachedService(lookup.NewPipeline(), cache, recorder, zap.NewNop())

		_, err := svc.Compute(context.Background(), "http://example.com/a", 300)

		assert.ErrorIs(t, err, lookup.ErrInvalidBits)
		assert.Zero(t, cache.sets)
		assert.Empty(t, recorder.hits)
	})

	t.Run("records misses and hits", func(t *testing.T) {
		recorder := &mockRecorder{}
		svc := lookup.NewCachedService(lookup.NewPipeline(), store.NewMemoryCache(), recorder, zap.NewNop())

		for range 3 {
			_, err := svc.Compute(context.Background(), "http://example.com/a", 32)
			require.NoError(t, err)
		}

		assert.Equal(t, []bool{false, true, true}, recorder.hits)
	})

	t.Run("records a miss when cache fails", func(t *testing.T) {
		recorder := &mockRecorder{}
		svc := lookup.NewCachedService(lookup.NewPipeline(), &mockCache{getErr: errMock}, recorder, zap.NewNop())

		_, err := svc.Compute(context.Background(), "http://example.com/a", 32)

		require.NoError(t, err)
		assert.Equal(t, []bool{false}, recorder.hits)
	})
}

func TestInstrumentedService_Compute(t *testing.T) {
	t.Run("records outcome", func(t *testing.T) {
		recorder := &mockRecorder{}
		svc := lookup.NewInstrumentedService(lookup.NewPipeline(), recorder)

		_, err := svc.Compute(context.Background(), "http://a.b.c/", 32)
		require.NoError(t, err)

		_, err = svc.Compute(context.Background(), "", 32)
		require.NoError(t, err)

		assert.Equal(t, []bool{true, false}, recorder.canonicalized)
		assert.Equal(t, []int{2, 0}, recorder.expressions)
	})

	t.Run("records no cache outcome without a cache", func(t *testing.T) {
		recorder := &mockRecorder{}
		svc := lookup.NewInstrumentedService(lookup.NewPipeline(), recorder)

		for range 3 {
			_, err := svc.Compute(context.Background(), "http://a.b.c/", 32)
			require.NoError(t, err)
		}

		assert.Len(t, recorder.canonicalized, 3)
		assert.Empty(t, recorder.hits)
	})

	t.Run("records nothing on error", func(t *testing.T) {
		recorder := &mockRecorder{}
		svc := lookup.NewInstrumentedService(lookup.NewPipeline(), recorder)

		_, err := svc.Compute(context.Background(), "http://a.b.c/", -8)

		require.Error(t, err)
		assert.Empty(t, recorder.canonicalized)
	})
}
