package lookup

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// CachedService memoizes another Service. Cache failures are logged and the
// computation falls through to the wrapped service.
type CachedService struct {
	next     Service
	cache    Cache
	recorder CacheRecorder
	logger   *zap.Logger
}

// NewCachedService creates a cache decorator around next.
func NewCachedService(next Service, cache Cache, recorder CacheRecorder, logger *zap.Logger) *CachedService {
	return &CachedService{
		next:     next,
		cache:    cache,
		recorder: recorder,
		logger:   logger,
	}
}

func (s *CachedService) Compute(ctx context.Context, rawURL string, bits int) (*Computation, error) {
	if err := ValidateBits(bits); err != nil {
		return nil, err
	}

	key := Key(rawURL, bits)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		cached.CacheHit = true
		s.recorder.ObserveCache(true)

		return cached, nil
	}

	s.recorder.ObserveCache(false)

	if !errors.Is(err, ErrNotFound) {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	computation, err := s.next.Compute(ctx, rawURL, bits)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, computation); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}

	return computation, nil
}

// Compile-time check.
var _ Service = (*CachedService)(nil)
