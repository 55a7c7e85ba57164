package store

import (
	"context"
	"sync"

	"github.com/serroba/url-hashprefix/internal/lookup"
)

// MemoryCache is an in-memory implementation of lookup.Cache.
type MemoryCache struct {
	mu           sync.RWMutex
	computations map[string]lookup.Computation // key -> computation
}

// NewMemoryCache creates a new in-memory computation cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		computations: make(map[string]lookup.Computation),
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*lookup.Computation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.computations[key]
	if !ok {
		return nil, lookup.ErrNotFound
	}

	return &c, nil
}

func (m *MemoryCache) Set(_ context.Context, computation *lookup.Computation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *computation
	c.CacheHit = false
	m.computations[c.Key()] = c

	return nil
}

// Len returns the number of cached computations.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.computations)
}

// Compile-time check.
var _ lookup.Cache = (*MemoryCache)(nil)
