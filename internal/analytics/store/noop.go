package store

import (
	"context"

	"github.com/serroba/url-hashprefix/internal/analytics"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of analytics.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SavePrefixesComputed(_ context.Context, event *analytics.PrefixesComputedEvent) error {
	n.logger.Info("prefixes computed event received",
		zap.String("requestId", event.RequestID),
		zap.String("canonical", event.Canonical),
		zap.Int("bits", event.Bits),
		zap.Int("expressions", event.ExpressionCount),
		zap.Bool("cacheHit", event.CacheHit),
		zap.Time("computedAt", event.ComputedAt),
	)

	return nil
}

// Compile-time check.
var _ analytics.Store = (*Noop)(nil)
