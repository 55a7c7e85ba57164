package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/url-hashprefix/internal/messaging"
	"go.uber.org/zap"
)

// NewConsumer creates a consumer that persists lookup events to store.
func NewConsumer(
	subscriber message.Subscriber,
	store Store,
	logger *zap.Logger,
) *messaging.Consumer[PrefixesComputedEvent] {
	return messaging.NewConsumer(subscriber, TopicPrefixesComputed, store.SavePrefixesComputed, logger)
}
