package analytics_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/url-hashprefix/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSubscriber struct {
	msgChan chan *message.Message
	topics  []string
}

func (m *mockSubscriber) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	m.topics = append(m.topics, topic)

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	return nil
}

type mockStore struct {
	mu     sync.Mutex
	events []*analytics.PrefixesComputedEvent
	err    error
}

func (m *mockStore) SavePrefixesComputed(_ context.Context, event *analytics.PrefixesComputedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.events = append(m.events, event)

	return nil
}

func TestNewConsumer(t *testing.T) {
	t.Run("subscribes to prefixes topic", func(t *testing.T) {
		sub := &mockSubscriber{msgChan: make(chan *message.Message, 1)}
		consumer := analytics.NewConsumer(sub, &mockStore{}, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		defer func() { _ = consumer.Shutdown() }()

		assert.Equal(t, []string{analytics.TopicPrefixesComputed}, sub.topics)
	})

	t.Run("persists events", func(t *testing.T) {
		sub := &mockSubscriber{msgChan: make(chan *message.Message, 1)}
		s := &mockStore{}
		consumer := analytics.NewConsumer(sub, s, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		defer func() { _ = consumer.Shutdown() }()

		payload, err := json.Marshal(&analytics.PrefixesComputedEvent{
			RequestID: "req-1",
			Canonical: "http://example.com/",
			Bits:      32,
		})
		require.NoError(t, err)

		msg := message.NewMessage(uuid.NewString(), payload)
		sub.msgChan <- msg

		select {
		case <-msg.Acked():
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for ack")
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		require.Len(t, s.events, 1)
		assert.Equal(t, "req-1", s.events[0].RequestID)
		assert.True(t, s.events[0].Canonicalized())
	})

	t.Run("nacks when store fails", func(t *testing.T) {
		sub := &mockSubscriber{msgChan: make(chan *message.Message, 1)}
		consumer := analytics.NewConsumer(sub, &mockStore{err: errors.New("db down")}, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		defer func() { _ = consumer.Shutdown() }()

		msg := message.NewMessage(uuid.NewString(), []byte(`{"requestId":"req-2"}`))
		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}
	})
}
