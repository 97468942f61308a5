package storage

import (
	"context"
	"encoding/json"
	"sync"

	"tabletap/order-svc/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func statusChannel(orderID string) string {
	return "orders:status:" + orderID
}

// RedisStatusBus fans order transitions out to every subscriber of that order,
// across all order-svc replicas.
type RedisStatusBus struct {
	Client *redis.Client
	Logger zerolog.Logger
}

func NewRedisStatusBus(client *redis.Client, logger zerolog.Logger) *RedisStatusBus {
	return &RedisStatusBus{Client: client, Logger: logger}
}

func (b *RedisStatusBus) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.Client.Publish(ctx, statusChannel(event.OrderID), payload).Err()
}

// Subscribe returns once the subscription is active. The caller must call the
// returned cancel function; the event channel is closed after it runs.
func (b *RedisStatusBus) Subscribe(ctx context.Context, orderID string) (<-chan domain.OrderEvent, func(), error) {
	pubsub := b.Client.Subscribe(ctx, statusChannel(orderID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	events := make(chan domain.OrderEvent, 1)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			pubsub.Close()
		})
	}

	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event domain.OrderEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.Logger.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed status event")
				continue
			}
			select {
			case events <- event:
			case <-done:
				return
			}
		}
	}()

	return events, cancel, nil
}
