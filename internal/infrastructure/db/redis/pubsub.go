package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

// NotificationChannel carries every stored notification to all API instances.
const NotificationChannel = "bgf:notifications"

// NotificationBus publishes notifications on a Redis channel and relays
// messages from it to a local handler.
type NotificationBus struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

func NewNotificationBus(client *redis.Client, log zerolog.Logger) *NotificationBus {
	return &NotificationBus{client: client, channel: NotificationChannel, log: log}
}

// Publish sends n to every subscriber.
func (b *NotificationBus) Publish(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Subscribe calls handle for every notification received until ctx is
// cancelled. Malformed messages are logged and skipped.
func (b *NotificationBus) Subscribe(ctx context.Context, handle func(domain.Notification)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before reading.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var n domain.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				b.log.Warn().Err(err).Msg("dropping malformed notification message")
				continue
			}
			handle(n)
		}
	}
}
