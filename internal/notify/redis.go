package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/room-reservation/internal/booking"
)

// Publisher is the subset of redis.UniversalClient used by Redis.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Redis publishes events on a pub/sub channel.
type Redis struct {
	client  Publisher
	channel string
	now     func() time.Time
}

// NewRedis creates a Redis notifier.
func NewRedis(client Publisher, channel string) *Redis {
	return &Redis{client: client, channel: channel, now: time.Now}
}

// NotifyCreated implements Notifier.
func (r *Redis) NotifyCreated(ctx context.Context, reservation booking.Existing) error {
	return r.publish(ctx, EventCreated, reservation, "")
}

// NotifyCancelled implements Notifier.
func (r *Redis) NotifyCancelled(ctx context.Context, reservation booking.Existing, reason string) error {
	return r.publish(ctx, EventCancelled, reservation, reason)
}

func (r *Redis) publish(ctx context.Context, eventType EventType, reservation booking.Existing, reason string) error {
	event, err := NewEvent(eventType, reservation, reason, r.now())
	if err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: encode event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("notify: redis publish: %w", err)
	}
	return nil
}
