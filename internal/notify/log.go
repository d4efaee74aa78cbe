package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/logging"
)

// Log writes events to the structured logger carried in the context, falling
// back to the configured base logger.
type Log struct {
	base *slog.Logger
	now  func() time.Time
}

// NewLog creates a logging notifier.
func NewLog(base *slog.Logger) *Log {
	if base == nil {
		base = slog.Default()
	}
	return &Log{base: base, now: time.Now}
}

// NotifyCreated implements Notifier.
func (l *Log) NotifyCreated(ctx context.Context, reservation booking.Existing) error {
	return l.log(ctx, EventCreated, reservation, "")
}

// NotifyCancelled implements Notifier.
func (l *Log) NotifyCancelled(ctx context.Context, reservation booking.Existing, reason string) error {
	return l.log(ctx, EventCancelled, reservation, reason)
}

func (l *Log) log(ctx context.Context, eventType EventType, reservation booking.Existing, reason string) error {
	event, err := NewEvent(eventType, reservation, reason, l.now())
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = l.base
	}
	logger.InfoContext(ctx, "reservation event",
		slog.String("event_id", event.ID),
		slog.String("event_type", string(event.Type)),
		slog.String("reservation_id", event.Reservation.ID),
		slog.String("resource_id", event.Reservation.ResourceID),
		slog.String("date", event.Reservation.Date),
		slog.String("start", event.Reservation.Start),
		slog.String("end", event.Reservation.End),
		slog.String("reason", event.Reason),
	)
	return nil
}
