// Package notify publishes reservation lifecycle events.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/room-reservation/internal/booking"
)

// EventType names a reservation lifecycle event.
type EventType string

const (
	EventCreated   EventType = "reservation.created"
	EventCancelled EventType = "reservation.cancelled"
)

// Notifier receives finalized reservations. Failures are reported to the
// caller but must not undo the store mutation that triggered them.
type Notifier interface {
	NotifyCreated(ctx context.Context, reservation booking.Existing) error
	NotifyCancelled(ctx context.Context, reservation booking.Existing, reason string) error
}

// Reservation is the wire shape of a reservation inside an Event.
type Reservation struct {
	ID             string           `json:"id"`
	SeriesID       string           `json:"series_id,omitempty"`
	ResourceID     string           `json:"resource_id"`
	Date           string           `json:"date"`
	Start          string           `json:"start"`
	End            string           `json:"end"`
	RequesterName  string           `json:"requester_name"`
	RequesterEmail string           `json:"requester_email"`
	Department     string           `json:"department,omitempty"`
	Purpose        string           `json:"purpose,omitempty"`
	Category       booking.Category `json:"category,omitempty"`
	Details        json.RawMessage  `json:"details,omitempty"`
}

// Event is the JSON payload published for every lifecycle change.
type Event struct {
	ID          string      `json:"event_id"`
	Type        EventType   `json:"event_type"`
	Reservation Reservation `json:"reservation"`
	Reason      string      `json:"reason,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// NewEvent builds an event for the reservation.
func NewEvent(eventType EventType, r booking.Existing, reason string, at time.Time) (Event, error) {
	category, details, err := booking.EncodeDetails(r.Details)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:   uuid.NewString(),
		Type: eventType,
		Reservation: Reservation{
			ID:             r.ID,
			SeriesID:       r.SeriesID,
			ResourceID:     string(r.Resource),
			Date:           r.Date.String(),
			Start:          r.Start.String(),
			End:            r.End.String(),
			RequesterName:  r.Requester.Name,
			RequesterEmail: r.Requester.Email,
			Department:     r.Requester.Department,
			Purpose:        r.Requester.Purpose,
			Category:       category,
			Details:        details,
		},
		Reason:     reason,
		OccurredAt: at.UTC(),
	}, nil
}

// Multi fans out to every notifier and joins their errors.
type Multi []Notifier

// NotifyCreated implements Notifier.
func (m Multi) NotifyCreated(ctx context.Context, reservation booking.Existing) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyCreated(ctx, reservation); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyCancelled implements Notifier.
func (m Multi) NotifyCancelled(ctx context.Context, reservation booking.Existing, reason string) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyCancelled(ctx, reservation, reason); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
