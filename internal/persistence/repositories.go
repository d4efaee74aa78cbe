package persistence

import (
	"context"
	"slices"
	"time"
)

// ResourceRepository exposes catalog operations for resources.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) error
	GetResource(ctx context.Context, id string) (Resource, error)
	ListResources(ctx context.Context) ([]Resource, error)
}

// ReservationFilter narrows reservation queries. Zero values do not filter.
type ReservationFilter struct {
	ResourceIDs []string
	// From and To bound the booking date, both inclusive.
	From *time.Time
	To   *time.Time
	// IncludeCancelled returns cancelled rows as well.
	IncludeCancelled bool
}

// ReservationRepository stores committed reservations.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	CancelReservation(ctx context.Context, id, reason string, at time.Time) (Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// Matches reports whether the reservation satisfies the filter.
func (f ReservationFilter) Matches(r Reservation) bool {
	if r.Cancelled && !f.IncludeCancelled {
		return false
	}
	if len(f.ResourceIDs) > 0 {
		if !slices.Contains(f.ResourceIDs, r.ResourceID) {
			return false
		}
	}
	if f.From != nil && r.Date.Before(DateOnly(*f.From)) {
		return false
	}
	if f.To != nil && r.Date.After(DateOnly(*f.To)) {
		return false
	}
	return true
}

// DateOnly truncates t to UTC midnight of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
