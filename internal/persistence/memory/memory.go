// Package memory provides a mutex-guarded in-memory persistence backend.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// Storage implements the persistence repositories with maps.
type Storage struct {
	mu           sync.RWMutex
	resources    map[string]persistence.Resource
	reservations map[string]persistence.Reservation
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{
		resources:    make(map[string]persistence.Resource),
		reservations: make(map[string]persistence.Reservation),
	}
}

// Close releases resources held by the storage. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// Ping always succeeds.
func (s *Storage) Ping(context.Context) error {
	return nil
}

// --- ResourceRepository implementation ---

// CreateResource stores a new resource.
func (s *Storage) CreateResource(ctx context.Context, resource persistence.Resource) error {
	if resource.ID == "" || strings.TrimSpace(resource.Name) == "" || resource.Capacity < 0 {
		return persistence.ErrConstraintViolation
	}
	if resource.Category != "room" && resource.Category != "vehicle" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[resource.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.resources {
		if strings.EqualFold(existing.Name, resource.Name) {
			return persistence.ErrDuplicate
		}
	}

	now := time.Now().UTC()
	resource.CreatedAt = now
	resource.UpdatedAt = now
	s.resources[resource.ID] = resource
	return nil
}

// GetResource retrieves a resource by ID.
func (s *Storage) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resource, ok := s.resources[id]
	if !ok {
		return persistence.Resource{}, persistence.ErrNotFound
	}
	return resource, nil
}

// ListResources returns all resources ordered by name then ID.
func (s *Storage) ListResources(ctx context.Context) ([]persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources := make([]persistence.Resource, 0, len(s.resources))
	for _, resource := range s.resources {
		resources = append(resources, resource)
	}
	sort.Slice(resources, func(i, j int) bool {
		if resources[i].Name == resources[j].Name {
			return resources[i].ID < resources[j].ID
		}
		return resources[i].Name < resources[j].Name
	})
	return resources, nil
}

// --- ReservationRepository implementation ---

// CreateReservation stores a new reservation.
func (s *Storage) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" || reservation.StartMinute >= reservation.EndMinute {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[reservation.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.resources[reservation.ResourceID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	now := time.Now().UTC()
	reservation.Date = persistence.DateOnly(reservation.Date)
	reservation.CreatedAt = now
	reservation.UpdatedAt = now
	s.reservations[reservation.ID] = cloneReservation(reservation)
	return nil
}

// GetReservation retrieves a reservation by ID.
func (s *Storage) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return cloneReservation(reservation), nil
}

// ListReservations returns reservations matching the filter ordered by date,
// start, resource and ID.
func (s *Storage) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []persistence.Reservation
	for _, reservation := range s.reservations {
		if filter.Matches(reservation) {
			out = append(out, cloneReservation(reservation))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartMinute != b.StartMinute {
			return a.StartMinute < b.StartMinute
		}
		if a.ResourceID != b.ResourceID {
			return a.ResourceID < b.ResourceID
		}
		return a.ID < b.ID
	})
	return out, nil
}

// CancelReservation marks a reservation cancelled and returns the updated row.
func (s *Storage) CancelReservation(ctx context.Context, id, reason string, at time.Time) (persistence.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	at = at.UTC()
	reservation.Cancelled = true
	reservation.CancelReason = reason
	reservation.CancelledAt = &at
	reservation.UpdatedAt = at
	s.reservations[id] = reservation
	return cloneReservation(reservation), nil
}

// DeleteReservation removes a reservation by ID.
func (s *Storage) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

func cloneReservation(r persistence.Reservation) persistence.Reservation {
	r.Details = slices.Clone(r.Details)
	if r.CancelledAt != nil {
		at := *r.CancelledAt
		r.CancelledAt = &at
	}
	return r
}
