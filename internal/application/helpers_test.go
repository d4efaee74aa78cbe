package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/persistence"
	"github.com/example/room-reservation/internal/persistence/memory"
	"github.com/example/room-reservation/internal/selection"
	"github.com/example/room-reservation/internal/slot"
)

var (
	roomA    = booking.ResourceID("room-a")
	roomB    = booking.ResourceID("room-b")
	vanOne   = booking.ResourceID("van-1")
	fixedNow = time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newSeededStore(t *testing.T) *memory.Storage {
	t.Helper()

	store := memory.New()
	for _, r := range []persistence.Resource{
		{ID: string(roomA), Name: "Room A", Category: "room", Capacity: 8},
		{ID: string(roomB), Name: "Room B", Category: "room", Capacity: 4},
		{ID: string(vanOne), Name: "Van 1", Category: "vehicle", Capacity: 7},
	} {
		if err := store.CreateResource(context.Background(), r); err != nil {
			t.Fatalf("seed resource %s: %v", r.ID, err)
		}
	}
	return store
}

func seedReservation(t *testing.T, store *memory.Storage, id string, resource booking.ResourceID, date slot.Date, start, end string, cancelled bool) {
	t.Helper()

	record := persistence.Reservation{
		ID:             id,
		ResourceID:     string(resource),
		Date:           date.Time(),
		StartMinute:    slot.MustTimeOfDay(start).Units() * minutesPerUnit,
		EndMinute:      slot.MustTimeOfDay(end).Units() * minutesPerUnit,
		RequesterName:  "Existing Booker",
		RequesterEmail: "existing@example.com",
	}
	if err := store.CreateReservation(context.Background(), record); err != nil {
		t.Fatalf("seed reservation %s: %v", id, err)
	}
	if cancelled {
		if _, err := store.CancelReservation(context.Background(), id, "seeded", fixedNow); err != nil {
			t.Fatalf("cancel reservation %s: %v", id, err)
		}
	}
}

func cells(resource booking.ResourceID, date slot.Date, times ...string) []selection.Cell {
	out := make([]selection.Cell, 0, len(times))
	for _, t := range times {
		out = append(out, selection.Cell{Resource: resource, Date: date, Time: slot.MustTimeOfDay(t)})
	}
	return out
}

func validForm() booking.FormData {
	return booking.FormData{
		Requester: booking.Requester{
			Name:       "Aiko Tanaka",
			Email:      "aiko@example.com",
			Department: "Facilities",
			Purpose:    "Weekly sync",
		},
		Room:    &booking.RoomDetails{Seating: "theatre", Attendees: 6},
		Vehicle: &booking.VehicleDetails{Driver: "Ken", Destination: "Depot", Passengers: 2},
	}
}

func interval(resource booking.ResourceID, date slot.Date, start, end string) booking.Interval {
	return booking.Interval{
		Resource: resource,
		Date:     date,
		Start:    slot.MustTimeOfDay(start),
		End:      slot.MustTimeOfDay(end),
	}
}

type failingSnapshots struct {
	err error
}

func (f failingSnapshots) ListReservations(context.Context, persistence.ReservationFilter) ([]persistence.Reservation, error) {
	return nil, f.err
}

type countingSnapshots struct {
	inner   SnapshotSource
	calls   int
	filters []persistence.ReservationFilter
}

func (c *countingSnapshots) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	c.calls++
	c.filters = append(c.filters, filter)
	return c.inner.ListReservations(ctx, filter)
}
