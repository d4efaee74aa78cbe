package selection

import (
	"errors"
	"testing"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/slot"
)

type occupancyFunc func(booking.ResourceID, slot.Date, slot.TimeOfDay) bool

func (f occupancyFunc) Reserved(r booking.ResourceID, d slot.Date, t slot.TimeOfDay) bool {
	return f(r, d, t)
}

type allowList map[booking.ResourceID]bool

func (a allowList) Allowed(r booking.ResourceID) bool { return a[r] }

func TestSession_Lifecycle(t *testing.T) {
	t.Parallel()

	s := NewSession(slot.DefaultWindow(), nil, nil)
	if s.State() != StateIdle {
		t.Fatalf("expected idle, got %s", s.State())
	}
	if err := s.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if s.State() != StateSelecting {
		t.Fatalf("expected selecting, got %s", s.State())
	}
	if _, err := s.Confirm(); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}

	if err := s.Add(cell("room-a", "09:00")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(cell("room-a", "09:30")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.State() != StateSelected || s.Len() != 2 {
		t.Fatalf("expected 2 selected cells, got %d in %s", s.Len(), s.State())
	}
	if got := s.Intervals(); len(got) != 1 || got[0] != interval("room-a", "09:00", "10:00") {
		t.Fatalf("unexpected intervals %v", got)
	}

	cells, err := s.Confirm()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("expected 2 confirmed cells, got %d", len(cells))
	}
	if err := s.Add(cell("room-a", "10:00")); !errors.Is(err, ErrConfirmed) {
		t.Fatalf("expected ErrConfirmed, got %v", err)
	}

	s.Reset()
	if s.State() != StateIdle || s.Len() != 0 {
		t.Fatalf("reset did not clear session")
	}
}

func TestSession_AddRejections(t *testing.T) {
	t.Parallel()

	reserved := cell("room-a", "11:00")
	occupancy := occupancyFunc(func(r booking.ResourceID, d slot.Date, at slot.TimeOfDay) bool {
		return r == reserved.Resource && d == reserved.Date && at == reserved.Time
	})
	policy := allowList{"room-a": true}

	s := NewSession(slot.DefaultWindow(), occupancy, policy)

	if err := s.Add(reserved); !errors.Is(err, ErrCellReserved) {
		t.Fatalf("expected ErrCellReserved, got %v", err)
	}
	if err := s.Add(cell("vip-hall", "09:00")); !errors.Is(err, ErrCellRestricted) {
		t.Fatalf("expected ErrCellRestricted, got %v", err)
	}
	if err := s.Add(cell("room-a", "07:30")); !errors.Is(err, slot.ErrOutOfWindow) {
		t.Fatalf("expected ErrOutOfWindow, got %v", err)
	}
	if err := s.Add(cell("room-a", "10:30")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(cell("room-a", "10:30")); !errors.Is(err, ErrAlreadySelected) {
		t.Fatalf("expected ErrAlreadySelected, got %v", err)
	}
}

func TestSession_Toggle(t *testing.T) {
	t.Parallel()

	s := NewSession(slot.DefaultWindow(), nil, nil)
	c := cell("room-a", "09:00")

	if err := s.Toggle(c); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 cell, got %d", s.Len())
	}
	if err := s.Toggle(c); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if s.Len() != 0 || s.State() != StateSelecting {
		t.Fatalf("expected empty selecting session, got %d in %s", s.Len(), s.State())
	}
	if err := s.Remove(c); !errors.Is(err, ErrNotSelected) {
		t.Fatalf("expected ErrNotSelected, got %v", err)
	}
}
