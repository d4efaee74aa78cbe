package selection

import (
	"errors"
	"fmt"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/slot"
)

// State is the lifecycle position of a Session.
type State int

const (
	// StateIdle means nothing has been picked yet.
	StateIdle State = iota
	// StateSelecting means the user started picking but no cell is held.
	StateSelecting
	// StateSelected means at least one cell is held.
	StateSelected
	// StateConfirmed means the selection was handed off and is frozen.
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateSelected:
		return "selected"
	case StateConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrCellReserved indicates the cell is covered by an existing reservation.
	ErrCellReserved = errors.New("selection: cell already reserved")
	// ErrCellRestricted indicates the resource is restricted and not unlocked.
	ErrCellRestricted = errors.New("selection: resource is restricted")
	// ErrAlreadySelected indicates the cell is already part of the selection.
	ErrAlreadySelected = errors.New("selection: cell already selected")
	// ErrNotSelected indicates the cell is not part of the selection.
	ErrNotSelected = errors.New("selection: cell not selected")
	// ErrConfirmed indicates the session no longer accepts changes.
	ErrConfirmed = errors.New("selection: session already confirmed")
	// ErrEmptySelection indicates Confirm was called with nothing selected.
	ErrEmptySelection = errors.New("selection: nothing selected")
)

// Occupancy answers whether a single cell is already booked.
type Occupancy interface {
	Reserved(resource booking.ResourceID, date slot.Date, t slot.TimeOfDay) bool
}

// RestrictionPolicy answers whether a resource may be selected.
type RestrictionPolicy interface {
	Allowed(resource booking.ResourceID) bool
}

// Session holds one user's in-progress selection. It is owned by the caller
// and is not safe for concurrent use.
type Session struct {
	window    slot.Window
	occupancy Occupancy
	policy    RestrictionPolicy
	state     State
	cells     map[Cell]struct{}
	order     []Cell
}

// NewSession creates an idle session. occupancy and policy may be nil.
func NewSession(window slot.Window, occupancy Occupancy, policy RestrictionPolicy) *Session {
	return &Session{
		window:    window,
		occupancy: occupancy,
		policy:    policy,
		cells:     make(map[Cell]struct{}),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Len returns the number of selected cells.
func (s *Session) Len() int { return len(s.order) }

// Begin moves an idle session to selecting.
func (s *Session) Begin() error {
	if s.state == StateConfirmed {
		return ErrConfirmed
	}
	if s.state == StateIdle {
		s.state = StateSelecting
	}
	return nil
}

// Add checks a cell against the live occupancy and restriction policy and
// appends it to the selection.
func (s *Session) Add(cell Cell) error {
	if s.state == StateConfirmed {
		return ErrConfirmed
	}
	if !s.window.Contains(cell.Time) {
		return fmt.Errorf("selection: %s: %w", cell.Time, slot.ErrOutOfWindow)
	}
	if _, ok := s.cells[cell]; ok {
		return ErrAlreadySelected
	}
	if s.policy != nil && !s.policy.Allowed(cell.Resource) {
		return fmt.Errorf("%w: %s", ErrCellRestricted, cell.Resource)
	}
	if s.occupancy != nil && s.occupancy.Reserved(cell.Resource, cell.Date, cell.Time) {
		return fmt.Errorf("%w: %s %s %s", ErrCellReserved, cell.Resource, cell.Date, cell.Time)
	}

	s.cells[cell] = struct{}{}
	s.order = append(s.order, cell)
	s.state = StateSelected
	return nil
}

// Remove drops a cell from the selection.
func (s *Session) Remove(cell Cell) error {
	if s.state == StateConfirmed {
		return ErrConfirmed
	}
	if _, ok := s.cells[cell]; !ok {
		return ErrNotSelected
	}
	delete(s.cells, cell)
	for i, c := range s.order {
		if c == cell {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if len(s.order) == 0 {
		s.state = StateSelecting
	}
	return nil
}

// Toggle adds the cell when absent and removes it when present.
func (s *Session) Toggle(cell Cell) error {
	if _, ok := s.cells[cell]; ok {
		return s.Remove(cell)
	}
	return s.Add(cell)
}

// Cells returns the selected cells in pick order.
func (s *Session) Cells() []Cell {
	out := make([]Cell, len(s.order))
	copy(out, s.order)
	return out
}

// Intervals returns the merged view of the current selection.
func (s *Session) Intervals() []booking.Interval { return Merge(s.order) }

// Confirm freezes the selection and returns its cells.
func (s *Session) Confirm() ([]Cell, error) {
	if s.state == StateConfirmed {
		return nil, ErrConfirmed
	}
	if len(s.order) == 0 {
		return nil, ErrEmptySelection
	}
	s.state = StateConfirmed
	return s.Cells(), nil
}

// Reset clears the selection and returns the session to idle.
func (s *Session) Reset() {
	s.state = StateIdle
	s.cells = make(map[Cell]struct{})
	s.order = nil
}
