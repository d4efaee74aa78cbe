package booking

import (
	"errors"
	"fmt"

	"github.com/example/room-reservation/internal/slot"
)

// ErrInvalidTimeRange indicates start >= end or a range outside the operating window.
var ErrInvalidTimeRange = errors.New("booking: invalid time range")

// ResourceID identifies a bookable resource such as a room or vehicle.
type ResourceID string

// Interval is a single-date half-open booking range on one resource.
type Interval struct {
	Resource ResourceID
	Date     slot.Date
	Start    slot.TimeOfDay
	End      slot.TimeOfDay
}

// StartInstant returns the inclusive start.
func (i Interval) StartInstant() slot.Instant { return slot.At(i.Date, i.Start) }

// EndInstant returns the exclusive end.
func (i Interval) EndInstant() slot.Instant { return slot.At(i.Date, i.End) }

// Units returns the interval length in granularity units.
func (i Interval) Units() int { return int(i.End - i.Start) }

// OnDate returns a copy of the interval moved to another date.
func (i Interval) OnDate(date slot.Date) Interval {
	i.Date = date
	return i
}

// Validate checks the interval against the operating window.
func (i Interval) Validate(window slot.Window) error {
	if i.Resource == "" {
		return fmt.Errorf("%w: resource is required", ErrInvalidTimeRange)
	}
	if i.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidTimeRange)
	}
	if err := window.ValidRange(i.Start, i.End); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTimeRange, err)
	}
	return nil
}

// Overlaps reports whether both intervals use the same resource and their
// instants intersect. Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	if i.Resource != other.Resource {
		return false
	}
	return slot.Overlaps(i.StartInstant(), i.EndInstant(), other.StartInstant(), other.EndInstant())
}

// String formats the interval for logs.
func (i Interval) String() string {
	return fmt.Sprintf("%s %s %s-%s", i.Resource, i.Date, i.Start, i.End)
}
