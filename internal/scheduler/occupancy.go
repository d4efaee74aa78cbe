package scheduler

import (
	"slices"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/slot"
)

type cellKey struct {
	resource booking.ResourceID
	date     slot.Date
	unit     slot.TimeOfDay
}

// Occupancy indexes a snapshot by half-hour cell for single-cell lookups.
type Occupancy struct {
	cells map[cellKey]string
}

// NewOccupancy builds an index of every cell held by an active reservation.
func NewOccupancy(snapshot []booking.Existing) *Occupancy {
	o := &Occupancy{cells: make(map[cellKey]string)}
	for _, existing := range snapshot {
		if existing.Cancelled {
			continue
		}
		for t := existing.Start; t < existing.End; t = t.Next() {
			o.cells[cellKey{resource: existing.Resource, date: existing.Date, unit: t}] = existing.ID
		}
	}
	return o
}

// Reserved reports whether the cell starting at t is taken.
func (o *Occupancy) Reserved(resource booking.ResourceID, date slot.Date, t slot.TimeOfDay) bool {
	_, ok := o.cells[cellKey{resource: resource, date: date, unit: t}]
	return ok
}

// HeldBy returns the reservation ID holding the cell, if any.
func (o *Occupancy) HeldBy(resource booking.ResourceID, date slot.Date, t slot.TimeOfDay) (string, bool) {
	id, ok := o.cells[cellKey{resource: resource, date: date, unit: t}]
	return id, ok
}

// ReservedCells lists taken cell starts for one resource and date in order.
func (o *Occupancy) ReservedCells(resource booking.ResourceID, date slot.Date) []slot.TimeOfDay {
	var out []slot.TimeOfDay
	for key := range o.cells {
		if key.resource == resource && key.date == date {
			out = append(out, key.unit)
		}
	}
	slices.Sort(out)
	return out
}
