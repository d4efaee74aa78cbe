// Package selection turns raw half-hour cell picks into booking intervals and
// tracks an in-progress selection for live feedback.
package selection

import (
	"cmp"
	"slices"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/slot"
)

// Cell is one granularity unit picked by the user.
type Cell struct {
	Resource booking.ResourceID
	Date     slot.Date
	Time     slot.TimeOfDay
}

// Interval returns the one-unit interval covered by the cell.
func (c Cell) Interval() booking.Interval {
	return booking.Interval{Resource: c.Resource, Date: c.Date, Start: c.Time, End: c.Time.Next()}
}

func compareCells(a, b Cell) int {
	if c := cmp.Compare(a.Resource, b.Resource); c != 0 {
		return c
	}
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.Time, b.Time)
}

// Merge coalesces cells into the fewest intervals per (resource, date).
// Duplicates are ignored. Only cells exactly one unit apart are joined, so the
// output covers exactly the input cells and no two intervals touch.
// Output is ordered by resource, date, then start time.
func Merge(cells []Cell) []booking.Interval {
	if len(cells) == 0 {
		return nil
	}

	sorted := slices.Clone(cells)
	slices.SortFunc(sorted, compareCells)
	sorted = slices.Compact(sorted)

	intervals := make([]booking.Interval, 0, len(sorted))
	current := sorted[0].Interval()
	for _, cell := range sorted[1:] {
		if cell.Resource == current.Resource && cell.Date == current.Date && cell.Time == current.End {
			current.End = cell.Time.Next()
			continue
		}
		intervals = append(intervals, current)
		current = cell.Interval()
	}
	return append(intervals, current)
}

// Cells decomposes an interval back into its unit cells.
func Cells(interval booking.Interval) []Cell {
	if interval.End <= interval.Start {
		return nil
	}
	out := make([]Cell, 0, interval.Units())
	for t := interval.Start; t < interval.End; t = t.Next() {
		out = append(out, Cell{Resource: interval.Resource, Date: interval.Date, Time: t})
	}
	return out
}
