package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/room-reservation/internal/slot"
)

// Status is the conflict-resolution state of a candidate.
type Status string

const (
	StatusPending     Status = "pending"
	StatusValid       Status = "valid"
	StatusConflicting Status = "conflicting"
)

// Candidate is a reservation awaiting conflict evaluation.
type Candidate struct {
	Interval
	Requester Requester
	Details   Details
	// Recurrence is only set on the seed candidate.
	Recurrence *Recurrence
	// SeedDate is the date of the seed this candidate was expanded from.
	SeedDate slot.Date
	// Occurrence is 0 for the seed and counts up for expanded children.
	Occurrence int
	Status     Status
}

// Clone returns an independent copy of c.
func (c Candidate) Clone() Candidate {
	out := c
	out.Details = CloneDetails(c.Details)
	if c.Recurrence != nil {
		r := *c.Recurrence
		out.Recurrence = &r
	}
	return out
}

// SeriesKey groups candidates expanded from the same seed.
func (c Candidate) SeriesKey() string {
	seed := c.SeedDate
	if seed.IsZero() {
		seed = c.Date
	}
	return fmt.Sprintf("%s|%s|%s|%s", c.Resource, seed, c.Start, c.End)
}

// Existing is a committed reservation read from the store.
type Existing struct {
	ID       string
	SeriesID string
	Interval
	Requester    Requester
	Details      Details
	Cancelled    bool
	CancelReason string
	CreatedAt    time.Time
}

// ErrConflictDetected indicates a candidate overlaps an active reservation.
var ErrConflictDetected = errors.New("booking: conflicts with an existing reservation")

// Conflict pairs a candidate with the existing reservations it collides with.
type Conflict struct {
	Candidate Candidate
	With      []Existing
}

// Rejection records an interval dropped before conflict evaluation.
type Rejection struct {
	Interval Interval
	Err      error
}

// CommitPlan partitions the candidates of one submission.
type CommitPlan struct {
	Valid       []Candidate
	Conflicting []Conflict
	Rejected    []Rejection
}

// HasConflicts reports whether any candidate collided with existing data.
func (p CommitPlan) HasConflicts() bool { return len(p.Conflicting) > 0 }

// Empty reports whether the plan contains nothing to commit or show.
func (p CommitPlan) Empty() bool {
	return len(p.Valid) == 0 && len(p.Conflicting) == 0 && len(p.Rejected) == 0
}
