package application

import (
	"time"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/selection"
	"github.com/example/room-reservation/internal/slot"
)

// Resource is a bookable room or vehicle as exposed by the catalog.
type Resource struct {
	ID         booking.ResourceID
	Name       string
	Category   booking.Category
	Capacity   int
	Location   string
	Restricted bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ResourceInput captures caller provided resource fields.
type ResourceInput struct {
	Name       string
	Category   string
	Capacity   int
	Location   string
	Restricted bool
	// UnlockToken is required when Restricted is set and is stored hashed.
	UnlockToken string
}

// SubmitParams wraps the inputs of one booking submission.
type SubmitParams struct {
	Cells      []selection.Cell
	Form       booking.FormData
	Recurrence *booking.Recurrence
	// Categories selects the details extension per resource. Missing entries
	// default to rooms.
	Categories map[booking.ResourceID]booking.Category
}

// CommitFailure records a candidate that could not be written.
type CommitFailure struct {
	Candidate booking.Candidate
	Err       error
}

// CommitResult lists the outcome of every candidate passed to Commit.
type CommitResult struct {
	Created []booking.Existing
	Failed  []CommitFailure
}

// ReservationQuery narrows reservation listings. Zero values do not filter.
type ReservationQuery struct {
	ResourceIDs      []booking.ResourceID
	From             slot.Date
	To               slot.Date
	IncludeCancelled bool
}
