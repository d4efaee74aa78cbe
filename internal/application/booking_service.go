package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/persistence"
	"github.com/example/room-reservation/internal/recurrence"
	"github.com/example/room-reservation/internal/scheduler"
	"github.com/example/room-reservation/internal/selection"
	"github.com/example/room-reservation/internal/slot"
)

// SnapshotSource reads the committed reservations a plan is checked against.
type SnapshotSource interface {
	ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error)
}

// BookingService turns a selection into a commit plan. It never writes.
type BookingService struct {
	snapshots SnapshotSource
	window    slot.Window
	expander  *recurrence.Engine
	detector  *scheduler.Detector
	logger    *slog.Logger
}

// NewBookingService constructs a booking service with the default window,
// expansion limit and detector parallelism.
func NewBookingService(snapshots SnapshotSource) *BookingService {
	return NewBookingServiceWithLogger(snapshots, slot.DefaultWindow(), nil, nil, nil)
}

// NewBookingServiceWithLogger constructs a booking service with explicit collaborators.
func NewBookingServiceWithLogger(snapshots SnapshotSource, window slot.Window, expander *recurrence.Engine, detector *scheduler.Detector, logger *slog.Logger) *BookingService {
	if expander == nil {
		expander = recurrence.NewEngine(0)
	}
	if detector == nil {
		detector = scheduler.NewDetector(0)
	}
	return &BookingService{
		snapshots: snapshots,
		window:    window,
		expander:  expander,
		detector:  detector,
		logger:    defaultLogger(logger),
	}
}

// Window returns the operating window applied to submitted intervals.
func (s *BookingService) Window() slot.Window { return s.window }

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// Submit merges the selected cells into intervals, expands recurrences,
// reads one fresh snapshot and partitions the candidates into valid and
// conflicting. Cells that fail the time range checks are reported as
// rejections before merging. Nothing is written.
func (s *BookingService) Submit(ctx context.Context, params SubmitParams) (plan booking.CommitPlan, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Submit", "cell_count", len(params.Cells))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build commit plan", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"valid_count", len(plan.Valid),
			"conflict_count", len(plan.Conflicting),
			"rejected_count", len(plan.Rejected),
		).InfoContext(ctx, "commit plan built")
	}()

	if vErr := validateSubmitParams(params); vErr.HasErrors() {
		err = vErr
		return
	}

	cells := make([]selection.Cell, 0, len(params.Cells))
	for _, cell := range params.Cells {
		interval := cell.Interval()
		if vErr := interval.Validate(s.window); vErr != nil {
			plan.Rejected = append(plan.Rejected, booking.Rejection{Interval: interval, Err: vErr})
			continue
		}
		cells = append(cells, cell)
	}

	var seeds []booking.Candidate
	for _, interval := range selection.Merge(cells) {
		category, ok := params.Categories[interval.Resource]
		if !ok {
			category = booking.CategoryRoom
		}
		seed := booking.Candidate{
			Interval:  interval,
			Requester: normalizeRequester(params.Form.Requester),
			Details:   params.Form.DetailsFor(category),
			SeedDate:  interval.Date,
			Status:    booking.StatusPending,
		}
		if params.Recurrence != nil {
			rule := *params.Recurrence
			seed.Recurrence = &rule
		}
		seeds = append(seeds, seed)
	}

	var candidates []booking.Candidate
	for _, seed := range seeds {
		var expanded []booking.Candidate
		expanded, err = s.expander.Expand(seed)
		if err != nil {
			if errors.Is(err, recurrence.ErrTooManyOccurrences) || errors.Is(err, booking.ErrInvalidRecurrence) {
				vErr := &ValidationError{}
				vErr.add("recurrence", err.Error())
				err = vErr
			}
			return
		}
		candidates = append(candidates, expanded...)
	}
	if len(candidates) == 0 {
		return
	}

	var snapshot []booking.Existing
	snapshot, err = fetchSnapshot(ctx, s.snapshots, candidates)
	if err != nil {
		plan = booking.CommitPlan{}
		return
	}

	var (
		valid     []booking.Candidate
		conflicts []booking.Conflict
	)
	valid, conflicts, err = s.detector.Partition(ctx, candidates, snapshot)
	if err != nil {
		plan = booking.CommitPlan{}
		return
	}
	plan.Valid = valid
	plan.Conflicting = conflicts
	return
}

// fetchSnapshot reads every reservation, cancelled ones included, on the
// candidates' resources within their date span.
func fetchSnapshot(ctx context.Context, source SnapshotSource, candidates []booking.Candidate) ([]booking.Existing, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: reservation store not configured", ErrSnapshotFetchFailed)
	}

	from, to := candidates[0].Date, candidates[0].Date
	resources := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.Date.Before(from) {
			from = c.Date
		}
		if c.Date.After(to) {
			to = c.Date
		}
		resources = append(resources, string(c.Resource))
	}
	slices.Sort(resources)
	resources = slices.Compact(resources)

	fromTime, toTime := from.Time(), to.Time()
	records, err := source.ListReservations(ctx, persistence.ReservationFilter{
		ResourceIDs:      resources,
		From:             &fromTime,
		To:               &toTime,
		IncludeCancelled: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotFetchFailed, err)
	}
	existing, err := toExistingList(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotFetchFailed, err)
	}
	return existing, nil
}

func validateSubmitParams(params SubmitParams) *ValidationError {
	vErr := &ValidationError{}

	if len(params.Cells) == 0 {
		vErr.add("cells", "at least one cell must be selected")
	}
	vErr.merge(validateRequester(params.Form.Requester))
	if params.Recurrence != nil {
		if err := params.Recurrence.Validate(); err != nil {
			vErr.add("recurrence", err.Error())
		}
	}

	return vErr
}

func validateRequester(r booking.Requester) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(r.Name) == "" {
		vErr.add("requester.name", "name is required")
	}
	email := strings.TrimSpace(r.Email)
	if email == "" {
		vErr.add("requester.email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("requester.email", "email must be a valid address")
	}

	return vErr
}

func normalizeRequester(r booking.Requester) booking.Requester {
	return booking.Requester{
		Name:       strings.TrimSpace(r.Name),
		Email:      strings.ToLower(strings.TrimSpace(r.Email)),
		Department: strings.TrimSpace(r.Department),
		Purpose:    strings.TrimSpace(r.Purpose),
	}
}
