package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/notify"
	"github.com/example/room-reservation/internal/persistence"
	"github.com/example/room-reservation/internal/scheduler"
	"github.com/example/room-reservation/internal/slot"
)

// defaultNotifyTimeout bounds each best-effort notification.
const defaultNotifyTimeout = 2 * time.Second

// ReservationService writes, cancels and reads committed reservations.
type ReservationService struct {
	reservations  persistence.ReservationRepository
	notifier      notify.Notifier
	notifyTimeout time.Duration
	window       slot.Window
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewReservationService constructs a reservation service with the default window.
func NewReservationService(reservations persistence.ReservationRepository, notifier notify.Notifier, idGenerator func() string, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(reservations, notifier, slot.DefaultWindow(), idGenerator, now, nil)
}

// NewReservationServiceWithLogger constructs a reservation service with a specified logger.
func NewReservationServiceWithLogger(reservations persistence.ReservationRepository, notifier notify.Notifier, window slot.Window, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		reservations:  reservations,
		notifier:      notifier,
		notifyTimeout: defaultNotifyTimeout,
		window:       window,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// Commit writes every candidate independently. Candidates expanded from the
// same seed share a generated series ID. Before writing, one fresh snapshot is
// read and every candidate that overlaps an active reservation, or one written
// earlier in the same call, fails with booking.ErrConflictDetected. Failures do
// not roll back earlier writes; they are listed in the result and reported as
// *PartialCommitError. A snapshot read failure fails the whole call before any
// write. Once ctx is done the remaining candidates are marked failed with its
// error.
func (s *ReservationService) Commit(ctx context.Context, candidates []booking.Candidate) (result CommitResult, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Commit", "candidate_count", len(candidates))
	defer func() {
		logger = logger.With("created_count", len(result.Created), "failed_count", len(result.Failed))
		if err != nil {
			logger.ErrorContext(ctx, "failed to commit reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservations committed")
	}()

	if len(candidates) == 0 {
		vErr := &ValidationError{}
		vErr.add("candidates", "at least one candidate is required")
		err = vErr
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	seriesIDs := s.assignSeries(candidates)

	var snapshot []booking.Existing
	if checkable := s.checkable(candidates); len(checkable) > 0 && ctx.Err() == nil {
		snapshot, err = fetchSnapshot(ctx, s.reservations, checkable)
		if err != nil {
			return
		}
	}

	for i, candidate := range candidates {
		if ctxErr := ctx.Err(); ctxErr != nil {
			for _, rest := range candidates[i:] {
				result.Failed = append(result.Failed, CommitFailure{Candidate: rest, Err: ctxErr})
			}
			break
		}

		if detected := scheduler.Detect(candidate, snapshot); detected.HasConflict {
			conflictErr := fmt.Errorf("%w: %s overlaps reservation %s", booking.ErrConflictDetected, candidate.Interval, detected.Conflicts[0].ID)
			logger.WarnContext(ctx, "reservation not created",
				"resource_id", candidate.Resource,
				"date", candidate.Date.String(),
				"error", conflictErr,
				"error_kind", ErrorKind(conflictErr),
			)
			result.Failed = append(result.Failed, CommitFailure{Candidate: candidate, Err: conflictErr})
			continue
		}

		existing, createErr := s.create(ctx, candidate, seriesIDs[candidate.SeriesKey()])
		if createErr != nil {
			logger.WarnContext(ctx, "reservation not created",
				"resource_id", candidate.Resource,
				"date", candidate.Date.String(),
				"error", createErr,
				"error_kind", ErrorKind(createErr),
			)
			result.Failed = append(result.Failed, CommitFailure{Candidate: candidate, Err: createErr})
			continue
		}
		result.Created = append(result.Created, existing)
		snapshot = append(snapshot, existing)
		s.notifyCreated(ctx, logger, existing)
	}

	if len(result.Failed) > 0 {
		err = &PartialCommitError{
			Attempted: len(candidates),
			Created:   len(result.Created),
			Failed:    len(result.Failed),
		}
	}
	return
}

// checkable returns the candidates whose intervals are well formed enough to
// bound a snapshot read.
func (s *ReservationService) checkable(candidates []booking.Candidate) []booking.Candidate {
	out := make([]booking.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Interval.Validate(s.window) == nil {
			out = append(out, c)
		}
	}
	return out
}

// assignSeries returns a series ID for every seed that produced more than one
// candidate in this batch.
func (s *ReservationService) assignSeries(candidates []booking.Candidate) map[string]string {
	counts := make(map[string]int, len(candidates))
	for _, c := range candidates {
		counts[c.SeriesKey()]++
	}
	ids := make(map[string]string)
	for _, c := range candidates {
		key := c.SeriesKey()
		if counts[key] < 2 && c.Occurrence == 0 {
			continue
		}
		if _, ok := ids[key]; !ok {
			ids[key] = s.idGenerator()
		}
	}
	return ids
}

func (s *ReservationService) create(ctx context.Context, candidate booking.Candidate, seriesID string) (booking.Existing, error) {
	if err := candidate.Interval.Validate(s.window); err != nil {
		return booking.Existing{}, err
	}
	if vErr := validateRequester(candidate.Requester); vErr.HasErrors() {
		return booking.Existing{}, vErr
	}

	record, err := toRecord(s.idGenerator(), seriesID, candidate, s.now())
	if err != nil {
		return booking.Existing{}, err
	}
	if err := s.reservations.CreateReservation(ctx, record); err != nil {
		return booking.Existing{}, mapReservationRepoError(err)
	}
	return toExisting(record)
}

func (s *ReservationService) notifyCreated(ctx context.Context, logger *slog.Logger, existing booking.Existing) {
	if s.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyCreated(notifyCtx, existing); err != nil {
		logger.WarnContext(ctx, "created notification failed", "reservation_id", existing.ID, "error", err)
	}
}

// Cancel marks a reservation cancelled. A cancelled reservation stays listed
// but no longer conflicts with new bookings.
func (s *ReservationService) Cancel(ctx context.Context, id, reason string) (reservation booking.Existing, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Cancel", "reservation_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	var current persistence.Reservation
	current, err = s.reservations.GetReservation(ctx, id)
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}
	if current.Cancelled {
		err = ErrAlreadyCancelled
		return
	}

	var updated persistence.Reservation
	updated, err = s.reservations.CancelReservation(ctx, id, strings.TrimSpace(reason), s.now())
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}

	reservation, err = toExisting(updated)
	if err != nil {
		return
	}

	if s.notifier != nil {
		notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
		defer cancel()
		if notifyErr := s.notifier.NotifyCancelled(notifyCtx, reservation, reservation.CancelReason); notifyErr != nil {
			logger.WarnContext(ctx, "cancelled notification failed", "error", notifyErr)
		}
	}
	return
}

// Delete removes a reservation record entirely.
func (s *ReservationService) Delete(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil {
		return fmt.Errorf("reservation repository not configured")
	}

	logger := s.loggerWith(ctx, "Delete", "reservation_id", id)

	if err := s.reservations.DeleteReservation(ctx, id); err != nil {
		err = mapReservationRepoError(err)
		logger.ErrorContext(ctx, "failed to delete reservation", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "reservation deleted")
	return nil
}

// Get returns a single reservation.
func (s *ReservationService) Get(ctx context.Context, id string) (booking.Existing, error) {
	if s == nil || s.reservations == nil {
		return booking.Existing{}, fmt.Errorf("reservation repository not configured")
	}
	record, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return booking.Existing{}, mapReservationRepoError(err)
	}
	return toExisting(record)
}

// List returns reservations ordered by date, start time and resource.
func (s *ReservationService) List(ctx context.Context, query ReservationQuery) (reservations []booking.Existing, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "List")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(reservations)).DebugContext(ctx, "reservations listed")
	}()

	if !query.From.IsZero() && !query.To.IsZero() && query.To.Before(query.From) {
		vErr := &ValidationError{}
		vErr.add("to", "to must not be before from")
		err = vErr
		return
	}

	var records []persistence.Reservation
	records, err = s.reservations.ListReservations(ctx, toFilter(query))
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}
	reservations, err = toExistingList(records)
	return
}

// Occupancy builds a cell index over the active reservations of the given
// resources between from and to inclusive.
func (s *ReservationService) Occupancy(ctx context.Context, resources []booking.ResourceID, from, to slot.Date) (*scheduler.Occupancy, error) {
	existing, err := s.List(ctx, ReservationQuery{ResourceIDs: resources, From: from, To: to})
	if err != nil {
		return nil, err
	}
	return scheduler.NewOccupancy(existing), nil
}

// Availability returns the reserved half-hour cells of one resource on one date.
func (s *ReservationService) Availability(ctx context.Context, resource booking.ResourceID, date slot.Date) ([]slot.TimeOfDay, error) {
	if resource == "" || date.IsZero() {
		vErr := &ValidationError{}
		if resource == "" {
			vErr.add("resource_id", "resource is required")
		}
		if date.IsZero() {
			vErr.add("date", "date is required")
		}
		return nil, vErr
	}
	occupancy, err := s.Occupancy(ctx, []booking.ResourceID{resource}, date, date)
	if err != nil {
		return nil, err
	}
	return occupancy.ReservedCells(resource, date), nil
}

func mapReservationRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("resource_id", "resource does not exist")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("interval", "reservation violates storage constraints")
		return vErr
	}
	return err
}
