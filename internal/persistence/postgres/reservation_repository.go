package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/room-reservation/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository on Postgres.
type ReservationRepository struct {
	pool *Pool
}

// NewReservationRepository creates a reservation repository.
func NewReservationRepository(pool *Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

const reservationColumns = `id, COALESCE(series_id, ''), resource_id, date, start_minute, end_minute,
	requester_name, requester_email, COALESCE(department, ''), COALESCE(purpose, ''),
	COALESCE(category, ''), details, cancelled, COALESCE(cancel_reason, ''), cancelled_at,
	created_at, updated_at`

func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}
	now := time.Now().UTC()
	var details any
	if len(reservation.Details) > 0 {
		details = string(reservation.Details)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reservations
			(id, series_id, resource_id, date, start_minute, end_minute, requester_name, requester_email,
			 department, purpose, category, details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13, $13)
	`, reservation.ID, nullIfEmpty(reservation.SeriesID), reservation.ResourceID,
		persistence.DateOnly(reservation.Date), reservation.StartMinute, reservation.EndMinute,
		reservation.RequesterName, reservation.RequesterEmail, nullIfEmpty(reservation.Department),
		nullIfEmpty(reservation.Purpose), nullIfEmpty(reservation.Category), details, now)
	return mapError(err)
}

func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	reservation, err := scanReservation(row)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}
	return reservation, nil
}

func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	var (
		conditions []string
		args       []any
	)
	if !filter.IncludeCancelled {
		conditions = append(conditions, "NOT cancelled")
	}
	if len(filter.ResourceIDs) > 0 {
		args = append(args, filter.ResourceIDs)
		conditions = append(conditions, fmt.Sprintf("resource_id = ANY($%d)", len(args)))
	}
	if filter.From != nil {
		args = append(args, persistence.DateOnly(*filter.From))
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, persistence.DateOnly(*filter.To))
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, start_minute ASC, resource_id ASC, id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, mapError(err)
		}
		reservations = append(reservations, reservation)
	}
	if rows.Err() != nil {
		return nil, mapError(rows.Err())
	}
	return reservations, nil
}

func (r *ReservationRepository) CancelReservation(ctx context.Context, id, reason string, at time.Time) (persistence.Reservation, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE reservations
		SET cancelled = TRUE, cancel_reason = $2, cancelled_at = $3, updated_at = $3
		WHERE id = $1
		RETURNING `+reservationColumns, id, nullIfEmpty(reason), at.UTC())
	reservation, err := scanReservation(row)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}
	return reservation, nil
}

func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanReservation(row pgx.Row) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	err := row.Scan(
		&reservation.ID,
		&reservation.SeriesID,
		&reservation.ResourceID,
		&reservation.Date,
		&reservation.StartMinute,
		&reservation.EndMinute,
		&reservation.RequesterName,
		&reservation.RequesterEmail,
		&reservation.Department,
		&reservation.Purpose,
		&reservation.Category,
		&reservation.Details,
		&reservation.Cancelled,
		&reservation.CancelReason,
		&reservation.CancelledAt,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return persistence.Reservation{}, err
	}
	reservation.Date = persistence.DateOnly(reservation.Date)
	return reservation, nil
}
