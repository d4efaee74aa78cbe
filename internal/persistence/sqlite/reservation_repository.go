package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using SQLite
type ReservationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewReservationRepository creates a new SQLite reservation repository
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

const reservationColumns = `id, series_id, resource_id, date, start_minute, end_minute,
	requester_name, requester_email, department, purpose, category, details,
	cancelled, cancel_reason, cancelled_at, created_at, updated_at`

// CreateReservation inserts a new reservation
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	return r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, `
			INSERT INTO reservations (`+reservationColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL, NULL, ?, ?)`,
			reservation.ID,
			nullString(reservation.SeriesID),
			reservation.ResourceID,
			reservation.Date.UTC().Format(dateLayout),
			reservation.StartMinute,
			reservation.EndMinute,
			reservation.RequesterName,
			reservation.RequesterEmail,
			nullString(reservation.Department),
			nullString(reservation.Purpose),
			nullString(reservation.Category),
			nullString(string(reservation.Details)),
			formatTime(reservation.CreatedAt),
			formatTime(reservation.UpdatedAt),
		)
		return err
	})
}

// GetReservation retrieves a reservation by ID
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	reservation, err := scanReservation(row)
	if err != nil {
		return persistence.Reservation{}, r.mapper.MapError(err)
	}
	return reservation, nil
}

// ListReservations returns reservations matching the filter ordered by date,
// start minute, resource and ID
func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	query, args := buildReservationListQuery(filter)

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return reservations, nil
}

// CancelReservation marks a reservation cancelled and returns the updated row
func (r *ReservationRepository) CancelReservation(ctx context.Context, id, reason string, at time.Time) (persistence.Reservation, error) {
	var updated persistence.Reservation
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := r.helper.ExecTx(ctx, tx, `
			UPDATE reservations
			SET cancelled = 1, cancel_reason = ?, cancelled_at = ?, updated_at = ?
			WHERE id = ?`,
			nullString(reason), formatTime(at), formatTime(at), id,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		row := r.helper.QueryRowTx(ctx, tx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
		updated, err = scanReservation(row)
		return r.mapper.MapError(err)
	})
	if err != nil {
		return persistence.Reservation{}, err
	}
	return updated, nil
}

// DeleteReservation removes a reservation by ID
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// buildReservationListQuery builds the SQL query for listing reservations with filters
func buildReservationListQuery(filter persistence.ReservationFilter) (string, []any) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`

	var (
		conditions []string
		args       []any
	)
	if !filter.IncludeCancelled {
		conditions = append(conditions, "cancelled = 0")
	}
	if len(filter.ResourceIDs) > 0 {
		placeholders := make([]string, len(filter.ResourceIDs))
		for i, id := range filter.ResourceIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		conditions = append(conditions, fmt.Sprintf("resource_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.From != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, persistence.DateOnly(*filter.From).Format(dateLayout))
	}
	if filter.To != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, persistence.DateOnly(*filter.To).Format(dateLayout))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, start_minute ASC, resource_id ASC, id ASC"
	return query, args
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var (
		reservation                             persistence.Reservation
		seriesID, department, purpose, category sql.NullString
		details, cancelReason, cancelledAt      sql.NullString
		date, createdAt, updatedAt              string
	)
	err := row.Scan(
		&reservation.ID,
		&seriesID,
		&reservation.ResourceID,
		&date,
		&reservation.StartMinute,
		&reservation.EndMinute,
		&reservation.RequesterName,
		&reservation.RequesterEmail,
		&department,
		&purpose,
		&category,
		&details,
		&reservation.Cancelled,
		&cancelReason,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Reservation{}, err
	}

	reservation.SeriesID = seriesID.String
	reservation.Department = department.String
	reservation.Purpose = purpose.String
	reservation.Category = category.String
	reservation.CancelReason = cancelReason.String
	if details.Valid {
		reservation.Details = []byte(details.String)
	}

	if reservation.Date, err = time.Parse(dateLayout, date); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse date: %w", err)
	}
	if cancelledAt.Valid {
		at, err := parseTime(cancelledAt.String)
		if err != nil {
			return persistence.Reservation{}, fmt.Errorf("failed to parse cancelled_at: %w", err)
		}
		reservation.CancelledAt = &at
	}
	if reservation.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if reservation.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return reservation, nil
}
