package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-reservation/internal/persistence"
)

// ResourceRepository implements persistence.ResourceRepository using SQLite
type ResourceRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewResourceRepository creates a new SQLite resource repository
func NewResourceRepository(pool *ConnectionPool) *ResourceRepository {
	return &ResourceRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

const resourceColumns = `id, name, category, capacity, location, restricted, unlock_hash, created_at, updated_at`

// CreateResource inserts a new resource into the database
func (r *ResourceRepository) CreateResource(ctx context.Context, resource persistence.Resource) error {
	if resource.ID == "" || strings.TrimSpace(resource.Name) == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	resource.CreatedAt = now
	resource.UpdatedAt = now

	return r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, `
			INSERT INTO resources (`+resourceColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			resource.ID,
			resource.Name,
			resource.Category,
			resource.Capacity,
			nullString(resource.Location),
			resource.Restricted,
			nullString(resource.UnlockHash),
			formatTime(resource.CreatedAt),
			formatTime(resource.UpdatedAt),
		)
		return err
	})
}

// GetResource retrieves a resource by ID from the database
func (r *ResourceRepository) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	if id == "" {
		return persistence.Resource{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id)
	resource, err := scanResource(row)
	if err != nil {
		return persistence.Resource{}, r.mapper.MapError(err)
	}
	return resource, nil
}

// ListResources returns all resources ordered by name then ID
func (r *ResourceRepository) ListResources(ctx context.Context) ([]persistence.Resource, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var resources []persistence.Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return resources, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (persistence.Resource, error) {
	var (
		resource             persistence.Resource
		location, unlockHash sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&resource.ID,
		&resource.Name,
		&resource.Category,
		&resource.Capacity,
		&location,
		&resource.Restricted,
		&unlockHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Resource{}, err
	}
	resource.Location = location.String
	resource.UnlockHash = unlockHash.String

	if resource.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Resource{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if resource.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Resource{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return resource, nil
}
