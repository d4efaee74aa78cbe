package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/room-reservation/internal/persistence"
)

// ResourceRepository implements persistence.ResourceRepository on Postgres.
type ResourceRepository struct {
	pool *Pool
}

// NewResourceRepository creates a resource repository.
func NewResourceRepository(pool *Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

const resourceColumns = `id, name, category, capacity, COALESCE(location, ''), restricted,
	COALESCE(unlock_hash, ''), created_at, updated_at`

func (r *ResourceRepository) CreateResource(ctx context.Context, resource persistence.Resource) error {
	if resource.ID == "" || strings.TrimSpace(resource.Name) == "" {
		return persistence.ErrConstraintViolation
	}
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO resources (id, name, category, capacity, location, restricted, unlock_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, resource.ID, resource.Name, resource.Category, resource.Capacity,
		nullIfEmpty(resource.Location), resource.Restricted, nullIfEmpty(resource.UnlockHash), now)
	return mapError(err)
}

func (r *ResourceRepository) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id)
	resource, err := scanResource(row)
	if err != nil {
		return persistence.Resource{}, mapError(err)
	}
	return resource, nil
}

func (r *ResourceRepository) ListResources(ctx context.Context) ([]persistence.Resource, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var resources []persistence.Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, mapError(err)
		}
		resources = append(resources, resource)
	}
	if rows.Err() != nil {
		return nil, mapError(rows.Err())
	}
	return resources, nil
}

func scanResource(row pgx.Row) (persistence.Resource, error) {
	var resource persistence.Resource
	err := row.Scan(
		&resource.ID,
		&resource.Name,
		&resource.Category,
		&resource.Capacity,
		&resource.Location,
		&resource.Restricted,
		&resource.UnlockHash,
		&resource.CreatedAt,
		&resource.UpdatedAt,
	)
	return resource, err
}
