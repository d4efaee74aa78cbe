package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/room-reservation/internal/persistence"
)

func openTestPool(t *testing.T) *Pool {
	t.Helper()
	url := os.Getenv("RESERVATION_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("RESERVATION_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	pool, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Migrate(ctx))
	return pool
}

func TestRepositories(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	resources := NewResourceRepository(pool)
	reservations := NewReservationRepository(pool)

	resourceID := "room-" + uuid.NewString()
	require.NoError(t, resources.CreateResource(ctx, persistence.Resource{
		ID: resourceID, Name: "Room " + resourceID, Category: "room", Capacity: 6,
	}))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM reservations WHERE resource_id = $1`, resourceID)
		_, _ = pool.Exec(context.Background(), `DELETE FROM resources WHERE id = $1`, resourceID)
	})

	got, err := resources.GetResource(ctx, resourceID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Capacity)

	day := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	reservation := persistence.Reservation{
		ID:             uuid.NewString(),
		ResourceID:     resourceID,
		Date:           day,
		StartMinute:    540,
		EndMinute:      600,
		RequesterName:  "Sato",
		RequesterEmail: "sato@example.com",
		Category:       "room",
		Details:        []byte(`{"seating":"theatre"}`),
	}
	require.NoError(t, reservations.CreateReservation(ctx, reservation))
	assert.ErrorIs(t, reservations.CreateReservation(ctx, reservation), persistence.ErrDuplicate)

	orphan := reservation
	orphan.ID = uuid.NewString()
	orphan.ResourceID = "missing-" + uuid.NewString()
	assert.ErrorIs(t, reservations.CreateReservation(ctx, orphan), persistence.ErrForeignKeyViolation)

	listed, err := reservations.ListReservations(ctx, persistence.ReservationFilter{ResourceIDs: []string{resourceID}})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Date.Equal(day))
	assert.JSONEq(t, `{"seating":"theatre"}`, string(listed[0].Details))

	cancelled, err := reservations.CancelReservation(ctx, reservation.ID, "moved", time.Now())
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled)
	assert.Equal(t, "moved", cancelled.CancelReason)

	listed, err = reservations.ListReservations(ctx, persistence.ReservationFilter{ResourceIDs: []string{resourceID}})
	require.NoError(t, err)
	assert.Empty(t, listed)

	require.NoError(t, reservations.DeleteReservation(ctx, reservation.ID))
	_, err = reservations.GetReservation(ctx, reservation.ID)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}
