package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/room-reservation/internal/persistence"
	"github.com/example/room-reservation/internal/persistence/memory"
	"github.com/example/room-reservation/internal/persistence/sqlite"
	"github.com/example/room-reservation/internal/persistence/sqlite/migration"
)

// Store bundles both repositories of one backend for table-driven
// persistence tests.
type Store struct {
	Name         string
	Resources    persistence.ResourceRepository
	Reservations persistence.ReservationRepository
}

// SQLiteHarness exposes repositories over a migrated temporary SQLite file.
type SQLiteHarness struct {
	Pool         *sqlite.ConnectionPool
	Resources    *sqlite.ResourceRepository
	Reservations *sqlite.ReservationRepository

	cleanup func()
}

// Close releases the connection pool. It is also registered with tb.Cleanup.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// Store returns the harness repositories as a Store.
func (h *SQLiteHarness) Store() Store {
	return Store{Name: "sqlite", Resources: h.Resources, Reservations: h.Reservations}
}

// NewSQLiteHarness opens and migrates a database under tb.TempDir.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "reservations.db")
	pool, err := sqlite.NewConnectionPool(migration.TempFileTestSQLiteConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := pool.Migrate(context.Background(), logger); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:         pool,
		Resources:    sqlite.NewResourceRepository(pool),
		Reservations: sqlite.NewReservationRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}

// Stores returns a fresh in-memory store and a fresh SQLite store.
func Stores(tb testing.TB) []Store {
	tb.Helper()

	mem := memory.New()
	return []Store{
		{Name: "memory", Resources: mem, Reservations: mem},
		NewSQLiteHarness(tb).Store(),
	}
}
