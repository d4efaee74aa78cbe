package sqlite

import (
	"context"
	"embed"
	"log/slog"

	"github.com/example/room-reservation/internal/persistence/sqlite/migration"
)

//go:embed schema/*.sql
var schemaFiles embed.FS

// Migrate applies the embedded schema migrations.
func (cp *ConnectionPool) Migrate(ctx context.Context, logger *slog.Logger) error {
	manager := migration.NewManager(
		migration.NewScanner(schemaFiles, "schema"),
		migration.NewExecutor(cp.db),
		logger,
	)
	return manager.Run(ctx)
}
