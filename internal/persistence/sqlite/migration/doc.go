// Package migration applies versioned SQL files to a SQLite database.
//
// Migration files follow the naming convention {version}_{description}.sql
// (e.g. "001_create_resources.sql") and are read from an fs.FS, usually an
// embedded directory. Applied versions and their checksums are tracked in the
// schema_migrations table; an applied file whose content changed is reported
// as ErrChecksumMismatch instead of being re-run.
//
// Example usage:
//
//	manager := NewManager(NewScanner(files, "schema"), NewExecutor(db), logger)
//	if err := manager.Run(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
