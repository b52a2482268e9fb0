package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver
	"github.com/impairment-ledger/internal/config"
)

// RunMigrations brings the schema at cfg.URL up to the newest migration in
// cfg.MigrationsPath, a directory or a file:// URL.
func RunMigrations(logger *slog.Logger, cfg *config.PostgresConfig) error {
	if cfg.MigrationsPath == "" {
		return errors.New("migrations path cannot be empty")
	}
	if cfg.URL == "" {
		return errors.New("database URL cannot be empty")
	}

	m, err := migrate.New(migrationSourceURL(cfg.MigrationsPath), cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Warn("Could not read schema version", "error", err)
	} else {
		logger.Info("Database schema is up to date", "version", version, "dirty", dirty)
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	return nil
}

func migrationSourceURL(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}
