package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fastygo/compliance/internal/config"
)

// MigrationState is the schema version after RunMigrations.
type MigrationState struct {
	Version uint
	Dirty   bool
	Applied bool
}

// RunMigrations brings the clients/tasks/documents/profiles schema up to date.
// A dirty schema is reported instead of migrated so an operator can force it.
func RunMigrations(dbCfg config.DatabaseConfig, migCfg config.MigrationsConfig, logger *zap.Logger) (MigrationState, error) {
	var state MigrationState
	if !migCfg.Enabled {
		return state, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sqlDB, err := sql.Open("postgres", dbCfg.DSN())
	if err != nil {
		return state, err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return state, fmt.Errorf("ping: %w", err)
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return state, err
	}
	sourceURL := "file://" + filepath.ToSlash(migCfg.Path)
	m, err := migrate.NewWithDatabaseInstance(sourceURL, dbCfg.Name, driver)
	if err != nil {
		return state, err
	}
	defer m.Close()

	if version, dirty, err := m.Version(); err == nil && dirty {
		return MigrationState{Version: version, Dirty: true}, fmt.Errorf("schema version %d is dirty", version)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
	case err != nil:
		return state, err
	default:
		state.Applied = true
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return state, err
	}
	state.Version, state.Dirty = version, dirty

	logger.Info("database schema ready",
		zap.Uint("version", version),
		zap.Bool("applied", state.Applied))
	return state, nil
}
