package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hairizuanbinnoorazman/agent-backend/testrun"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ErrRollbackUnsupported is returned when rolling back a SQLite schema.
var ErrRollbackUnsupported = errors.New("rollback is only supported for mysql")

// RunMigrations brings the schema up to date. MySQL uses the versioned SQL
// migrations; SQLite is migrated from the models.
func RunMigrations(db *gorm.DB, cfg Config) error {
	switch cfg.driver() {
	case DriverSQLite:
		if err := db.AutoMigrate(&testrun.Run{}, &testrun.AgentResult{}); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		return nil
	case DriverMySQL:
		m, err := newMigrate(db)
		if err != nil {
			return err
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

// RollbackMigration reverts the most recent MySQL migration.
func RollbackMigration(db *gorm.DB, cfg Config) error {
	if cfg.driver() != DriverMySQL {
		return ErrRollbackUnsupported
	}
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}

func newMigrate(db *gorm.DB) (*migrate.Migrate, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	driver, err := migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}
