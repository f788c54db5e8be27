package database

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/database/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// RunMigrations applies the embedded SQL migrations for driver
func RunMigrations(db *gorm.DB, driver, dbName string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	var (
		instance database.Driver
		files    fs.FS
		dir      string
	)

	switch driver {
	case DriverPostgres:
		instance, err = postgres.WithInstance(sqlDB, &postgres.Config{})
		files, dir = migrations.Postgres, "postgres"
	case DriverSQLite:
		instance, err = sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
		files, dir = migrations.SQLite, "sqlite"
	default:
		return fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	source, err := iofs.New(files, dir)
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dbName, instance)
	if err != nil {
		return fmt.Errorf("failed to init migrate: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}
