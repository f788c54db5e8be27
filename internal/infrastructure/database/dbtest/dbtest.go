// Package dbtest opens throwaway migrated databases for repository tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/Conte777/NewsFlow/services/music-service/internal/infrastructure/database"
	"gorm.io/gorm"
)

// New opens a migrated SQLite database in a temporary directory
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.RunMigrations(db, database.DriverSQLite, "test"); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}
