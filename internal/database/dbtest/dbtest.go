// Package dbtest opens migrated SQLite databases for integration tests.
package dbtest

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"go.uber.org/zap"

	"educross/internal/database"
)

// MigrationsPath is the repository's migrations directory
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// Open returns a migrated SQLite database in a temp directory. The test is
// skipped under -short.
func Open(t testing.TB) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := database.OpenDialect(ctx, database.NewSQLiteDialect(), database.DialectConfig{Path: path}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(ctx, MigrationsPath()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}
