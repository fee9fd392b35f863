package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/geowatch-data/landcover.report/internal/db"
)

// setupTestDB creates a file-backed test database and applies the real
// migrations, so tests exercise the same schema as production.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	d, err := db.NewDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	migrationsDir := filepath.Join("..", "..", "..", "migrations")
	if err := d.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return d.DB
}
