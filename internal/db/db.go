// Package db owns the SQLite connection and schema migrations for the
// change-detection service. Stores in internal/storage/sqlite operate on
// the *sql.DB it wraps.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// startupPragmas are applied to every new connection. WAL keeps readers
// unblocked while a detection run is being persisted.
var startupPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA foreign_keys=ON",
}

// NewDB opens (creating if needed) the SQLite database at path and applies
// the startup pragmas. Callers should run MigrateUp before using stores.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	for _, pragma := range startupPragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	return &DB{db}, nil
}
