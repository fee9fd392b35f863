// Package sqlite persists analysis runs and change records. Stores take a
// *sql.DB opened by internal/db and assume the schema from migrations/ has
// been applied.
package sqlite
