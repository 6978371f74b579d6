package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the full database schema. State is kept as a handful of named
// JSON records, each versioned on its own.
const schema = `
CREATE TABLE IF NOT EXISTS records (
    name       TEXT PRIMARY KEY,
    version    INTEGER NOT NULL,
    data       TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
