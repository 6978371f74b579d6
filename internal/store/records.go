package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/shramba/internal/model"
)

// Record names and the newest version of each this build understands.
const (
	RecordItems      = "items"
	RecordCategories = "categories"
	RecordLocations  = "locationStructure"
	RecordUndo       = "undo"

	ItemsVersion      = 1
	CategoriesVersion = 1
	LocationsVersion  = 1
	UndoVersion       = 1
)

// Record is one stored row.
type Record struct {
	Name      string    `db:"name"`
	Version   int       `db:"version"`
	Data      string    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PutRecord encodes v as JSON and stores it under name, replacing any
// previous value.
func PutRecord(ctx context.Context, db sqlx.ExecerContext, name string, version int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", name, err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO records (name, version, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET version = excluded.version, data = excluded.data, updated_at = excluded.updated_at`,
		name, version, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing %s record: %w", name, err)
	}
	return nil
}

// GetRecord decodes the record stored under name into v. It reports false if
// there is no such record. A record newer than maxVersion is rejected with
// model.ErrFormat.
func GetRecord(ctx context.Context, db sqlx.QueryerContext, name string, maxVersion int, v any) (bool, error) {
	var rec Record
	err := sqlx.GetContext(ctx, db, &rec,
		`SELECT name, version, data, updated_at FROM records WHERE name = ?`, name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getting %s record: %w", name, err)
	}

	if rec.Version > maxVersion {
		return false, fmt.Errorf("%w: %s record version %d is newer than supported %d", model.ErrFormat, name, rec.Version, maxVersion)
	}
	if err := json.Unmarshal([]byte(rec.Data), v); err != nil {
		return false, fmt.Errorf("%w: decoding %s record: %v", model.ErrFormat, name, err)
	}
	return true, nil
}

// ListRecords returns every stored record ordered by name.
func ListRecords(ctx context.Context, db *sqlx.DB) ([]Record, error) {
	var recs []Record
	err := db.SelectContext(ctx, &recs,
		`SELECT name, version, data, updated_at FROM records ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return recs, nil
}
