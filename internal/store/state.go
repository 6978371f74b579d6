package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/shramba/internal/locations"
	"github.com/erazemk/shramba/internal/model"
)

// State is everything that survives a restart.
type State struct {
	Items      []model.Item
	Categories []string
	Locations  locations.Tree
	// Undo is the encoded pending undo record, or null.
	Undo json.RawMessage
}

// SaveState writes every record in one transaction.
func SaveState(ctx context.Context, db *sqlx.DB, s State) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	undo := s.Undo
	if len(undo) == 0 {
		undo = json.RawMessage("null")
	}
	items := s.Items
	if items == nil {
		items = []model.Item{}
	}
	tree := s.Locations
	if tree == nil {
		tree = locations.Tree{}
	}

	if err := PutRecord(ctx, tx, RecordItems, ItemsVersion, items); err != nil {
		return err
	}
	if err := PutRecord(ctx, tx, RecordCategories, CategoriesVersion, s.Categories); err != nil {
		return err
	}
	if err := PutRecord(ctx, tx, RecordLocations, LocationsVersion, tree); err != nil {
		return err
	}
	if err := PutRecord(ctx, tx, RecordUndo, UndoVersion, undo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	return nil
}

// LoadState reads every record. found is false when nothing was ever saved.
// Missing records are left at their zero value.
func LoadState(ctx context.Context, db *sqlx.DB) (s State, found bool, err error) {
	loads := []struct {
		name    string
		version int
		target  any
	}{
		{RecordItems, ItemsVersion, &s.Items},
		{RecordCategories, CategoriesVersion, &s.Categories},
		{RecordLocations, LocationsVersion, &s.Locations},
		{RecordUndo, UndoVersion, &s.Undo},
	}
	for _, l := range loads {
		ok, err := GetRecord(ctx, db, l.name, l.version, l.target)
		if err != nil {
			return State{}, false, err
		}
		found = found || ok
	}
	return s, found, nil
}

// SQLite persists State in a SQLite database.
type SQLite struct {
	DB *sqlx.DB
}

// Save writes s.
func (p *SQLite) Save(ctx context.Context, s State) error {
	return SaveState(ctx, p.DB, s)
}

// Load reads the saved state.
func (p *SQLite) Load(ctx context.Context) (State, bool, error) {
	return LoadState(ctx, p.DB)
}
