package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/locations"
	"github.com/erazemk/shramba/internal/model"
)

func TestLoadState_Empty(t *testing.T) {
	database := db.NewTestDB(t)

	s, found, err := LoadState(context.Background(), database)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected nothing found in a fresh database")
	}
	if len(s.Items) != 0 || len(s.Categories) != 0 || len(s.Locations) != 0 {
		t.Fatalf("expected zero state, got %+v", s)
	}
}

func TestSaveLoadState_RoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	want := State{
		Items: []model.Item{{
			ID:       "a",
			Name:     "Milk",
			Category: "Food",
			Quantity: 2,
			Expiry:   model.NewDate(2026, 1, 10),
			Location: model.Location{House: "Home", Room: "Kitchen", Storage: "Fridge"},
		}},
		Categories: []string{"Food", model.Uncategorized},
		Locations:  locations.Tree{"Home": {"Kitchen": {"Fridge"}}},
		Undo:       json.RawMessage(`{"kind":"quantity","data":{"itemId":"a","name":"Milk","previous":3}}`),
	}
	if err := SaveState(ctx, database, want); err != nil {
		t.Fatal(err)
	}

	got, found, err := LoadState(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected saved state to be found")
	}
	if len(got.Items) != 1 || got.Items[0].Name != "Milk" || got.Items[0].Expiry != want.Items[0].Expiry {
		t.Errorf("items = %+v", got.Items)
	}
	if got.Items[0].Location != want.Items[0].Location {
		t.Errorf("location = %v, want %v", got.Items[0].Location, want.Items[0].Location)
	}
	if len(got.Categories) != 2 || got.Categories[1] != model.Uncategorized {
		t.Errorf("categories = %v", got.Categories)
	}
	if rooms := got.Locations["Home"]; len(rooms["Kitchen"]) != 1 || rooms["Kitchen"][0] != "Fridge" {
		t.Errorf("locations = %v", got.Locations)
	}
	if string(got.Undo) != string(want.Undo) {
		t.Errorf("undo = %s, want %s", got.Undo, want.Undo)
	}
}

func TestSaveState_Overwrites(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := SaveState(ctx, database, State{Categories: []string{"Food"}}); err != nil {
		t.Fatal(err)
	}
	if err := SaveState(ctx, database, State{Categories: []string{"Drinks", "Other"}}); err != nil {
		t.Fatal(err)
	}

	got, _, err := LoadState(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Categories) != 2 || got.Categories[0] != "Drinks" {
		t.Fatalf("categories = %v, want [Drinks Other]", got.Categories)
	}
	if string(got.Undo) != "null" {
		t.Errorf("undo = %s, want null", got.Undo)
	}

	recs, err := ListRecords(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}
	if recs[0].Name != RecordCategories {
		t.Errorf("first record = %q, want %q", recs[0].Name, RecordCategories)
	}
}

func TestGetRecord_NewerVersionRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := PutRecord(ctx, database, RecordCategories, CategoriesVersion+1, []string{"Food"}); err != nil {
		t.Fatal(err)
	}

	var cats []string
	_, err := GetRecord(ctx, database, RecordCategories, CategoriesVersion, &cats)
	if !errors.Is(err, model.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestGetRecord_CorruptData(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := database.Exec(`INSERT INTO records (name, version, data) VALUES (?, 1, ?)`, RecordItems, "{not json")
	if err != nil {
		t.Fatal(err)
	}

	var items []model.Item
	_, err = GetRecord(ctx, database, RecordItems, ItemsVersion, &items)
	if !errors.Is(err, model.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestSQLite_SaveLoad(t *testing.T) {
	p := &SQLite{DB: db.NewTestDB(t)}
	ctx := context.Background()

	if err := p.Save(ctx, State{Categories: []string{"Food"}}); err != nil {
		t.Fatal(err)
	}
	got, found, err := p.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !found || len(got.Categories) != 1 {
		t.Fatalf("got %+v found=%v", got, found)
	}
}
