package backup

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/shramba/internal/locations"
	"github.com/erazemk/shramba/internal/model"
)

func TestRoundTrip(t *testing.T) {
	created := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)
	doc := Document{
		Items: []model.Item{{
			ID: "a", Name: "Jam", Category: "Food", Quantity: 2,
			Expiry:    model.NewDate(2024, time.June, 1),
			Opened:    &model.Opened{Date: model.NewDate(2024, time.May, 1), ShelfLifeMonths: 3},
			Location:  model.Location{House: "Home", Room: "Kitchen", Storage: "Pantry"},
			CreatedAt: created, UpdatedAt: created,
		}},
		Categories:        []string{"Food", model.Uncategorized},
		LocationStructure: locations.Tree{"Home": {"Kitchen": {"Pantry"}}},
		ExportDate:        created,
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, doc)
	}
}

func TestEmptyStateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Document{}); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(&buf); err != nil {
		t.Errorf("expected empty export to import cleanly, got %v", err)
	}
}

func TestDecodeRejectsInvalidItems(t *testing.T) {
	tests := []struct {
		name  string
		items string
	}{
		{"duplicate id", `[{"id": "x", "name": "A"}, {"id": "x", "name": "B"}]`},
		{"room without house", `[{"id": "x", "name": "A", "location": {"room": "Kitchen"}}]`},
		{"storage without room", `[{"id": "x", "name": "A", "location": {"house": "Home", "storage": "Shelf"}}]`},
		{"blank house", `[{"id": "x", "name": "A", "location": {"house": "   "}}]`},
		{"negative quantity", `[{"id": "x", "name": "A", "quantity": -1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `{"items": ` + tt.items + `, "categories": [], "locationStructure": {}}`
			_, err := Decode(strings.NewReader(input))
			if !errors.Is(err, model.ErrFormat) {
				t.Errorf("expected ErrFormat, got %v", err)
			}
			if err != nil && !strings.Contains(err.Error(), "invalid backup format") {
				t.Errorf("error = %q, want it to mention the backup format", err)
			}
		})
	}
}

func TestDecodeRejectsIncomplete(t *testing.T) {
	tests := []string{
		`{"items": [], "categories": []}`,
		`{"items": [], "locationStructure": {}}`,
		`{"categories": [], "locationStructure": {}}`,
		`{"items": null, "categories": [], "locationStructure": {}}`,
		`not json`,
		`{"items": [{"id": "", "name": "x"}], "categories": [], "locationStructure": {}}`,
	}

	for _, input := range tests {
		_, err := Decode(strings.NewReader(input))
		if !errors.Is(err, model.ErrFormat) {
			t.Errorf("Decode(%s) error = %v, want ErrFormat", input, err)
		}
	}
}
