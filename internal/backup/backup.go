// Package backup encodes and decodes full-state snapshots for export and
// import.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/erazemk/shramba/internal/locations"
	"github.com/erazemk/shramba/internal/model"
)

// Document is a full-state snapshot.
type Document struct {
	Items             []model.Item   `json:"items"`
	Categories        []string       `json:"categories"`
	LocationStructure locations.Tree `json:"locationStructure"`
	ExportDate        time.Time      `json:"exportDate"`
}

// wire mirrors Document with pointers so missing fields can be told apart
// from empty ones.
type wire struct {
	Items             *[]model.Item   `json:"items"`
	Categories        *[]string       `json:"categories"`
	LocationStructure *locations.Tree `json:"locationStructure"`
	ExportDate        time.Time       `json:"exportDate"`
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc Document) error {
	if doc.Items == nil {
		doc.Items = []model.Item{}
	}
	if doc.Categories == nil {
		doc.Categories = []string{}
	}
	if doc.LocationStructure == nil {
		doc.LocationStructure = locations.Tree{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

// Decode reads a document. It fails with model.ErrFormat unless items,
// categories and locationStructure are all present.
func Decode(r io.Reader) (Document, error) {
	var w wire
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return Document{}, fmt.Errorf("%w: invalid backup format: %v", model.ErrFormat, err)
	}
	if w.Items == nil || w.Categories == nil || w.LocationStructure == nil {
		return Document{}, fmt.Errorf("%w: invalid backup format", model.ErrFormat)
	}

	doc := Document{
		Items:             *w.Items,
		Categories:        *w.Categories,
		LocationStructure: *w.LocationStructure,
		ExportDate:        w.ExportDate,
	}
	seen := make(map[string]bool, len(doc.Items))
	for i, item := range doc.Items {
		if item.ID == "" || item.Name == "" {
			return Document{}, fmt.Errorf("%w: invalid backup format: item %d has no id or name", model.ErrFormat, i)
		}
		if seen[item.ID] {
			return Document{}, fmt.Errorf("%w: invalid backup format: duplicate item id %s", model.ErrFormat, item.ID)
		}
		seen[item.ID] = true
		if err := item.Location.Check(); err != nil {
			return Document{}, fmt.Errorf("%w: invalid backup format: item %s: %v", model.ErrFormat, item.ID, err)
		}
		if item.Quantity < 0 {
			return Document{}, fmt.Errorf("%w: invalid backup format: item %s has a negative quantity", model.ErrFormat, item.ID)
		}
	}
	return doc, nil
}
