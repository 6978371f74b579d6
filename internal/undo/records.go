// Package undo holds the single pending undo record and the inverse of every
// undoable action.
package undo

import (
	"fmt"

	"github.com/erazemk/shramba/internal/category"
	"github.com/erazemk/shramba/internal/items"
	"github.com/erazemk/shramba/internal/locations"
	"github.com/erazemk/shramba/internal/model"
)

// Kind tags a record.
type Kind string

// Record kinds.
const (
	KindQuantity       Kind = "quantity"
	KindCategoryRename Kind = "category-rename"
	KindCategoryDelete Kind = "category-delete"
	KindLocationDelete Kind = "location-delete"
	KindItemDelete     Kind = "item-delete"
)

// State is what an inverse operates on.
type State struct {
	Items      *items.Repository
	Locations  *locations.Hierarchy
	Categories *category.Set
}

// Record describes how to reverse one action. The set of records is closed:
// only this package can implement it.
type Record interface {
	Kind() Kind
	// Describe is a short human readable summary of what undo will do.
	Describe() string
	revert(State) error
}

// QuantityChanged reverses AdjustQuantity.
type QuantityChanged struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Previous int    `json:"previous"`
}

func (QuantityChanged) Kind() Kind { return KindQuantity }

func (r QuantityChanged) Describe() string {
	return fmt.Sprintf("restore quantity of %q to %d", r.Name, r.Previous)
}

func (r QuantityChanged) revert(s State) error {
	return s.Items.SetQuantity(r.ItemID, r.Previous)
}

// CategoryRenamed reverses a category rename.
type CategoryRenamed struct {
	Old     string   `json:"old"`
	New     string   `json:"new"`
	ItemIDs []string `json:"itemIds,omitempty"`
}

func (CategoryRenamed) Kind() Kind { return KindCategoryRename }

func (r CategoryRenamed) Describe() string {
	return fmt.Sprintf("rename category %q back to %q", r.New, r.Old)
}

func (r CategoryRenamed) revert(s State) error {
	if err := s.Categories.Rename(r.New, r.Old); err != nil {
		return fmt.Errorf("reverting category rename: %w", err)
	}
	s.Items.SetCategory(r.ItemIDs, r.Old)
	return nil
}

// CategoryDeleted reverses a category delete, moving the items that were
// sent to model.Uncategorized back.
type CategoryDeleted struct {
	Name    string   `json:"name"`
	Index   int      `json:"index"`
	ItemIDs []string `json:"itemIds,omitempty"`
}

func (CategoryDeleted) Kind() Kind { return KindCategoryDelete }

func (r CategoryDeleted) Describe() string {
	return fmt.Sprintf("restore category %q (%d items)", r.Name, len(r.ItemIDs))
}

func (r CategoryDeleted) revert(s State) error {
	s.Categories.Insert(r.Name, r.Index)
	s.Items.SetCategory(r.ItemIDs, r.Name)
	return nil
}

// LocationDeleted reverses a hierarchy node delete.
type LocationDeleted struct {
	Removed locations.Removed `json:"removed"`
}

func (LocationDeleted) Kind() Kind { return KindLocationDelete }

func (r LocationDeleted) Describe() string {
	return fmt.Sprintf("restore %s %q", r.Removed.Node.Level(), r.Removed.Node.String())
}

func (r LocationDeleted) revert(s State) error {
	return s.Locations.Restore(r.Removed)
}

// ItemDeleted reverses an item delete.
type ItemDeleted struct {
	Item  model.Item `json:"item"`
	Index int        `json:"index"`
}

func (ItemDeleted) Kind() Kind { return KindItemDelete }

func (r ItemDeleted) Describe() string {
	return fmt.Sprintf("restore item %q", r.Item.Name)
}

func (r ItemDeleted) revert(s State) error {
	if err := s.Items.Insert(r.Item, r.Index); err != nil {
		return fmt.Errorf("reverting item delete: %w", err)
	}
	s.Categories.Ensure(r.Item.Category)
	return s.Locations.Ensure(r.Item.Location)
}
