// Package items is the item repository: CRUD over the inventory rows in
// insertion order. Filtering and sorting live in the query package.
package items

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/shramba/internal/model"
)

// Draft is the input for a new item.
type Draft struct {
	Barcode  string
	Name     string
	Category string
	// Quantity defaults to 1 when zero.
	Quantity int
	Expiry   model.Date
	Opened   *model.Opened
	Location model.Location
}

// Patch is a partial update. Nil fields are left alone.
type Patch struct {
	Name     *string
	Barcode  *string
	Category *string
	Quantity *int
	// Expiry set to the zero Date clears the printed expiry.
	Expiry   *model.Date
	Location *model.Location

	// Opened switches the opened state. OpenedDate and ShelfLifeMonths only
	// apply to an item that is opened once the patch is applied.
	Opened          *bool
	OpenedDate      *model.Date
	ShelfLifeMonths *int
}

// AddResult tells which branch Add took.
type AddResult struct {
	Item   model.Item
	Merged bool
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDs sets the ID generator.
func WithIDs(newID func() string) Option {
	return func(r *Repository) { r.newID = newID }
}

// Repository holds the items.
type Repository struct {
	items []model.Item
	now   func() time.Time
	newID func() string
}

// New returns an empty repository. IDs are random UUIDs unless WithIDs is given.
func New(opts ...Option) *Repository {
	r := &Repository{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Len returns the number of items.
func (r *Repository) Len() int {
	return len(r.items)
}

// All returns copies of every item in insertion order.
func (r *Repository) All() []model.Item {
	out := make([]model.Item, len(r.items))
	for i, item := range r.items {
		out[i] = item.Clone()
	}
	return out
}

// Replace discards every item and loads items instead.
func (r *Repository) Replace(items []model.Item) {
	r.items = make([]model.Item, len(items))
	for i, item := range items {
		r.items[i] = item.Clone()
	}
}

// Get returns the item with the given ID.
func (r *Repository) Get(id string) (model.Item, error) {
	i := r.index(id)
	if i < 0 {
		return model.Item{}, notFound(id)
	}
	return r.items[i].Clone(), nil
}

// Add inserts a new item. With merge set, a draft matching an existing row
// (same barcode, or same name when neither has a barcode, and the same
// location) increases that row's quantity instead.
func (r *Repository) Add(d Draft, merge bool) (AddResult, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return AddResult{}, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if d.Quantity < 0 {
		return AddResult{}, fmt.Errorf("%w: quantity must not be negative", model.ErrValidation)
	}
	if err := d.Location.Check(); err != nil {
		return AddResult{}, err
	}

	quantity := d.Quantity
	if quantity == 0 {
		quantity = 1
	}
	barcode := strings.TrimSpace(d.Barcode)
	now := r.now()

	if merge {
		for i := range r.items {
			existing := &r.items[i]
			if existing.Location != d.Location {
				continue
			}
			if (barcode != "" && existing.Barcode == barcode) ||
				(barcode == "" && existing.Barcode == "" && existing.Name == name) {
				existing.Quantity += quantity
				existing.UpdatedAt = now
				return AddResult{Item: existing.Clone(), Merged: true}, nil
			}
		}
	}

	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = model.Uncategorized
	}

	item := model.Item{
		ID:        r.uniqueID(),
		Barcode:   barcode,
		Name:      name,
		Category:  category,
		Quantity:  quantity,
		Expiry:    d.Expiry,
		Location:  d.Location,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if d.Opened != nil {
		o := *d.Opened
		if o.Date.IsZero() {
			o.Date = model.DateOf(now)
		}
		item.Opened = &o
	}
	r.items = append(r.items, item)
	return AddResult{Item: item.Clone()}, nil
}

// Update applies a patch and returns the updated item.
func (r *Repository) Update(id string, p Patch) (model.Item, error) {
	i := r.index(id)
	if i < 0 {
		return model.Item{}, notFound(id)
	}
	item := r.items[i].Clone()

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return model.Item{}, fmt.Errorf("%w: name is required", model.ErrValidation)
		}
		item.Name = name
	}
	if p.Barcode != nil {
		item.Barcode = strings.TrimSpace(*p.Barcode)
	}
	if p.Category != nil {
		item.Category = strings.TrimSpace(*p.Category)
		if item.Category == "" {
			item.Category = model.Uncategorized
		}
	}
	if p.Quantity != nil {
		if *p.Quantity < 0 {
			return model.Item{}, fmt.Errorf("%w: quantity must not be negative", model.ErrValidation)
		}
		item.Quantity = *p.Quantity
	}
	if p.Expiry != nil {
		item.Expiry = *p.Expiry
	}
	if p.Location != nil {
		if err := p.Location.Check(); err != nil {
			return model.Item{}, err
		}
		item.Location = *p.Location
	}

	now := r.now()
	if p.Opened != nil {
		switch {
		case !*p.Opened:
			item.Opened = nil
		case item.Opened == nil:
			item.Opened = &model.Opened{Date: model.DateOf(now)}
		}
	}
	if item.Opened != nil {
		if p.OpenedDate != nil && !p.OpenedDate.IsZero() {
			item.Opened.Date = *p.OpenedDate
		}
		if p.ShelfLifeMonths != nil {
			if *p.ShelfLifeMonths < 0 {
				return model.Item{}, fmt.Errorf("%w: shelf life must not be negative", model.ErrValidation)
			}
			item.Opened.ShelfLifeMonths = *p.ShelfLifeMonths
		}
	}

	item.UpdatedAt = now
	r.items[i] = item
	return item.Clone(), nil
}

// Delete removes an item, returning it and the position it held.
func (r *Repository) Delete(id string) (model.Item, int, error) {
	i := r.index(id)
	if i < 0 {
		return model.Item{}, -1, notFound(id)
	}
	item := r.items[i]
	r.items = slices.Delete(r.items, i, i+1)
	return item, i, nil
}

// Insert puts a previously deleted item back at index (clamped).
func (r *Repository) Insert(item model.Item, index int) error {
	if r.index(item.ID) >= 0 {
		return fmt.Errorf("%w: item %s already exists", model.ErrConflict, item.ID)
	}
	index = max(0, min(index, len(r.items)))
	r.items = slices.Insert(r.items, index, item.Clone())
	return nil
}

// AdjustQuantity adds delta to the item's quantity, flooring at 0. It returns
// the quantity before the change and whether anything changed; decrementing
// an item already at 0 changes nothing.
func (r *Repository) AdjustQuantity(id string, delta int) (previous int, changed bool, err error) {
	i := r.index(id)
	if i < 0 {
		return 0, false, notFound(id)
	}
	previous = r.items[i].Quantity
	next := max(0, previous+delta)
	if next == previous {
		return previous, false, nil
	}
	r.items[i].Quantity = next
	r.items[i].UpdatedAt = r.now()
	return previous, true, nil
}

// SetQuantity overwrites an item's quantity.
func (r *Repository) SetQuantity(id string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", model.ErrValidation)
	}
	i := r.index(id)
	if i < 0 {
		return notFound(id)
	}
	r.items[i].Quantity = quantity
	r.items[i].UpdatedAt = r.now()
	return nil
}

// ReassignCategory moves every item in category oldName to newName and
// returns the affected IDs.
func (r *Repository) ReassignCategory(oldName, newName string) []string {
	var ids []string
	now := r.now()
	for i := range r.items {
		if r.items[i].Category == oldName {
			r.items[i].Category = newName
			r.items[i].UpdatedAt = now
			ids = append(ids, r.items[i].ID)
		}
	}
	return ids
}

// ClearCategory moves the items of a category to model.Uncategorized.
func (r *Repository) ClearCategory(name string) []string {
	return r.ReassignCategory(name, model.Uncategorized)
}

// SetCategory sets the category of the given items. Unknown IDs are skipped.
func (r *Repository) SetCategory(ids []string, name string) {
	now := r.now()
	for _, id := range ids {
		if i := r.index(id); i >= 0 {
			r.items[i].Category = name
			r.items[i].UpdatedAt = now
		}
	}
}

// Categories returns the distinct categories referenced by items, in order of
// first appearance.
func (r *Repository) Categories() []string {
	var names []string
	for _, item := range r.items {
		if item.Category != "" && !slices.Contains(names, item.Category) {
			names = append(names, item.Category)
		}
	}
	return names
}

// ItemsUnder returns the IDs of items at or below a hierarchy node.
func (r *Repository) ItemsUnder(node model.Location) []string {
	if node.IsZero() {
		return nil
	}
	var ids []string
	for _, item := range r.items {
		if node.Contains(item.Location) {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// RelocateNode renames the node's component in every item under it, keeping
// the item at the same position in the hierarchy. It returns the affected IDs.
func (r *Repository) RelocateNode(node model.Location, newName string) []string {
	var ids []string
	if node.IsZero() {
		return nil
	}
	now := r.now()
	for i := range r.items {
		item := &r.items[i]
		if !node.Contains(item.Location) {
			continue
		}
		switch node.Level() {
		case model.LevelHouse:
			item.Location.House = newName
		case model.LevelRoom:
			item.Location.Room = newName
		case model.LevelStorage:
			item.Location.Storage = newName
		}
		item.UpdatedAt = now
		ids = append(ids, item.ID)
	}
	return ids
}

func (r *Repository) index(id string) int {
	return slices.IndexFunc(r.items, func(item model.Item) bool { return item.ID == id })
}

func (r *Repository) uniqueID() string {
	id := r.newID()
	for r.index(id) >= 0 {
		id = r.newID()
	}
	return id
}

func notFound(id string) error {
	return fmt.Errorf("%w: item %s", model.ErrNotFound, id)
}
