// Package pantry is the application service. It owns the in-memory state,
// serialises every operation and saves after each successful mutation.
//
// A mutation whose save fails still takes effect; the returned error wraps
// model.ErrPersistence so the caller can warn that it may not survive a
// restart.
package pantry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/shramba/internal/backup"
	"github.com/erazemk/shramba/internal/category"
	"github.com/erazemk/shramba/internal/expiry"
	"github.com/erazemk/shramba/internal/items"
	"github.com/erazemk/shramba/internal/locations"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/query"
	"github.com/erazemk/shramba/internal/scan"
	"github.com/erazemk/shramba/internal/store"
	"github.com/erazemk/shramba/internal/undo"
)

// Persister saves and loads the durable state.
type Persister interface {
	Save(ctx context.Context, s store.State) error
	Load(ctx context.Context) (store.State, bool, error)
}

// Option configures a Pantry.
type Option func(*Pantry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pantry) { p.log = l }
}

// WithClock sets the time source for timestamps and expiry status.
func WithClock(now func() time.Time) Option {
	return func(p *Pantry) { p.now = now }
}

// WithIDs sets the item ID generator.
func WithIDs(newID func() string) Option {
	return func(p *Pantry) { p.newID = newID }
}

// WithThreshold sets the "expiring soon" window in days.
func WithThreshold(days int) Option {
	return func(p *Pantry) { p.thresholdDays = days }
}

// WithMergeOnAdd controls whether adding a matching item merges quantities.
func WithMergeOnAdd(merge bool) Option {
	return func(p *Pantry) { p.mergeOnAdd = merge }
}

// Pantry is the household inventory.
type Pantry struct {
	mu      sync.Mutex
	log     *slog.Logger
	persist Persister
	now     func() time.Time
	newID   func() string

	thresholdDays int
	mergeOnAdd    bool

	items      *items.Repository
	locations  *locations.Hierarchy
	categories *category.Set
	undo       undo.Log
}

// New returns an empty pantry with the default categories. Call Load to
// restore saved state.
func New(persist Persister, opts ...Option) *Pantry {
	p := &Pantry{
		log:           slog.New(slog.DiscardHandler),
		persist:       persist,
		now:           time.Now,
		thresholdDays: expiry.DefaultThresholdDays,
		mergeOnAdd:    true,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.reset(nil, nil, nil)
	return p
}

func (p *Pantry) reset(list []model.Item, cats []string, tree locations.Tree) {
	repoOpts := []items.Option{items.WithClock(p.now)}
	if p.newID != nil {
		repoOpts = append(repoOpts, items.WithIDs(p.newID))
	}
	p.items = items.New(repoOpts...)
	p.items.Replace(list)

	if cats == nil {
		p.categories = category.Defaults()
	} else {
		p.categories = category.New(cats...)
	}
	p.locations = locations.FromTree(tree)
	p.undo.Clear()
	p.sync()
}

// sync adds every category and location referenced by an item.
func (p *Pantry) sync() {
	for _, c := range p.items.Categories() {
		if p.categories.Ensure(c) {
			p.log.Debug("category synced from items", "category", c)
		}
	}
	for _, item := range p.items.All() {
		if err := p.locations.Ensure(item.Location); err != nil {
			p.log.Warn("item has invalid location", "id", item.ID, "location", item.Location.String(), "error", err)
		}
	}
}

// Load replaces the in-memory state with the saved one. With nothing saved
// the pantry starts empty with the default categories.
func (p *Pantry) Load(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, found, err := p.persist.Load(ctx)
	if err != nil {
		if errors.Is(err, model.ErrFormat) {
			return err
		}
		return fmt.Errorf("%w: loading state: %v", model.ErrPersistence, err)
	}
	if !found {
		p.log.Debug("no saved state, starting empty")
		p.reset(nil, nil, nil)
		return nil
	}

	p.reset(s.Items, s.Categories, s.Locations)
	if len(s.Undo) > 0 {
		r, err := undo.Unmarshal(s.Undo)
		if err != nil {
			p.log.Warn("dropping unreadable undo record", "error", err)
		} else if r != nil {
			p.undo.Push(r)
		}
	}
	p.log.Debug("state loaded", "items", p.items.Len(), "categories", len(p.categories.List()))
	return nil
}

// save persists the current state. Callers hold p.mu.
func (p *Pantry) save(ctx context.Context) error {
	s := store.State{
		Items:      p.items.All(),
		Categories: p.categories.List(),
		Locations:  p.locations.Tree(),
	}
	if r, ok := p.undo.Pending(); ok {
		data, err := undo.Marshal(r)
		if err != nil {
			p.log.Warn("not saving undo record", "error", err)
		} else {
			s.Undo = data
		}
	}

	if err := p.persist.Save(ctx, s); err != nil {
		p.log.Warn("saving state failed", "error", err)
		return fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}
	return nil
}

func (p *Pantry) undoState() undo.State {
	return undo.State{Items: p.items, Locations: p.locations, Categories: p.categories}
}

// Items returns every item in insertion order.
func (p *Pantry) Items() []model.Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items.All()
}

// Item returns one item.
func (p *Pantry) Item(id string) (model.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items.Get(id)
}

// Query returns the filtered and sorted view. A zero threshold in opts uses
// the pantry's.
func (p *Pantry) Query(opts query.Options) []query.View {
	p.mu.Lock()
	defer p.mu.Unlock()
	if opts.ThresholdDays <= 0 {
		opts.ThresholdDays = p.thresholdDays
	}
	return query.Run(p.items.All(), opts, p.now())
}

// ThresholdDays returns the "expiring soon" window.
func (p *Pantry) ThresholdDays() int {
	return p.thresholdDays
}

// AddItem adds an item, creating its location and category if needed.
func (p *Pantry) AddItem(ctx context.Context, d items.Draft) (items.AddResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	res, err := p.items.Add(d, p.mergeOnAdd)
	if err != nil {
		return items.AddResult{}, err
	}
	if err := p.locations.Ensure(res.Item.Location); err != nil {
		return res, err
	}
	p.categories.Ensure(res.Item.Category)
	p.undo.Clear()

	if res.Merged {
		p.log.Info("item merged", "id", res.Item.ID, "name", res.Item.Name, "quantity", res.Item.Quantity)
	} else {
		p.log.Info("item added", "id", res.Item.ID, "name", res.Item.Name)
	}
	return res, p.save(ctx)
}

// UpdateItem applies a patch.
func (p *Pantry) UpdateItem(ctx context.Context, id string, patch items.Patch) (model.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	item, err := p.items.Update(id, patch)
	if err != nil {
		return model.Item{}, err
	}
	if err := p.locations.Ensure(item.Location); err != nil {
		return item, err
	}
	p.categories.Ensure(item.Category)
	p.undo.Clear()

	p.log.Info("item updated", "id", item.ID, "name", item.Name)
	return item, p.save(ctx)
}

// DeleteItem removes an item. The delete can be undone.
func (p *Pantry) DeleteItem(ctx context.Context, id string) (model.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	item, index, err := p.items.Delete(id)
	if err != nil {
		return model.Item{}, err
	}
	p.undo.Push(undo.ItemDeleted{Item: item, Index: index})

	p.log.Info("item deleted", "id", item.ID, "name", item.Name)
	return item, p.save(ctx)
}

// AdjustQuantity adds delta to an item's quantity, never going below 0. A
// change can be undone; a decrement at 0 changes nothing and records nothing.
func (p *Pantry) AdjustQuantity(ctx context.Context, id string, delta int) (model.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	previous, changed, err := p.items.AdjustQuantity(id, delta)
	if err != nil {
		return model.Item{}, err
	}
	item, err := p.items.Get(id)
	if err != nil {
		return model.Item{}, err
	}
	if !changed {
		p.log.Debug("quantity unchanged", "id", id, "quantity", item.Quantity)
		return item, nil
	}
	p.undo.Push(undo.QuantityChanged{ItemID: id, Name: item.Name, Previous: previous})

	p.log.Info("quantity changed", "id", id, "from", previous, "to", item.Quantity)
	return item, p.save(ctx)
}

// PendingUndo returns the action Undo would reverse.
func (p *Pantry) PendingUndo() (undo.Record, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.undo.Pending()
}

// Undo reverses the last undoable action. It reports false when there is
// nothing to undo.
func (p *Pantry) Undo(ctx context.Context) (undo.Record, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok, err := p.undo.Undo(p.undoState())
	if !ok {
		return nil, false, nil
	}
	if err != nil {
		p.log.Warn("undo failed", "kind", r.Kind(), "error", err)
		if serr := p.save(ctx); serr != nil {
			return r, true, errors.Join(err, serr)
		}
		return r, true, err
	}

	p.log.Info("undone", "kind", r.Kind(), "action", r.Describe())
	return r, true, p.save(ctx)
}

// Children returns the sorted names directly below parent.
func (p *Pantry) Children(parent model.Location) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Collect(p.locations.Children(parent))
}

// Locations returns the hierarchy in its persisted form.
func (p *Pantry) Locations() locations.Tree {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locations.Tree()
}

// AddLocation creates a house, room or storage. Its parent must exist.
// Adding an existing node reports false and saves nothing.
func (p *Pantry) AddLocation(ctx context.Context, node model.Location) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	added, err := p.locations.Add(node)
	if err != nil || !added {
		return false, err
	}
	p.undo.Clear()

	p.log.Info("location added", "level", node.Level(), "location", node.String())
	return true, p.save(ctx)
}

// RenameLocation renames a node and moves every item under it along. It
// returns the IDs of the moved items.
func (p *Pantry) RenameLocation(ctx context.Context, node model.Location, newName string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	newName = strings.TrimSpace(newName)
	if _, err := p.locations.Rename(node, newName, p.items); err != nil {
		return nil, err
	}
	if node.Name() == newName {
		return nil, nil
	}
	ids := p.items.RelocateNode(node, newName)
	p.undo.Clear()

	p.log.Info("location renamed", "level", node.Level(), "from", node.String(), "to", newName, "items", len(ids))
	return ids, p.save(ctx)
}

// DeleteLocation removes a node and its subtree. It fails with
// model.ErrConflict while any item sits at or below the node. The delete can
// be undone.
func (p *Pantry) DeleteLocation(ctx context.Context, node model.Location) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed, err := p.locations.Delete(node, p.items)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			p.log.Warn("location delete blocked", "location", node.String(), "error", err)
		}
		return err
	}
	p.undo.Push(undo.LocationDeleted{Removed: removed})

	p.log.Info("location deleted", "level", node.Level(), "location", node.String())
	return p.save(ctx)
}

// Categories returns the known categories in order.
func (p *Pantry) Categories() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.categories.List()
}

// AddCategory adds a new category.
func (p *Pantry) AddCategory(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.categories.Add(name); err != nil {
		return err
	}
	p.undo.Clear()

	p.log.Info("category added", "category", name)
	return p.save(ctx)
}

// RenameCategory renames a category and every item in it. The rename can be
// undone.
func (p *Pantry) RenameCategory(ctx context.Context, oldName, newName string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	newName = strings.TrimSpace(newName)
	if err := p.categories.Rename(oldName, newName); err != nil {
		return nil, err
	}
	if oldName == newName {
		return nil, nil
	}
	ids := p.items.ReassignCategory(oldName, newName)
	p.undo.Push(undo.CategoryRenamed{Old: oldName, New: newName, ItemIDs: ids})

	p.log.Info("category renamed", "from", oldName, "to", newName, "items", len(ids))
	return ids, p.save(ctx)
}

// DeleteCategory deletes a category, moving its items to
// model.Uncategorized. The delete can be undone.
func (p *Pantry) DeleteCategory(ctx context.Context, name string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	index, err := p.categories.Remove(name)
	if err != nil {
		return nil, err
	}
	ids := p.items.ClearCategory(name)
	p.undo.Push(undo.CategoryDeleted{Name: name, Index: index, ItemIDs: ids})

	p.log.Info("category deleted", "category", name, "items", len(ids))
	return ids, p.save(ctx)
}

// ScanResult is a classified scan together with what it refers to.
type ScanResult struct {
	scan.Result
	// Known reports whether a scanned location exists in the hierarchy.
	Known bool
	// Matches are the items carrying a scanned barcode.
	Matches []model.Item
}

// Scan classifies scanned text. It never changes state.
func (p *Pantry) Scan(text string, mode scan.Mode) (ScanResult, error) {
	res, err := scan.Classify(text, mode)
	if err != nil {
		return ScanResult{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	out := ScanResult{Result: res}
	switch res.Kind {
	case scan.KindLocation:
		out.Known = p.locations.Has(res.Location)
	case scan.KindBarcode:
		for _, item := range p.items.All() {
			if item.Barcode == res.Barcode {
				out.Matches = append(out.Matches, item)
			}
		}
	}
	p.log.Debug("scan classified", "kind", res.Kind, "known", out.Known, "matches", len(out.Matches))
	return out, nil
}

// Export writes a full-state snapshot.
func (p *Pantry) Export(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc := backup.Document{
		Items:             p.items.All(),
		Categories:        p.categories.List(),
		LocationStructure: p.locations.Tree(),
		ExportDate:        p.now().UTC(),
	}
	if err := backup.Encode(w, doc); err != nil {
		return err
	}
	p.log.Info("exported", "items", len(doc.Items))
	return nil
}

// Import replaces the whole state with a snapshot. A malformed snapshot
// changes nothing.
func (p *Pantry) Import(ctx context.Context, r io.Reader) error {
	doc, err := backup.Decode(r)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.reset(doc.Items, doc.Categories, doc.LocationStructure)
	p.log.Info("imported", "items", len(doc.Items), "exported", doc.ExportDate)
	return p.save(ctx)
}
