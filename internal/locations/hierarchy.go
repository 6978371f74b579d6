// Package locations keeps the house → room → storage tree and enforces its
// structural rules. It holds no item references; callers pass a Dependents
// view of their items when an edit has to consult them.
package locations

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/erazemk/shramba/internal/model"
)

// Dependents reports which items sit at or below a hierarchy node.
type Dependents interface {
	ItemsUnder(node model.Location) []string
}

// Tree is the persisted form: house -> room -> storages (sorted).
type Tree map[string]map[string][]string

type set map[string]struct{}

// Hierarchy is the location tree.
type Hierarchy struct {
	houses map[string]map[string]set
}

// New returns an empty hierarchy.
func New() *Hierarchy {
	return &Hierarchy{houses: make(map[string]map[string]set)}
}

// FromTree builds a hierarchy from its persisted form. Empty names are dropped.
func FromTree(t Tree) *Hierarchy {
	h := New()
	for house, rooms := range t {
		if strings.TrimSpace(house) == "" {
			continue
		}
		h.houses[house] = make(map[string]set)
		for room, storages := range rooms {
			if strings.TrimSpace(room) == "" {
				continue
			}
			s := make(set)
			for _, storage := range storages {
				if strings.TrimSpace(storage) != "" {
					s[storage] = struct{}{}
				}
			}
			h.houses[house][room] = s
		}
	}
	return h
}

// Tree returns a deep copy of the hierarchy in its persisted form.
func (h *Hierarchy) Tree() Tree {
	t := make(Tree, len(h.houses))
	for house, rooms := range h.houses {
		rt := make(map[string][]string, len(rooms))
		for room, storages := range rooms {
			rt[room] = slices.Sorted(maps.Keys(storages))
		}
		t[house] = rt
	}
	return t
}

// MarshalJSON encodes the hierarchy as its Tree.
func (h *Hierarchy) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Tree())
}

// UnmarshalJSON replaces the hierarchy with the decoded Tree.
func (h *Hierarchy) UnmarshalJSON(data []byte) error {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("%w: location structure: %v", model.ErrFormat, err)
	}
	*h = *FromTree(t)
	return nil
}

// Has reports whether the node exists. The zero Location (the root) always exists.
func (h *Hierarchy) Has(node model.Location) bool {
	if !node.Valid() {
		return false
	}
	if node.House == "" {
		return true
	}
	rooms, ok := h.houses[node.House]
	if !ok {
		return false
	}
	if node.Room == "" {
		return true
	}
	storages, ok := rooms[node.Room]
	if !ok {
		return false
	}
	if node.Storage == "" {
		return true
	}
	_, ok = storages[node.Storage]
	return ok
}

// AddHouse creates a house. It reports false if the house already existed.
func (h *Hierarchy) AddHouse(name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, fmt.Errorf("%w: house name must not be empty", model.ErrValidation)
	}
	return h.Add(model.Location{House: name})
}

// AddRoom creates a room in an existing house.
func (h *Hierarchy) AddRoom(house, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, fmt.Errorf("%w: room name must not be empty", model.ErrValidation)
	}
	return h.Add(model.Location{House: house, Room: name})
}

// AddStorage creates a storage in an existing room.
func (h *Hierarchy) AddStorage(house, room, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, fmt.Errorf("%w: storage name must not be empty", model.ErrValidation)
	}
	return h.Add(model.Location{House: house, Room: room, Storage: name})
}

// Add creates the node addressed by node. Its parent must already exist,
// otherwise Add fails with ErrValidation.
// Adding an existing node is a no-op that reports false.
func (h *Hierarchy) Add(node model.Location) (bool, error) {
	if err := checkNode(node); err != nil {
		return false, err
	}
	if h.Has(node) {
		return false, nil
	}
	parent := node.Parent()
	if !h.Has(parent) {
		return false, fmt.Errorf("%w: %s %q does not exist", model.ErrValidation, parent.Level(), parent.String())
	}
	h.insert(node)
	return true, nil
}

// Ensure creates every missing node along loc. A zero loc is a no-op.
func (h *Hierarchy) Ensure(loc model.Location) error {
	if loc.IsZero() {
		return nil
	}
	if err := checkNode(loc); err != nil {
		return err
	}
	h.insert(loc)
	return nil
}

func (h *Hierarchy) insert(loc model.Location) {
	rooms, ok := h.houses[loc.House]
	if !ok {
		rooms = make(map[string]set)
		h.houses[loc.House] = rooms
	}
	if loc.Room == "" {
		return
	}
	storages, ok := rooms[loc.Room]
	if !ok {
		storages = make(set)
		rooms[loc.Room] = storages
	}
	if loc.Storage != "" {
		storages[loc.Storage] = struct{}{}
	}
}

// Rename renames the node to newName, keeping its subtree. It returns the IDs
// of the items under the old node; the caller must relocate them.
func (h *Hierarchy) Rename(node model.Location, newName string, deps Dependents) ([]string, error) {
	if err := checkNode(node); err != nil {
		return nil, err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: new name must not be empty", model.ErrValidation)
	}
	if !h.Has(node) {
		return nil, fmt.Errorf("%w: %s %q", model.ErrNotFound, node.Level(), node.String())
	}
	if newName == node.Name() {
		return nil, nil
	}
	if h.Has(withName(node, newName)) {
		return nil, fmt.Errorf("%w: %s %q already exists", model.ErrConflict, node.Level(), newName)
	}

	var ids []string
	if deps != nil {
		ids = deps.ItemsUnder(node)
	}

	switch node.Level() {
	case model.LevelHouse:
		h.houses[newName] = h.houses[node.House]
		delete(h.houses, node.House)
	case model.LevelRoom:
		rooms := h.houses[node.House]
		rooms[newName] = rooms[node.Room]
		delete(rooms, node.Room)
	case model.LevelStorage:
		storages := h.houses[node.House][node.Room]
		delete(storages, node.Storage)
		storages[newName] = struct{}{}
	}
	return ids, nil
}

// Removed is a deleted subtree, enough to put it back.
type Removed struct {
	Node model.Location `json:"node"`
	// Rooms holds the rooms and storages of a removed house.
	Rooms map[string][]string `json:"rooms,omitempty"`
	// Storages holds the storages of a removed room.
	Storages []string `json:"storages,omitempty"`
}

// Delete removes the node and its subtree. It fails with ErrConflict, leaving
// the tree unchanged, if any item sits at or below the node.
func (h *Hierarchy) Delete(node model.Location, deps Dependents) (Removed, error) {
	if err := checkNode(node); err != nil {
		return Removed{}, err
	}
	if !h.Has(node) {
		return Removed{}, fmt.Errorf("%w: %s %q", model.ErrNotFound, node.Level(), node.String())
	}
	if deps != nil {
		if ids := deps.ItemsUnder(node); len(ids) > 0 {
			return Removed{}, fmt.Errorf("%w: %s %q has %d dependent items", model.ErrConflict, node.Level(), node.String(), len(ids))
		}
	}

	removed := Removed{Node: node}
	switch node.Level() {
	case model.LevelHouse:
		removed.Rooms = h.Tree()[node.House]
		delete(h.houses, node.House)
	case model.LevelRoom:
		rooms := h.houses[node.House]
		removed.Storages = slices.Sorted(maps.Keys(rooms[node.Room]))
		delete(rooms, node.Room)
	case model.LevelStorage:
		delete(h.houses[node.House][node.Room], node.Storage)
	}
	return removed, nil
}

// Restore puts a removed subtree back, recreating missing ancestors.
func (h *Hierarchy) Restore(r Removed) error {
	if err := h.Ensure(r.Node); err != nil {
		return err
	}
	switch r.Node.Level() {
	case model.LevelHouse:
		for room, storages := range r.Rooms {
			h.insert(model.Location{House: r.Node.House, Room: room})
			for _, s := range storages {
				h.insert(model.Location{House: r.Node.House, Room: room, Storage: s})
			}
		}
	case model.LevelRoom:
		for _, s := range r.Storages {
			h.insert(model.Location{House: r.Node.House, Room: r.Node.Room, Storage: s})
		}
	}
	return nil
}

// Children yields the names directly below parent in sorted order: houses for
// the zero Location, rooms for a house, storages for a room.
func (h *Hierarchy) Children(parent model.Location) iter.Seq[string] {
	var names []string
	if h.Has(parent) {
		switch parent.Level() {
		case model.LevelNone:
			names = slices.Sorted(maps.Keys(h.houses))
		case model.LevelHouse:
			names = slices.Sorted(maps.Keys(h.houses[parent.House]))
		case model.LevelRoom:
			names = slices.Sorted(maps.Keys(h.houses[parent.House][parent.Room]))
		}
	}
	return slices.Values(names)
}

func withName(node model.Location, name string) model.Location {
	switch node.Level() {
	case model.LevelStorage:
		node.Storage = name
	case model.LevelRoom:
		node.Room = name
	default:
		node.House = name
	}
	return node
}

func checkNode(node model.Location) error {
	if node.Level() == model.LevelNone {
		return fmt.Errorf("%w: location name must not be empty", model.ErrValidation)
	}
	return node.Check()
}
