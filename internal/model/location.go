package model

import (
	"fmt"
	"strings"
)

// Level identifies a position in the house → room → storage hierarchy.
type Level int

// Hierarchy levels.
const (
	LevelNone Level = iota
	LevelHouse
	LevelRoom
	LevelStorage
)

func (l Level) String() string {
	switch l {
	case LevelHouse:
		return "house"
	case LevelRoom:
		return "room"
	case LevelStorage:
		return "storage"
	default:
		return "none"
	}
}

// PathSeparator joins location parts in scanned QR payloads and display strings.
const PathSeparator = " > "

// Location places an item in the hierarchy. Every field is optional, but a room
// only makes sense under a house and a storage under a room.
//
// A Location also addresses a hierarchy node: its level is the deepest
// non-empty field and the shallower fields are the node's ancestors.
type Location struct {
	House   string `json:"house,omitempty"`
	Room    string `json:"room,omitempty"`
	Storage string `json:"storage,omitempty"`
}

// Level returns the deepest level set in l.
func (l Location) Level() Level {
	switch {
	case l.Storage != "":
		return LevelStorage
	case l.Room != "":
		return LevelRoom
	case l.House != "":
		return LevelHouse
	default:
		return LevelNone
	}
}

// IsZero reports whether no field is set.
func (l Location) IsZero() bool {
	return l == Location{}
}

// Valid reports whether l has no gaps, i.e. a storage has a room and a room has
// a house.
func (l Location) Valid() bool {
	if l.Storage != "" && l.Room == "" {
		return false
	}
	if l.Room != "" && l.House == "" {
		return false
	}
	return true
}

// Check reports a gap or a whitespace-only part in l as model.ErrValidation.
func (l Location) Check() error {
	if !l.Valid() {
		return fmt.Errorf("%w: location %q is missing a parent", ErrValidation, l.String())
	}
	for _, part := range []string{l.House, l.Room, l.Storage} {
		if part != "" && strings.TrimSpace(part) == "" {
			return fmt.Errorf("%w: location name must not be blank", ErrValidation)
		}
	}
	return nil
}

// Name returns the name of the node l addresses.
func (l Location) Name() string {
	switch l.Level() {
	case LevelStorage:
		return l.Storage
	case LevelRoom:
		return l.Room
	default:
		return l.House
	}
}

// Parent returns the node directly above l.
func (l Location) Parent() Location {
	switch l.Level() {
	case LevelStorage:
		return Location{House: l.House, Room: l.Room}
	case LevelRoom:
		return Location{House: l.House}
	default:
		return Location{}
	}
}

// Contains reports whether other lies at or below the node l addresses. The
// zero Location contains everything.
func (l Location) Contains(other Location) bool {
	if l.House != "" && other.House != l.House {
		return false
	}
	if l.Room != "" && other.Room != l.Room {
		return false
	}
	if l.Storage != "" && other.Storage != l.Storage {
		return false
	}
	return true
}

// Key is the concatenation used when sorting by location.
func (l Location) Key() string {
	return l.House + l.Room + l.Storage
}

func (l Location) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.House, l.Room, l.Storage} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, PathSeparator)
}
