// Package category maintains the ordered set of known item categories.
package category

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erazemk/shramba/internal/model"
)

// Set is an insertion-ordered set of unique category names. The
// model.Uncategorized sentinel is always a member.
type Set struct {
	names []string
}

// New returns a set holding names (duplicates and blanks dropped) plus the
// sentinel.
func New(names ...string) *Set {
	s := &Set{}
	for _, n := range names {
		s.Ensure(n)
	}
	s.Ensure(model.Uncategorized)
	return s
}

// Defaults returns the set a fresh inventory starts with.
func Defaults() *Set {
	return New(model.DefaultCategories...)
}

// Has reports whether name is a member.
func (s *Set) Has(name string) bool {
	return slices.Contains(s.names, name)
}

// List returns the members in insertion order.
func (s *Set) List() []string {
	return slices.Clone(s.names)
}

// Ensure adds name if it is missing and reports whether it did. Blank names
// are ignored.
func (s *Set) Ensure(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || s.Has(name) {
		return false
	}
	s.names = append(s.names, name)
	return true
}

// Add adds a new category. Unlike Ensure it rejects blanks and duplicates.
func (s *Set) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name must not be empty", model.ErrValidation)
	}
	if s.Has(name) {
		return fmt.Errorf("%w: category %q already exists", model.ErrConflict, name)
	}
	s.names = append(s.names, name)
	return nil
}

// Rename renames a category in place, keeping its position.
func (s *Set) Rename(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("%w: category name must not be empty", model.ErrValidation)
	}
	if oldName == model.Uncategorized {
		return fmt.Errorf("%w: %q cannot be renamed", model.ErrValidation, model.Uncategorized)
	}
	i := slices.Index(s.names, oldName)
	if i < 0 {
		return fmt.Errorf("%w: category %q", model.ErrNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if s.Has(newName) {
		return fmt.Errorf("%w: category %q already exists", model.ErrConflict, newName)
	}
	s.names[i] = newName
	return nil
}

// Remove deletes a category and returns its former position.
func (s *Set) Remove(name string) (int, error) {
	if name == model.Uncategorized {
		return -1, fmt.Errorf("%w: %q cannot be deleted", model.ErrValidation, model.Uncategorized)
	}
	i := slices.Index(s.names, name)
	if i < 0 {
		return -1, fmt.Errorf("%w: category %q", model.ErrNotFound, name)
	}
	s.names = slices.Delete(s.names, i, i+1)
	return i, nil
}

// Insert puts name back at index (clamped to the list bounds).
func (s *Set) Insert(name string, index int) {
	if s.Has(name) {
		return
	}
	index = max(0, min(index, len(s.names)))
	s.names = slices.Insert(s.names, index, name)
}
