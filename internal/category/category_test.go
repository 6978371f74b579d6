package category

import (
	"errors"
	"reflect"
	"testing"

	"github.com/erazemk/shramba/internal/model"
)

func TestNewAlwaysHasSentinel(t *testing.T) {
	s := New("Food", "Food", " ")
	want := []string{"Food", model.Uncategorized}
	if got := s.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestAddRenameRemove(t *testing.T) {
	s := Defaults()

	if err := s.Add("Snacks"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("Snacks"); !errors.Is(err, model.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if err := s.Add(""); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	if err := s.Rename("Snacks", "Treats"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if s.Has("Snacks") || !s.Has("Treats") {
		t.Error("expected Snacks renamed to Treats")
	}
	if err := s.Rename("Missing", "X"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Rename("Treats", "Food"); !errors.Is(err, model.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	i, err := s.Remove("Food")
	if err != nil || i != 0 {
		t.Fatalf("Remove = %d, %v", i, err)
	}
	s.Insert("Food", i)
	if got := s.List()[0]; got != "Food" {
		t.Errorf("expected Food back at index 0, got %q", got)
	}
}

func TestSentinelProtected(t *testing.T) {
	s := Defaults()
	if _, err := s.Remove(model.Uncategorized); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if err := s.Rename(model.Uncategorized, "Misc"); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
