package model

import "errors"

// Error kinds returned by the core. Operations wrap one of these with context,
// so callers test with errors.Is.
var (
	// ErrValidation reports bad or missing required input, such as an empty name.
	ErrValidation = errors.New("validation error")
	// ErrNotFound reports a referenced item or location node that doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a duplicate name, or a delete blocked by dependents.
	ErrConflict = errors.New("conflict")
	// ErrPersistence reports a durable storage failure. The in-memory effect of the
	// operation that returned it still stands.
	ErrPersistence = errors.New("persistence error")
	// ErrFormat reports a malformed import document or scanned location text.
	ErrFormat = errors.New("format error")
)
