package store

import "errors"

var (
	// ErrNotFound is returned when the named file does not exist in the store.
	ErrNotFound = errors.New("store: file not found")

	// ErrInvalidName is returned when a filename sanitizes to nothing.
	ErrInvalidName = errors.New("store: invalid filename")
)
