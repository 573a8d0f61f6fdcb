package database

import "errors"

var (
	// ErrNotFound is returned when a keyed record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint, e.g. enrolling a student that already has a faceprint.
	// The caller must choose update instead.
	ErrDuplicate = errors.New("record already exists")
)
