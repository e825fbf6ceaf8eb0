package storage

import "errors"

var (
	// ErrNotFound indicates a key is not in the store, or is reserved.
	ErrNotFound = errors.New("not found")

	// ErrExists indicates an insert hit a key that is already taken.
	ErrExists = errors.New("already exists")

	// ErrReservedKey is returned when writing a post under a reserved key.
	ErrReservedKey = errors.New("reserved key")
)
