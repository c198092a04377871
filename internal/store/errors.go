package store

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks commands rejected before mutating state.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks lookups and mutations on unknown entities.
	ErrNotFound = errors.New("not found")

	// ErrPersistenceWrite marks a failed durable write. The in-memory state
	// stays authoritative; the next successful write recovers durability.
	ErrPersistenceWrite = errors.New("persistence write failed")
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
