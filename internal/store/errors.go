package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by backends for absent records and by tables
	// that have no default for the key.
	ErrNotFound = errors.New("record not found")

	// ErrPersistence marks a failed load or save. The in-memory state is still
	// authoritative and the save is retried later.
	ErrPersistence = errors.New("persistence failure")
)

type PersistenceError struct {
	Table string
	Key   string
	Op    string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Table, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
