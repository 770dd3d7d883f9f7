package taskstore

import (
	"errors"
	"fmt"
)

// Error types for Store operations.
var (
	// ErrNotFound is returned when a task with the given ID does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrPersist is returned when a mutation was applied in memory but could
	// not be saved.
	ErrPersist = errors.New("task changes not saved")

	// ErrInvalidSort is returned for an unknown sort field or direction.
	ErrInvalidSort = errors.New("invalid sort")
)

// NotFoundError wraps ErrNotFound with the task ID that was not found.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// PersistError wraps a failed save. The in-memory change it refers to is
// kept.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: task changes not saved: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersist, e.Err}
}

// Gateway is the persistence side of the store.
type Gateway interface {
	// GenerateID returns an identifier that has not been handed out before.
	GenerateID() string

	// SaveData persists the full collection.
	SaveData(tasks []Task) error
}
