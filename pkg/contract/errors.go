package contract

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every lookup miss in this package and its
// storage backends. It is not transient; retrying will not help.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing contract or standard clause.
type NotFoundError struct {
	// Kind is the record type, e.g. "contract" or "standard clause".
	Kind string

	// ID is the identifier that was looked up.
	ID string
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Kind, e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StorageError wraps a backend failure.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("%s storage: %s failed: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}
