package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the resolution engine. Handlers map these to
// HTTP status codes; nothing inside the engine retries on them.
var (
	// ErrInvalidInput - a required field was missing or empty
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - the request ID does not reference any stored request
	ErrNotFound = errors.New("help request not found")

	// ErrAlreadyClosed - resolve attempted on a request that already left Pending
	ErrAlreadyClosed = errors.New("help request is already closed")
)

// StorageError wraps a backing-store failure that must surface to the caller,
// such as a failed insert when escalating a question. Matcher-side lookup
// failures are never wrapped in this - the engine swallows those and escalates.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError wraps err with the failing operation name.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Cause: err}
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
