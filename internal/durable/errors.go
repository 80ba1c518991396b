package durable

import (
	"errors"
	"fmt"
)

// Common store errors used across all backends.
var (
	// ErrNotFound is returned by Read when no snapshot exists under the key.
	ErrNotFound = errors.New("snapshot not found")

	// ErrQuotaExceeded is returned when a payload exceeds the capacity of the
	// backing medium.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrUnavailable is returned when the backing medium cannot be reached.
	ErrUnavailable = errors.New("storage unavailable")
)

// Operation names reported in StoreError.
const (
	OpRead  = "read"
	OpWrite = "write"
	OpErase = "erase"
)

// StoreError carries the key and operation of a failed store call.
type StoreError struct {
	Op  string // read, write or erase
	Key string
	Err error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %q failed: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a StoreError for the given operation and key.
func NewStoreError(op, key string, err error) *StoreError {
	return &StoreError{Op: op, Key: key, Err: err}
}

// IsNotFound reports whether err means the snapshot is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
