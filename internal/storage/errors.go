package storage

import (
	"errors"
	"fmt"
)

// =============================================================================
// Sentinel Errors
// =============================================================================

var (
	// ErrNotFound is returned when a requested object doesn't exist.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidKey is returned for empty keys and path traversal
	// attempts like "../".
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrTooLarge is returned when a photo exceeds the upload size cap.
	ErrTooLarge = errors.New("object exceeds maximum size")

	// ErrAccessDenied is returned when the storage provider refuses the
	// operation (bucket permissions, ACL restrictions).
	ErrAccessDenied = errors.New("access denied")
)

// =============================================================================
// Structured Error Type
// =============================================================================

// StorageError wraps a storage operation failure with the operation and
// key involved. It unwraps to the underlying sentinel for errors.Is.
type StorageError struct {
	Op  string // "Put", "URL"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsTooLarge reports whether the error means the upload blew the size
// cap, so the handler can answer 400 instead of 500.
func IsTooLarge(err error) bool {
	return errors.Is(err, ErrTooLarge)
}
