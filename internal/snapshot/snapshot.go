// Package snapshot provides access to the latest camera snapshot for each
// zone. The executor fetches a zone's snapshot by key before sending it to
// the vision model.
//
// Implementations:
//   - Local: reads snapshot files from a directory (development)
//   - S3: reads objects from an S3 or S3-compatible bucket (production)
package snapshot

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when no snapshot exists at the key.
	ErrNotFound = errors.New("snapshot not found")

	// ErrInvalidKey is returned when a snapshot key is invalid or contains
	// forbidden characters (e.g., path traversal attempts like "../").
	ErrInvalidKey = errors.New("invalid snapshot key")

	// ErrAccessDenied is returned when the backing store denies access.
	ErrAccessDenied = errors.New("access denied")
)

// Source fetches zone snapshots. Implementations must be safe for
// concurrent use.
type Source interface {
	// Latest returns the most recent snapshot stored at the key along with
	// its content type. Returns ErrNotFound (wrapped) if no snapshot exists.
	Latest(ctx context.Context, key string) ([]byte, string, error)
}

// Error wraps snapshot operation failures with the key involved. It
// supports errors.Is via Unwrap.
type Error struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("snapshot %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}
