package object

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Open when no object exists at the given path.
var ErrNotFound = errors.New("object not found")

// Store defines the contract for saving and retrieving uploaded PDFs.
// Paths are opaque to callers: the local backend produces bare
// "<timestamp>-<name>" filenames, the S3 backend produces
// "<user-id>/<timestamp>-<name>" keys. The active backend is selected once
// at startup from configuration; callers never sniff the path format.
type Store interface {
	// Save persists the payload and returns the storage path.
	Save(ctx context.Context, userID string, fileName string, data []byte) (string, error)
	// Open returns the stored payload, or ErrNotFound.
	Open(ctx context.Context, path string) ([]byte, error)
	// Delete removes the stored payload. Failures are logged, not returned;
	// deleting an already-absent object reports success.
	Delete(ctx context.Context, path string) bool
}
