package persist

import (
	"context"

	derrors "github.com/vango-dev/depot/internal/errors"
)

// Backend stores serialized container snapshots under a key.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Load returns the data saved under key.
	// Returns (nil, nil) if nothing is saved under key.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores data under key, replacing any previous data.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend. Later calls fail with ErrBackendClosed.
	Close() error
}

// ErrBackendClosed is returned by every operation on a closed backend.
var ErrBackendClosed = derrors.New("D030")

// backendError wraps a backend failure under the persistence error code.
func backendError(op, key string, err error) error {
	return derrors.New("D032").WithDetailf("%s %q", op, key).Wrap(err)
}
