package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/docgate/internal/core/domain"
)

// BlobStore manages the raw bytes of uploaded files, addressed by filename.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// List returns the names of all stored blobs, sorted.
	// An empty store yields an empty slice, never an error.
	// Enumeration failures wrap domain.ErrStorageUnavailable.
	List(ctx context.Context) ([]string, error)

	// Exists reports whether a blob with the given name is present.
	Exists(ctx context.Context, name string) (bool, error)

	// Write persists r under name, silently replacing any existing blob.
	// The store is created on first use if absent.
	Write(ctx context.Context, name string, r io.Reader) (domain.BlobInfo, error)

	// ReadStream opens the named blob. The caller must close it.
	// Returns domain.ErrNotFound if absent.
	ReadStream(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes the named blob.
	// Returns domain.ErrNotFound if absent, distinct from other I/O failures.
	Delete(ctx context.Context, name string) error
}
