package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/docgate/internal/core/domain"
)

// FileService exposes read access to stored files.
type FileService interface {
	// List enumerates stored blobs and reports orphans on either side.
	List(ctx context.Context) (*domain.Listing, error)

	// Open streams the named blob. The caller must close it.
	Open(ctx context.Context, filename string) (io.ReadCloser, error)

	// Record returns the text record for a filename.
	Record(ctx context.Context, filename string) (*domain.TextRecord, error)
}

// AuditService checks the blob/record invariant across both stores.
type AuditService interface {
	// Audit reports violations without repairing them.
	Audit(ctx context.Context, opts domain.AuditOptions) (*domain.AuditReport, error)
}
