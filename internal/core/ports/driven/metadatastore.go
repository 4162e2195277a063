package driven

import (
	"context"

	"github.com/custodia-labs/docgate/internal/core/domain"
)

// MetadataStore persists text records keyed by filename.
// Filename is unique: Insert replaces an existing record with the same
// filename as a whole (last write wins).
type MetadataStore interface {
	// Insert stores a record, assigning ID and UploadedAt when empty,
	// and returns the stored record.
	Insert(ctx context.Context, record domain.TextRecord) (*domain.TextRecord, error)

	// FindAll returns every record. An empty store yields an empty slice.
	FindAll(ctx context.Context) ([]domain.TextRecord, error)

	// FindByFilename returns the record for filename or domain.ErrNotFound.
	FindByFilename(ctx context.Context, filename string) (*domain.TextRecord, error)

	// DeleteByFilename removes and returns the record for filename,
	// or domain.ErrNotFound if there was none.
	DeleteByFilename(ctx context.Context, filename string) (*domain.TextRecord, error)

	// Close releases resources.
	Close() error
}
