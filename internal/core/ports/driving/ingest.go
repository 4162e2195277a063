package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/docgate/internal/core/domain"
)

// IngestService accepts uploaded files.
type IngestService interface {
	// Ingest writes the blob, extracts its text and stores the record.
	//
	// Failures are classified by the wrapped sentinel:
	//   - domain.ErrUploadFailed: nothing was stored
	//   - domain.ErrExtractionFailed: the blob remains, no record
	//   - domain.ErrPersistence: the blob remains, no record
	Ingest(ctx context.Context, filename string, r io.Reader) (*domain.TextRecord, error)
}
