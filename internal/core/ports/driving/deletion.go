package driving

import (
	"context"

	"github.com/custodia-labs/docgate/internal/core/domain"
)

// DeletionService removes a file from both stores.
type DeletionService interface {
	// Delete removes the blob, then its record. The outcome reports which
	// phases completed, including on error.
	Delete(ctx context.Context, filename string) (domain.DeleteOutcome, error)
}
