package driven

import (
	"context"
	"io"
)

// Extractor sends a raw file to the external extraction service.
// Any non-success response or transport failure is reported as an error;
// implementations stream r instead of buffering it.
type Extractor interface {
	Extract(ctx context.Context, filename string, r io.Reader) (string, error)
}
