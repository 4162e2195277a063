package driving

import "context"

// QueryService answers natural-language questions over all stored texts.
type QueryService interface {
	// Query returns domain.NoFilesAnswer when nothing is stored.
	Query(ctx context.Context, query string) (string, error)
}
