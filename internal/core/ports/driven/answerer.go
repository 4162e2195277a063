package driven

import "context"

// Answerer sends a query and the stored texts to the external answering
// service and returns its answer. Callers never pass an empty texts slice.
type Answerer interface {
	Answer(ctx context.Context, query string, texts []string) (string, error)
}
