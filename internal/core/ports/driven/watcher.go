package driven

import "context"

// BlobEvent describes a change observed in the blob store outside the API.
type BlobEvent struct {
	// Name is the affected filename.
	Name string

	// Op is "create", "write", "remove" or "rename".
	Op string
}

// Watcher observes the blob store for out-of-band changes.
type Watcher interface {
	// Watch delivers events until ctx is cancelled or the watcher fails.
	Watch(ctx context.Context, events chan<- BlobEvent) error
}
