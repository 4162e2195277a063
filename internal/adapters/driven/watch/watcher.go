// Package watch observes the local upload directory with fsnotify.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docgate/internal/core/ports/driven"
	"github.com/custodia-labs/docgate/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.Watcher = (*Watcher)(nil)

// Event operations reported on driven.BlobEvent.
const (
	OpCreate = "create"
	OpWrite  = "write"
	OpRemove = "remove"
	OpRename = "rename"
)

// Watcher reports changes to regular, non-hidden files directly inside dir.
// The blob store's own temp directory is hidden and therefore ignored, so
// only the final rename of an upload is seen.
type Watcher struct {
	dir string
}

// New creates a watcher for dir.
func New(dir string) *Watcher {
	return &Watcher{dir: dir}
}

// Watch blocks, delivering events until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, events chan<- driven.BlobEvent) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Debug("Watching %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			be := w.handleFsEvent(ev)
			if be == nil {
				continue
			}
			select {
			case events <- *be:
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error on %s: %v", w.dir, err)
		}
	}
}

// handleFsEvent converts an fsnotify event, or returns nil to skip it.
func (w *Watcher) handleFsEvent(ev fsnotify.Event) *driven.BlobEvent {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") {
		return nil
	}

	var op string
	switch {
	case ev.Has(fsnotify.Remove):
		op = OpRemove
	case ev.Has(fsnotify.Rename):
		op = OpRename
	case ev.Has(fsnotify.Create):
		op = OpCreate
	case ev.Has(fsnotify.Write):
		op = OpWrite
	default:
		return nil
	}

	if op == OpCreate || op == OpWrite {
		info, err := os.Stat(ev.Name)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
	}
	return &driven.BlobEvent{Name: name, Op: op}
}
