package memory

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string][]byte),
	}
}

// List returns all blob names, sorted.
func (s *BlobStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.blobs))
	for name := range s.blobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether a blob is stored under name.
func (s *BlobStore) Exists(_ context.Context, name string) (bool, error) {
	if err := domain.ValidateFilename(name); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[name]
	return ok, nil
}

// Write stores the full contents of r under name, replacing any existing blob.
// Nothing is stored if reading r fails or ctx is cancelled.
func (s *BlobStore) Write(ctx context.Context, name string, r io.Reader) (domain.BlobInfo, error) {
	if err := domain.ValidateFilename(name); err != nil {
		return domain.BlobInfo{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.BlobInfo{}, fmt.Errorf("read blob %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return domain.BlobInfo{}, err
	}

	sum := sha256.Sum256(data)
	s.mu.Lock()
	s.blobs[name] = data
	s.mu.Unlock()

	return domain.BlobInfo{
		Name:   name,
		Size:   int64(len(data)),
		SHA256: hex.EncodeToString(sum[:]),
	}, nil
}

// ReadStream returns a reader over a snapshot of the blob.
func (s *BlobStore) ReadStream(_ context.Context, name string) (io.ReadCloser, error) {
	if err := domain.ValidateFilename(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.blobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes a blob.
func (s *BlobStore) Delete(_ context.Context, name string) error {
	if err := domain.ValidateFilename(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[name]; !ok {
		return domain.ErrNotFound
	}
	delete(s.blobs, name)
	return nil
}
