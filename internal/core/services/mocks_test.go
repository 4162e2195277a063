package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/custodia-labs/docgate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docgate/internal/core/domain"
)

var errBoom = errors.New("boom")

// failingBlobStore wraps the memory store and injects errors per operation.
type failingBlobStore struct {
	*memory.BlobStore
	listErr   error
	existsErr error
	writeErr  error
	readErr   error
	deleteErr error
}

func newFailingBlobStore() *failingBlobStore {
	return &failingBlobStore{BlobStore: memory.NewBlobStore()}
}

func (s *failingBlobStore) List(ctx context.Context) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.BlobStore.List(ctx)
}

func (s *failingBlobStore) Exists(ctx context.Context, name string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.BlobStore.Exists(ctx, name)
}

func (s *failingBlobStore) Write(ctx context.Context, name string, r io.Reader) (domain.BlobInfo, error) {
	if s.writeErr != nil {
		return domain.BlobInfo{}, s.writeErr
	}
	return s.BlobStore.Write(ctx, name, r)
}

func (s *failingBlobStore) ReadStream(ctx context.Context, name string) (io.ReadCloser, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.BlobStore.ReadStream(ctx, name)
}

func (s *failingBlobStore) Delete(ctx context.Context, name string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.BlobStore.Delete(ctx, name)
}

// failingMetadataStore wraps the memory store and injects errors per operation.
type failingMetadataStore struct {
	*memory.MetadataStore
	insertErr  error
	findAllErr error
	deleteErr  error
}

func newFailingMetadataStore() *failingMetadataStore {
	return &failingMetadataStore{MetadataStore: memory.NewMetadataStore()}
}

func (s *failingMetadataStore) Insert(ctx context.Context, rec domain.TextRecord) (*domain.TextRecord, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	return s.MetadataStore.Insert(ctx, rec)
}

func (s *failingMetadataStore) FindAll(ctx context.Context) ([]domain.TextRecord, error) {
	if s.findAllErr != nil {
		return nil, s.findAllErr
	}
	return s.MetadataStore.FindAll(ctx)
}

func (s *failingMetadataStore) DeleteByFilename(ctx context.Context, filename string) (*domain.TextRecord, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return s.MetadataStore.DeleteByFilename(ctx, filename)
}

// stubExtractor returns canned text per filename and records what it saw.
type stubExtractor struct {
	mu    sync.Mutex
	texts map[string]string
	err   error
	seen  map[string]string
}

func newStubExtractor(texts map[string]string) *stubExtractor {
	return &stubExtractor{texts: texts, seen: make(map[string]string)}
}

func (e *stubExtractor) Extract(_ context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen[filename] = string(data)
	if e.err != nil {
		return "", e.err
	}
	return e.texts[filename], nil
}

// stubAnswerer records its inputs and returns a canned answer.
type stubAnswerer struct {
	answer string
	err    error
	calls  int
	query  string
	texts  []string
}

func (a *stubAnswerer) Answer(_ context.Context, query string, texts []string) (string, error) {
	a.calls++
	a.query = query
	a.texts = texts
	if a.err != nil {
		return "", a.err
	}
	return a.answer, nil
}
