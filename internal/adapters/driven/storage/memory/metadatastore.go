package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
)

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// MetadataStore is an in-memory implementation of driven.MetadataStore.
type MetadataStore struct {
	mu      sync.RWMutex
	records map[string]domain.TextRecord
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		records: make(map[string]domain.TextRecord),
	}
}

// Insert stores rec, replacing any record with the same filename.
func (s *MetadataStore) Insert(_ context.Context, rec domain.TextRecord) (*domain.TextRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.records[rec.Filename] = rec
	s.mu.Unlock()
	return &rec, nil
}

// FindAll returns every record ordered by upload time, then filename.
func (s *MetadataStore) FindAll(_ context.Context) ([]domain.TextRecord, error) {
	s.mu.RLock()
	records := make([]domain.TextRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].UploadedAt.Equal(records[j].UploadedAt) {
			return records[i].UploadedAt.Before(records[j].UploadedAt)
		}
		return records[i].Filename < records[j].Filename
	})
	return records, nil
}

// FindByFilename retrieves a record by filename.
func (s *MetadataStore) FindByFilename(_ context.Context, filename string) (*domain.TextRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[filename]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// DeleteByFilename removes a record and returns it.
func (s *MetadataStore) DeleteByFilename(_ context.Context, filename string) (*domain.TextRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[filename]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(s.records, filename)
	return &rec, nil
}

// Close is a no-op.
func (s *MetadataStore) Close() error {
	return nil
}
