package services

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
	"github.com/custodia-labs/docgate/internal/core/ports/driving"
	"github.com/custodia-labs/docgate/internal/logger"
)

// Ensure FileService implements the interface.
var _ driving.FileService = (*FileService)(nil)

// FileService provides read access to stored blobs and their records.
type FileService struct {
	blobs   driven.BlobStore
	records driven.MetadataStore
}

// NewFileService creates a new file service.
// records may be nil, in which case listings skip orphan detection.
func NewFileService(blobs driven.BlobStore, records driven.MetadataStore) *FileService {
	return &FileService{
		blobs:   blobs,
		records: records,
	}
}

// List enumerates blob names and cross-checks them against stored records.
// A metadata failure never fails the listing; it only disables orphan checks.
func (s *FileService) List(ctx context.Context) (*domain.Listing, error) {
	if s.blobs == nil {
		return nil, domain.ErrNotImplemented
	}

	names, err := s.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	sort.Strings(names)

	listing := &domain.Listing{Files: names}
	if s.records == nil {
		return listing, nil
	}

	records, err := s.records.FindAll(ctx)
	if err != nil {
		logger.Warn("Listing without orphan check: %v", err)
		return listing, nil
	}

	listing.OrphanedBlobs, listing.OrphanedRecords = diffNames(names, records)
	listing.MetadataChecked = true

	if !listing.Consistent() {
		logger.Warn("Inconsistent storage: %d orphaned blobs, %d orphaned records",
			len(listing.OrphanedBlobs), len(listing.OrphanedRecords))
	}
	return listing, nil
}

// Open streams the named blob.
func (s *FileService) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	if s.blobs == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := domain.ValidateFilename(filename); err != nil {
		return nil, err
	}
	rc, err := s.blobs.ReadStream(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", filename, err)
	}
	return rc, nil
}

// Record returns the text record for filename.
func (s *FileService) Record(ctx context.Context, filename string) (*domain.TextRecord, error) {
	if s.records == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := domain.ValidateFilename(filename); err != nil {
		return nil, err
	}
	rec, err := s.records.FindByFilename(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", filename, err)
	}
	return rec, nil
}

// diffNames returns blobs with no record and records with no blob, both sorted.
func diffNames(blobs []string, records []domain.TextRecord) (orphanedBlobs, orphanedRecords []string) {
	recorded := make(map[string]struct{}, len(records))
	for i := range records {
		recorded[records[i].Filename] = struct{}{}
	}
	stored := make(map[string]struct{}, len(blobs))
	for _, name := range blobs {
		stored[name] = struct{}{}
		if _, ok := recorded[name]; !ok {
			orphanedBlobs = append(orphanedBlobs, name)
		}
	}
	for i := range records {
		if _, ok := stored[records[i].Filename]; !ok {
			orphanedRecords = append(orphanedRecords, records[i].Filename)
		}
	}
	sort.Strings(orphanedBlobs)
	sort.Strings(orphanedRecords)
	return orphanedBlobs, orphanedRecords
}
