package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
	"github.com/custodia-labs/docgate/internal/core/ports/driving"
	"github.com/custodia-labs/docgate/internal/logger"
)

// Ensure DeletionService implements the interface.
var _ driving.DeletionService = (*DeletionService)(nil)

// DeletionService removes a file from both stores as a two-phase operation.
type DeletionService struct {
	blobs   driven.BlobStore
	records driven.MetadataStore
	locks   *KeyLock
}

// NewDeletionService creates a new deletion service.
// Pass the same KeyLock given to the ingest service.
func NewDeletionService(blobs driven.BlobStore, records driven.MetadataStore, locks *KeyLock) *DeletionService {
	return &DeletionService{
		blobs:   blobs,
		records: records,
		locks:   locks,
	}
}

// Delete removes the blob first and the record second.
//
// The record is never touched unless the blob was confirmed present and
// then removed. If the record cannot be removed afterwards the error wraps
// domain.ErrPartialDelete and the outcome has BlobDeleted set.
func (s *DeletionService) Delete(ctx context.Context, filename string) (domain.DeleteOutcome, error) {
	outcome := domain.DeleteOutcome{Filename: filename}
	if s.blobs == nil || s.records == nil {
		return outcome, domain.ErrNotImplemented
	}
	if err := domain.ValidateFilename(filename); err != nil {
		return outcome, err
	}

	logger.Section("Delete")
	logger.Debug("Filename: %q", filename)

	if s.locks != nil {
		unlock, err := s.locks.Lock(ctx, filename)
		if err != nil {
			return outcome, err
		}
		defer unlock()
	}

	// Phase 1: the blob must exist before anything is removed.
	exists, err := s.blobs.Exists(ctx, filename)
	if err != nil {
		return outcome, fmt.Errorf("%w: check blob: %w", domain.ErrStorageUnavailable, err)
	}
	if !exists {
		logger.Debug("Blob %q not found, metadata untouched", filename)
		return outcome, fmt.Errorf("blob %q: %w", filename, domain.ErrNotFound)
	}

	// Phase 2: remove the blob. On failure the record stays.
	if err := s.blobs.Delete(ctx, filename); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return outcome, fmt.Errorf("blob %q: %w", filename, domain.ErrNotFound)
		}
		logger.Warn("Blob delete failed for %q, metadata untouched: %v", filename, err)
		return outcome, fmt.Errorf("%w: delete blob: %w", domain.ErrStorageUnavailable, err)
	}
	outcome.BlobDeleted = true

	// Phase 3: remove the record.
	if _, err := s.records.DeleteByFilename(ctx, filename); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Deleted orphaned blob %q: no metadata record existed", filename)
			return outcome, fmt.Errorf("metadata %q: %w", filename, domain.ErrNotFound)
		}
		logger.Warn("Record delete failed for %q after blob removal: %v", filename, err)
		return outcome, fmt.Errorf("%w: %w", domain.ErrPartialDelete, err)
	}
	outcome.RecordDeleted = true

	logger.Info("Deleted %q", filename)
	return outcome, nil
}
