package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
	"github.com/custodia-labs/docgate/internal/core/ports/driving"
	"github.com/custodia-labs/docgate/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService coordinates blob write, text extraction and record insert.
type IngestService struct {
	blobs     driven.BlobStore
	records   driven.MetadataStore
	extractor driven.Extractor
	locks     *KeyLock
	now       func() time.Time
}

// NewIngestService creates a new ingest service.
// A nil locks disables per-filename serialization.
func NewIngestService(
	blobs driven.BlobStore,
	records driven.MetadataStore,
	extractor driven.Extractor,
	locks *KeyLock,
) *IngestService {
	return &IngestService{
		blobs:     blobs,
		records:   records,
		extractor: extractor,
		locks:     locks,
		now:       time.Now,
	}
}

// Ingest runs the three ingestion steps in order.
//
// A failed blob write leaves nothing behind. A failed extraction or insert
// leaves the blob on disk without a record: uploaded bytes are kept rather
// than rolled back, and the orphan is visible to listing and audits.
func (s *IngestService) Ingest(ctx context.Context, filename string, r io.Reader) (*domain.TextRecord, error) {
	if s.blobs == nil || s.records == nil || s.extractor == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := domain.ValidateFilename(filename); err != nil {
		return nil, err
	}

	logger.Section("Ingest")
	logger.Debug("Filename: %q", filename)

	if s.locks != nil {
		unlock, err := s.locks.Lock(ctx, filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
		}
		defer unlock()
	}

	// Step 1: persist the bytes.
	info, err := s.blobs.Write(ctx, filename, r)
	if err != nil {
		logger.Warn("Blob write failed for %q: %v", filename, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
	}
	logger.Debug("Blob written: %d bytes, sha256=%s", info.Size, info.SHA256)

	// Step 2: extract from the stored blob, not the request body.
	text, err := s.extract(ctx, filename)
	if err != nil {
		logger.Warn("Extraction failed for %q, blob kept without record: %v", filename, err)
		return nil, err
	}
	logger.Debug("Extracted %d characters", len(text))

	// Step 3: record the text.
	record, err := s.records.Insert(ctx, domain.TextRecord{
		Filename:   filename,
		Text:       text,
		UploadedAt: s.now().UTC(),
		Size:       info.Size,
		SHA256:     info.SHA256,
	})
	if err != nil {
		logger.Warn("Record insert failed for %q, blob kept without record: %v", filename, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	logger.Info("Ingested %q (record %s)", filename, record.ID)
	return record, nil
}

func (s *IngestService) extract(ctx context.Context, filename string) (string, error) {
	rc, err := s.blobs.ReadStream(ctx, filename)
	if err != nil {
		return "", fmt.Errorf("%w: reopen blob: %w", domain.ErrExtractionFailed, err)
	}
	defer rc.Close()

	text, err := s.extractor.Extract(ctx, filename, rc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	return text, nil
}
