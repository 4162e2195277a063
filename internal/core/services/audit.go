package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
	"github.com/custodia-labs/docgate/internal/core/ports/driving"
	"github.com/custodia-labs/docgate/internal/logger"
)

// Ensure AuditService implements the interface.
var _ driving.AuditService = (*AuditService)(nil)

// AuditService reports violations of the one-blob-one-record invariant.
type AuditService struct {
	blobs   driven.BlobStore
	records driven.MetadataStore
	now     func() time.Time
}

// NewAuditService creates a new audit service.
func NewAuditService(blobs driven.BlobStore, records driven.MetadataStore) *AuditService {
	return &AuditService{
		blobs:   blobs,
		records: records,
		now:     time.Now,
	}
}

// Audit compares both stores. Unlike listing, it fails if either store
// cannot be read. Nothing is repaired.
func (s *AuditService) Audit(ctx context.Context, opts domain.AuditOptions) (*domain.AuditReport, error) {
	if s.blobs == nil || s.records == nil {
		return nil, domain.ErrNotImplemented
	}

	logger.Section("Audit")

	names, err := s.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	records, err := s.records.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	report := &domain.AuditReport{
		CheckedAt:   s.now().UTC(),
		BlobCount:   len(names),
		RecordCount: len(records),
	}
	report.OrphanedBlobs, report.OrphanedRecords = diffNames(names, records)

	if opts.VerifyContent {
		stale, err := s.verify(ctx, names, records)
		if err != nil {
			return nil, err
		}
		report.StaleRecords = stale
		report.ContentVerified = true
	}

	logger.Info("Audit: %d blobs, %d records, %d orphaned blobs, %d orphaned records, %d stale",
		report.BlobCount, report.RecordCount,
		len(report.OrphanedBlobs), len(report.OrphanedRecords), len(report.StaleRecords))
	return report, nil
}

// verify re-hashes each blob that has a record carrying a digest.
func (s *AuditService) verify(ctx context.Context, names []string, records []domain.TextRecord) ([]string, error) {
	stored := make(map[string]struct{}, len(names))
	for _, name := range names {
		stored[name] = struct{}{}
	}

	var stale []string
	for i := range records {
		rec := &records[i]
		if rec.SHA256 == "" {
			continue
		}
		if _, ok := stored[rec.Filename]; !ok {
			continue
		}
		digest, err := s.hashBlob(ctx, rec.Filename)
		if errors.Is(err, domain.ErrNotFound) {
			// Removed between List and now; reported on the next audit.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: hash %q: %w", domain.ErrStorageUnavailable, rec.Filename, err)
		}
		if digest != rec.SHA256 {
			logger.Debug("Stale record %q: have %s, blob %s", rec.Filename, rec.SHA256, digest)
			stale = append(stale, rec.Filename)
		}
	}
	sort.Strings(stale)
	return stale, nil
}

func (s *AuditService) hashBlob(ctx context.Context, name string) (string, error) {
	rc, err := s.blobs.ReadStream(ctx, name)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	h := sha256.New()
	if _, err := io.Copy(h, rc); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
