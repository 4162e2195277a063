package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgate/internal/core/domain"
)

func TestAuditService_Audit_Consistent(t *testing.T) {
	blobs := newFailingBlobStore()
	records := newFailingMetadataStore()
	ingest := NewIngestService(blobs, records, newStubExtractor(map[string]string{"a.pdf": "alpha"}), nil)
	_, err := ingest.Ingest(context.Background(), "a.pdf", strings.NewReader("v1"))
	require.NoError(t, err)

	svc := NewAuditService(blobs, records)
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	report, err := svc.Audit(context.Background(), domain.AuditOptions{VerifyContent: true})
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.True(t, report.ContentVerified)
	assert.Equal(t, 1, report.BlobCount)
	assert.Equal(t, 1, report.RecordCount)
	assert.Equal(t, fixed, report.CheckedAt)
}

func TestAuditService_Audit_Orphans(t *testing.T) {
	blobs := newFailingBlobStore()
	records := newFailingMetadataStore()
	ctx := context.Background()
	_, _ = blobs.Write(ctx, "orphan.pdf", strings.NewReader("x"))
	_, _ = records.Insert(ctx, domain.TextRecord{Filename: "ghost.pdf"})

	report, err := NewAuditService(blobs, records).Audit(ctx, domain.AuditOptions{})
	require.NoError(t, err)
	assert.False(t, report.Consistent())
	assert.False(t, report.ContentVerified)
	assert.Equal(t, []string{"orphan.pdf"}, report.OrphanedBlobs)
	assert.Equal(t, []string{"ghost.pdf"}, report.OrphanedRecords)
}

func TestAuditService_Audit_StaleAfterFailedReupload(t *testing.T) {
	blobs := newFailingBlobStore()
	records := newFailingMetadataStore()
	ex := newStubExtractor(map[string]string{"a.pdf": "alpha"})
	ingest := NewIngestService(blobs, records, ex, nil)
	ctx := context.Background()

	_, err := ingest.Ingest(ctx, "a.pdf", strings.NewReader("v1"))
	require.NoError(t, err)

	ex.err = errBoom
	_, err = ingest.Ingest(ctx, "a.pdf", strings.NewReader("v2"))
	require.ErrorIs(t, err, domain.ErrExtractionFailed)

	svc := NewAuditService(blobs, records)

	report, err := svc.Audit(ctx, domain.AuditOptions{})
	require.NoError(t, err)
	assert.True(t, report.Consistent())

	report, err = svc.Audit(ctx, domain.AuditOptions{VerifyContent: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf"}, report.StaleRecords)
	assert.False(t, report.Consistent())
}

func TestAuditService_Audit_StoreFailures(t *testing.T) {
	t.Run("blob list", func(t *testing.T) {
		blobs := newFailingBlobStore()
		blobs.listErr = errBoom
		_, err := NewAuditService(blobs, newFailingMetadataStore()).Audit(context.Background(), domain.AuditOptions{})
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})

	t.Run("metadata", func(t *testing.T) {
		records := newFailingMetadataStore()
		records.findAllErr = errBoom
		_, err := NewAuditService(newFailingBlobStore(), records).Audit(context.Background(), domain.AuditOptions{})
		assert.ErrorIs(t, err, domain.ErrPersistence)
	})

	t.Run("hash", func(t *testing.T) {
		blobs := newFailingBlobStore()
		records := newFailingMetadataStore()
		ctx := context.Background()
		info, _ := blobs.Write(ctx, "a.pdf", strings.NewReader("x"))
		_, _ = records.Insert(ctx, domain.TextRecord{Filename: "a.pdf", SHA256: info.SHA256})
		blobs.readErr = errBoom

		_, err := NewAuditService(blobs, records).Audit(ctx, domain.AuditOptions{VerifyContent: true})
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})
}
