package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgate/internal/core/domain"
)

func newTestIngest(blobs *failingBlobStore, records *failingMetadataStore, ex *stubExtractor) *IngestService {
	svc := NewIngestService(blobs, records, ex, NewKeyLock())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestIngestService_Ingest_Success(t *testing.T) {
	blobs := newFailingBlobStore()
	records := newFailingMetadataStore()
	ex := newStubExtractor(map[string]string{"report.pdf": "Q3 revenue grew 12%"})
	svc := newTestIngest(blobs, records, ex)
	ctx := context.Background()

	rec, err := svc.Ingest(ctx, "report.pdf", strings.NewReader("%PDF-1.4 bytes"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", rec.Filename)
	assert.Equal(t, "Q3 revenue grew 12%", rec.Text)
	assert.Equal(t, int64(14), rec.Size)
	assert.NotEmpty(t, rec.SHA256)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), rec.UploadedAt)

	// Extraction reads the stored blob.
	assert.Equal(t, "%PDF-1.4 bytes", ex.seen["report.pdf"])

	exists, err := blobs.Exists(ctx, "report.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	stored, err := records.FindByFilename(ctx, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, rec.Text, stored.Text)
}

func TestIngestService_Ingest_InvalidFilename(t *testing.T) {
	svc := newTestIngest(newFailingBlobStore(), newFailingMetadataStore(), newStubExtractor(nil))

	for _, name := range []string{"", "../x.pdf", ".hidden", "a/b.pdf"} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Ingest(context.Background(), name, strings.NewReader("x"))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestIngestService_Ingest_WriteFailure(t *testing.T) {
	blobs := newFailingBlobStore()
	blobs.writeErr = errBoom
	records := newFailingMetadataStore()
	ex := newStubExtractor(nil)
	svc := newTestIngest(blobs, records, ex)

	_, err := svc.Ingest(context.Background(), "a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	assert.ErrorIs(t, err, errBoom)

	assert.Empty(t, ex.seen)
	all, _ := records.FindAll(context.Background())
	assert.Empty(t, all)
}

func TestIngestService_Ingest_ExtractionFailureKeepsBlob(t *testing.T) {
	blobs := newFailingBlobStore()
	records := newFailingMetadataStore()
	ex := newStubExtractor(nil)
	ex.err = errBoom
	svc := newTestIngest(blobs, records, ex)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)

	exists, _ := blobs.Exists(ctx, "a.pdf")
	assert.True(t, exists)
	_, err = records.FindByFilename(ctx, "a.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestService_Ingest_InsertFailureKeepsBlob(t *testing.T) {
	blobs := newFailingBlobStore()
	records := newFailingMetadataStore()
	records.insertErr = errBoom
	svc := newTestIngest(blobs, records, newStubExtractor(map[string]string{"a.pdf": "alpha"}))
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrPersistence)

	exists, _ := blobs.Exists(ctx, "a.pdf")
	assert.True(t, exists)
}

func TestIngestService_Ingest_EmptyTextIsStored(t *testing.T) {
	records := newFailingMetadataStore()
	svc := newTestIngest(newFailingBlobStore(), records, newStubExtractor(map[string]string{}))

	rec, err := svc.Ingest(context.Background(), "scan.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "", rec.Text)

	stored, err := records.FindByFilename(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "", stored.Text)
}

func TestIngestService_Ingest_ReuploadReplaces(t *testing.T) {
	records := newFailingMetadataStore()
	ex := newStubExtractor(map[string]string{"a.pdf": "first"})
	svc := newTestIngest(newFailingBlobStore(), records, ex)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "a.pdf", strings.NewReader("v1"))
	require.NoError(t, err)
	ex.texts["a.pdf"] = "second"
	_, err = svc.Ingest(ctx, "a.pdf", strings.NewReader("v2"))
	require.NoError(t, err)

	all, err := records.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "second", all[0].Text)
}

func TestIngestService_Ingest_ConcurrentDistinctFiles(t *testing.T) {
	blobs := newFailingBlobStore()
	records := newFailingMetadataStore()
	ex := newStubExtractor(map[string]string{"a.pdf": "alpha", "b.pdf": "beta"})
	svc := newTestIngest(blobs, records, ex)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, name := range []string{"a.pdf", "b.pdf"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := svc.Ingest(ctx, name, strings.NewReader("bytes of "+name))
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	names, err := blobs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, names)

	a, err := records.FindByFilename(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "alpha", a.Text)
	b, err := records.FindByFilename(ctx, "b.pdf")
	require.NoError(t, err)
	assert.Equal(t, "beta", b.Text)
}

func TestIngestService_NilDependencies(t *testing.T) {
	svc := NewIngestService(nil, nil, nil, nil)

	_, err := svc.Ingest(context.Background(), "a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}
