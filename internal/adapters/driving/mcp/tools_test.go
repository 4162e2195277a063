package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgate/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleListFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("returns files and orphans", func(t *testing.T) {
		files := &mockFileService{listing: &domain.Listing{
			Files:           []string{"a.pdf", "b.pdf"},
			OrphanedBlobs:   []string{"b.pdf"},
			MetadataChecked: true,
		}}
		server := newTestServer(t, &Ports{Files: files})

		_, output, err := server.handleListFiles(ctx, nil, ListFilesInput{})

		require.NoError(t, err)
		assert.Equal(t, []string{"a.pdf", "b.pdf"}, output.Files)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, []string{"b.pdf"}, output.OrphanedBlobs)
	})

	t.Run("empty store returns empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{Files: &mockFileService{}})

		_, output, err := server.handleListFiles(ctx, nil, ListFilesInput{})

		require.NoError(t, err)
		assert.NotNil(t, output.Files)
		assert.Empty(t, output.Files)
	})

	t.Run("propagates error", func(t *testing.T) {
		server := newTestServer(t, &Ports{Files: &mockFileService{err: domain.ErrStorageUnavailable}})

		_, _, err := server.handleListFiles(ctx, nil, ListFilesInput{})

		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})
}

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer", func(t *testing.T) {
		query := &mockQueryService{answer: "42"}
		server := newTestServer(t, &Ports{Files: &mockFileService{}, Query: query})

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Query: "meaning?"})

		require.NoError(t, err)
		assert.Equal(t, "42", output.Answer)
		assert.Equal(t, "meaning?", query.query)
	})

	t.Run("missing service", func(t *testing.T) {
		server := newTestServer(t, &Ports{Files: &mockFileService{}})

		_, _, err := server.handleQuery(ctx, nil, QueryInput{Query: "x"})

		assert.ErrorIs(t, err, errQueryUnavailable)
	})

	t.Run("propagates failure", func(t *testing.T) {
		query := &mockQueryService{err: errors.New("answering down")}
		server := newTestServer(t, &Ports{Files: &mockFileService{}, Query: query})

		_, _, err := server.handleQuery(ctx, nil, QueryInput{Query: "x"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "answering down")
	})
}

func TestServer_handleFileText(t *testing.T) {
	ctx := context.Background()
	uploaded := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	files := &mockFileService{records: map[string]*domain.TextRecord{
		"report.pdf": {Filename: "report.pdf", Text: "Hello", UploadedAt: uploaded, Size: 5},
	}}
	server := newTestServer(t, &Ports{Files: files})

	t.Run("returns text", func(t *testing.T) {
		_, output, err := server.handleFileText(ctx, nil, FileTextInput{Filename: "report.pdf"})

		require.NoError(t, err)
		assert.Equal(t, "Hello", output.Text)
		assert.Equal(t, "2024-05-01T12:00:00Z", output.UploadedAt)
		assert.Equal(t, int64(5), output.Size)
	})

	t.Run("unknown file", func(t *testing.T) {
		_, _, err := server.handleFileText(ctx, nil, FileTextInput{Filename: "nope.pdf"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleConsistency(t *testing.T) {
	ctx := context.Background()

	t.Run("reports violations", func(t *testing.T) {
		audit := &mockAuditService{report: &domain.AuditReport{
			BlobCount:       2,
			RecordCount:     1,
			OrphanedBlobs:   []string{"b.pdf"},
			ContentVerified: true,
		}}
		server := newTestServer(t, &Ports{Files: &mockFileService{}, Audit: audit})

		_, output, err := server.handleConsistency(ctx, nil, ConsistencyInput{Verify: true})

		require.NoError(t, err)
		assert.True(t, audit.opts.VerifyContent)
		assert.False(t, output.Consistent)
		assert.Equal(t, []string{"b.pdf"}, output.OrphanedBlobs)
		assert.Equal(t, []string{}, output.OrphanedRecords)
		assert.Equal(t, []string{}, output.StaleRecords)
		assert.True(t, output.ContentVerified)
	})

	t.Run("missing service", func(t *testing.T) {
		server := newTestServer(t, &Ports{Files: &mockFileService{}})

		_, _, err := server.handleConsistency(ctx, nil, ConsistencyInput{})

		assert.ErrorIs(t, err, errAuditUnavailable)
	})
}
