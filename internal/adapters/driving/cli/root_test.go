package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/services"
)

// stubExtractor returns the file content as its text.
type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	return string(data), err
}

// stubAnswerer echoes how many texts it was given.
type stubAnswerer struct{}

func (stubAnswerer) Answer(_ context.Context, query string, texts []string) (string, error) {
	return "answer to " + query + " from " + strings.Join(texts, "|"), nil
}

// testStores exposes the in-memory stores behind the injected services.
type testStores struct {
	blobs   *memory.BlobStore
	records *memory.MetadataStore
}

// setupTestServices injects in-memory services and resets flag state.
func setupTestServices(t *testing.T) *testStores {
	t.Helper()

	blobs := memory.NewBlobStore()
	records := memory.NewMetadataStore()
	locks := services.NewKeyLock()
	defaults := domain.DefaultGatewaySettings()

	oldApp, oldSettings := app, settingsService
	app = &appServices{
		settings: &defaults,
		ingest:   services.NewIngestService(blobs, records, stubExtractor{}, locks),
		deletion: services.NewDeletionService(blobs, records, locks),
		query:    services.NewQueryService(records, stubAnswerer{}),
		files:    services.NewFileService(blobs, records),
		audit:    services.NewAuditService(blobs, records),
	}
	settingsService = services.NewSettingsService(memory.NewConfigStore(), func(string) (string, bool) {
		return "", false
	})

	t.Cleanup(func() {
		app, settingsService = oldApp, oldSettings
		filesJSON, filesOutput = false, ""
		checkVerify, checkJSON = false, false
		uploadName, serveAddr = "", ""
		verbose = false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	return &testStores{blobs: blobs, records: records}
}

// runCmd executes the root command with args and returns combined output.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func seed(t *testing.T, s *testStores, name, content string) {
	t.Helper()
	ctx := context.Background()
	info, err := s.blobs.Write(ctx, name, strings.NewReader(content))
	require.NoError(t, err)
	_, err = s.records.Insert(ctx, domain.TextRecord{
		Filename: name,
		Text:     content,
		Size:     info.Size,
		SHA256:   info.SHA256,
	})
	require.NoError(t, err)
}
