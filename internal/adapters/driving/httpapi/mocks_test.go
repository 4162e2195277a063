package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgate/internal/adapters/driven/blob/local"
	"github.com/custodia-labs/docgate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/services"
)

// stubExtractor returns the file content as its text unless err is set.
type stubExtractor struct {
	err error
}

func (e *stubExtractor) Extract(_ context.Context, _ string, r io.Reader) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	data, err := io.ReadAll(r)
	return string(data), err
}

// stubAnswerer records the texts it was asked about.
type stubAnswerer struct {
	mu     sync.Mutex
	answer string
	err    error
	texts  []string
	calls  int
}

func (a *stubAnswerer) Answer(_ context.Context, _ string, texts []string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.texts = texts
	return a.answer, a.err
}

// testEnv wires real services over a temp-dir blob store and in-memory records.
type testEnv struct {
	server    *httptest.Server
	blobs     *local.Store
	records   *memory.MetadataStore
	extractor *stubExtractor
	answerer  *stubAnswerer
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	blobs, err := local.New(t.TempDir())
	require.NoError(t, err)
	records := memory.NewMetadataStore()
	extractor := &stubExtractor{}
	answerer := &stubAnswerer{answer: "an answer"}
	locks := services.NewKeyLock()

	srv, err := NewServer(&Ports{
		Ingest:   services.NewIngestService(blobs, records, extractor, locks),
		Deletion: services.NewDeletionService(blobs, records, locks),
		Query:    services.NewQueryService(records, answerer),
		Files:    services.NewFileService(blobs, records),
		Audit:    services.NewAuditService(blobs, records),
	}, cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		server:    ts,
		blobs:     blobs,
		records:   records,
		extractor: extractor,
		answerer:  answerer,
	}
}

// stubDeletion returns a fixed outcome.
type stubDeletion struct {
	outcome domain.DeleteOutcome
	err     error
}

func (d *stubDeletion) Delete(_ context.Context, filename string) (domain.DeleteOutcome, error) {
	out := d.outcome
	out.Filename = filename
	return out, d.err
}

// stubIngest returns a fixed error.
type stubIngest struct {
	err error
}

func (i *stubIngest) Ingest(_ context.Context, _ string, r io.Reader) (*domain.TextRecord, error) {
	_, _ = io.Copy(io.Discard, r)
	return nil, i.err
}

func do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
