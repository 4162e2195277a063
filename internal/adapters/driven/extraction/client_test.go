package extraction

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgate/internal/adapters/driven/throttle"
	"github.com/custodia-labs/docgate/internal/core/domain"
)

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, domain.DefaultExtractionURL, c.url)
	assert.Equal(t, DefaultTimeout, c.client.Timeout)
}

func TestClient_Extract_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		file, header, err := r.FormFile(FileField)
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "report.pdf", header.Filename)
		assert.Equal(t, "Hello", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"Hello"}`))
	}))
	defer server.Close()

	c := New(Config{URL: server.URL})
	text, err := c.Extract(context.Background(), "report.pdf", strings.NewReader("Hello"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
}

func TestClient_Extract_EmptyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"text":""}`))
	}))
	defer server.Close()

	text, err := New(Config{URL: server.URL}).Extract(context.Background(), "scan.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestClient_Extract_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, "boom", "status 500"},
		{"bad request", http.StatusBadRequest, "no file", "status 400"},
		{"malformed json", http.StatusOK, "not json", "decode response"},
		{"missing text", http.StatusOK, `{"other":1}`, "missing text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := New(Config{URL: server.URL}).Extract(context.Background(), "a.pdf", strings.NewReader("x"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_Extract_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(Config{URL: url}).Extract(context.Background(), "a.pdf", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestClient_Extract_RateLimitedSetsBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	limiter := throttle.New(0, 1)
	c := New(Config{URL: server.URL, Limiter: limiter})

	_, err := c.Extract(context.Background(), "a.pdf", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.True(t, limiter.RetryAt().After(time.Now().Add(30*time.Second)))
}

func TestClient_Extract_Cancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(Config{URL: server.URL}).Extract(ctx, "a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
