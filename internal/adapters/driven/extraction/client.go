// Package extraction provides an HTTP client for the remote text-extraction service.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docgate/internal/adapters/driven/throttle"
	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
	"github.com/custodia-labs/docgate/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Extractor = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 120 * time.Second

	// FileField is the multipart field the service reads the upload from.
	FileField = "file"

	maxErrorBody = 512
)

// Config holds configuration for the extraction client.
type Config struct {
	// URL is the full extraction endpoint.
	URL string

	// Timeout bounds a single request (default: 120s).
	Timeout time.Duration

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client

	// Limiter throttles requests. Nil means unlimited.
	Limiter *throttle.Limiter
}

// Client posts files to the extraction service as multipart/form-data.
type Client struct {
	client  *http.Client
	url     string
	limiter *throttle.Limiter
}

// extractResponse is the service's success body.
type extractResponse struct {
	Text *string `json:"text"`
}

// New creates a new extraction client.
func New(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = domain.DefaultExtractionURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		client:  client,
		url:     cfg.URL,
		limiter: cfg.Limiter,
	}
}

// Extract streams r to the service and returns the extracted text.
// The body is produced through a pipe so the file is never held in memory.
func (c *Client) Extract(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for extraction slot: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(FileField, filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, pr)
	if err != nil {
		pr.Close()
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	logger.Debug("POST %s (%s)", c.url, filename)
	resp, err := c.client.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.Backoff(throttle.RetryAfter(resp.Header, time.Now()))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("extraction service error (status %d): %s", resp.StatusCode, readSnippet(resp.Body))
	}

	var result extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.Text == nil {
		return "", fmt.Errorf("decode response: missing text field")
	}
	return *result.Text, nil
}

func readSnippet(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(body))
}
