// Package answering provides an HTTP client for the remote question-answering service.
package answering

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docgate/internal/adapters/driven/throttle"
	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
	"github.com/custodia-labs/docgate/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Answerer = (*Client)(nil)

// DefaultTimeout bounds a single answering request.
const DefaultTimeout = 120 * time.Second

// Config holds configuration for the answering client.
type Config struct {
	// URL is the full answering endpoint.
	URL string

	// Timeout bounds a single request (default: 120s).
	Timeout time.Duration

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client

	// Limiter throttles requests. Nil means unlimited.
	Limiter *throttle.Limiter
}

// Client posts a query and the stored texts as JSON.
type Client struct {
	client  *http.Client
	url     string
	limiter *throttle.Limiter
}

type queryRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type queryResponse struct {
	Answer *string `json:"answer"`
}

// New creates a new answering client.
func New(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = domain.DefaultAnsweringURL
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

// Answer sends {query, texts} and returns the answer string.
func (c *Client) Answer(ctx context.Context, query string, texts []string) (string, error) {
	if texts == nil {
		texts = []string{}
	}
	jsonBody, err := json.Marshal(queryRequest{Query: query, Texts: texts})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for answering slot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("POST %s (%d texts, %d bytes)", c.url, len(texts), len(jsonBody))
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.Backoff(throttle.RetryAfter(resp.Header, time.Now()))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("answering service error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.Answer == nil {
		return "", fmt.Errorf("decode response: missing answer field")
	}
	return *result.Answer, nil
}
