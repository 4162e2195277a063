// Package mcp provides an MCP (Model Context Protocol) server adapter for docgate.
// It lets AI assistants list stored files, read their extracted text and ask
// questions across the whole corpus.
package mcp

import "errors"

// ErrMissingFileService is returned when the file service is not provided.
var ErrMissingFileService = errors.New("mcp: file service is required")
