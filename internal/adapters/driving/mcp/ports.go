package mcp

import (
	"github.com/custodia-labs/docgate/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Files lists stored files and reads their records.
	Files driving.FileService

	// Query answers questions over all stored texts.
	Query driving.QueryService

	// Audit checks blob/record consistency.
	Audit driving.AuditService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Files == nil {
		return ErrMissingFileService
	}
	// Query and Audit are optional; their tools report an error when absent.
	return nil
}
