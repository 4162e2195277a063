package httpapi

import (
	"errors"

	"github.com/custodia-labs/docgate/internal/core/ports/driving"
)

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("httpapi: ingest, deletion, query and file services are required")

// Ports aggregates the driving ports the HTTP surface calls into.
type Ports struct {
	Ingest   driving.IngestService
	Deletion driving.DeletionService
	Query    driving.QueryService
	Files    driving.FileService

	// Audit is optional. Without it /consistency answers 501.
	Audit driving.AuditService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ingest == nil || p.Deletion == nil || p.Query == nil || p.Files == nil {
		return ErrMissingService
	}
	return nil
}
