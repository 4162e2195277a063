package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/docgate/internal/core/domain"
)

// mockFileService is a mock implementation of driving.FileService.
type mockFileService struct {
	listing *domain.Listing
	records map[string]*domain.TextRecord
	err     error
}

func (m *mockFileService) List(_ context.Context) (*domain.Listing, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.listing == nil {
		return &domain.Listing{MetadataChecked: true}, nil
	}
	return m.listing, nil
}

func (m *mockFileService) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockFileService) Record(_ context.Context, filename string) (*domain.TextRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.records[filename]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer string
	err    error
	query  string
}

func (m *mockQueryService) Query(_ context.Context, query string) (string, error) {
	m.query = query
	return m.answer, m.err
}

// mockAuditService is a mock implementation of driving.AuditService.
type mockAuditService struct {
	report *domain.AuditReport
	opts   domain.AuditOptions
	err    error
}

func (m *mockAuditService) Audit(_ context.Context, opts domain.AuditOptions) (*domain.AuditReport, error) {
	m.opts = opts
	return m.report, m.err
}
