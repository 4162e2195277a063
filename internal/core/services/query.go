package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
	"github.com/custodia-labs/docgate/internal/core/ports/driving"
	"github.com/custodia-labs/docgate/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService fans a question out over every stored text.
type QueryService struct {
	records  driven.MetadataStore
	answerer driven.Answerer
}

// NewQueryService creates a new query service.
func NewQueryService(records driven.MetadataStore, answerer driven.Answerer) *QueryService {
	return &QueryService{
		records:  records,
		answerer: answerer,
	}
}

// Query collects all texts in store order and forwards them with the query.
// With no stored records it returns domain.NoFilesAnswer without calling
// the answering service.
func (s *QueryService) Query(ctx context.Context, query string) (string, error) {
	if s.records == nil || s.answerer == nil {
		return "", domain.ErrNotImplemented
	}
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("%w: query cannot be empty", domain.ErrInvalidInput)
	}

	logger.Section("Query")
	logger.Debug("Query: %q", query)

	records, err := s.records.FindAll(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if len(records) == 0 {
		logger.Debug("No records stored, returning canned answer")
		return domain.NoFilesAnswer, nil
	}

	texts := make([]string, len(records))
	for i := range records {
		texts[i] = records[i].Text
	}
	logger.Debug("Forwarding %d texts", len(texts))

	answer, err := s.answerer.Answer(ctx, query, texts)
	if err != nil {
		logger.Warn("Answering failed: %v", err)
		return "", fmt.Errorf("%w: %w", domain.ErrAnsweringFailed, err)
	}
	return answer, nil
}
