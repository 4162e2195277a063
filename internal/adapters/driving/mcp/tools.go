package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docgate/internal/core/domain"
)

var (
	errQueryUnavailable = errors.New("query service not configured")
	errAuditUnavailable = errors.New("audit service not configured")
)

// ListFilesInput is the input schema for the list_files tool.
type ListFilesInput struct{}

// ListFilesOutput is the output schema for the list_files tool.
type ListFilesOutput struct {
	Files           []string `json:"files"`
	Count           int      `json:"count"`
	OrphanedBlobs   []string `json:"orphaned_blobs,omitempty"`
	OrphanedRecords []string `json:"orphaned_records,omitempty"`
}

// QueryInput is the input schema for the query_documents tool.
type QueryInput struct {
	Query string `json:"query" jsonschema:"the question to answer from the stored documents"`
}

// QueryOutput is the output schema for the query_documents tool.
type QueryOutput struct {
	Answer string `json:"answer"`
}

// FileTextInput is the input schema for the get_file_text tool.
type FileTextInput struct {
	Filename string `json:"filename" jsonschema:"name of the stored file"`
}

// FileTextOutput is the output schema for the get_file_text tool.
type FileTextOutput struct {
	Filename   string `json:"filename"`
	Text       string `json:"text"`
	UploadedAt string `json:"uploaded_at"`
	Size       int64  `json:"size"`
}

// ConsistencyInput is the input schema for the check_consistency tool.
type ConsistencyInput struct {
	Verify bool `json:"verify,omitempty" jsonschema:"re-hash blobs and compare with stored digests"`
}

// ConsistencyOutput is the output schema for the check_consistency tool.
type ConsistencyOutput struct {
	Consistent      bool     `json:"consistent"`
	BlobCount       int      `json:"blob_count"`
	RecordCount     int      `json:"record_count"`
	OrphanedBlobs   []string `json:"orphaned_blobs"`
	OrphanedRecords []string `json:"orphaned_records"`
	StaleRecords    []string `json:"stale_records"`
	ContentVerified bool     `json:"content_verified"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_files",
		Description: "List every stored file",
	}, s.handleListFiles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_documents",
		Description: "Answer a question using the text of all stored documents",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_file_text",
		Description: "Return the extracted text of one stored file",
	}, s.handleFileText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_consistency",
		Description: "Report files missing their text record and records missing their file",
	}, s.handleConsistency)
}

func (s *Server) handleListFiles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListFilesInput,
) (*mcp.CallToolResult, ListFilesOutput, error) {
	listing, err := s.ports.Files.List(ctx)
	if err != nil {
		return nil, ListFilesOutput{}, err
	}

	files := listing.Files
	if files == nil {
		files = []string{}
	}
	return nil, ListFilesOutput{
		Files:           files,
		Count:           len(files),
		OrphanedBlobs:   listing.OrphanedBlobs,
		OrphanedRecords: listing.OrphanedRecords,
	}, nil
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	if s.ports.Query == nil {
		return nil, QueryOutput{}, errQueryUnavailable
	}

	answer, err := s.ports.Query.Query(ctx, input.Query)
	if err != nil {
		return nil, QueryOutput{}, err
	}
	return nil, QueryOutput{Answer: answer}, nil
}

func (s *Server) handleFileText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FileTextInput,
) (*mcp.CallToolResult, FileTextOutput, error) {
	record, err := s.ports.Files.Record(ctx, input.Filename)
	if err != nil {
		return nil, FileTextOutput{}, err
	}
	return nil, FileTextOutput{
		Filename:   record.Filename,
		Text:       record.Text,
		UploadedAt: record.UploadedAt.UTC().Format(timeFormat),
		Size:       record.Size,
	}, nil
}

func (s *Server) handleConsistency(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConsistencyInput,
) (*mcp.CallToolResult, ConsistencyOutput, error) {
	if s.ports.Audit == nil {
		return nil, ConsistencyOutput{}, errAuditUnavailable
	}

	report, err := s.ports.Audit.Audit(ctx, domain.AuditOptions{VerifyContent: input.Verify})
	if err != nil {
		return nil, ConsistencyOutput{}, err
	}
	return nil, ConsistencyOutput{
		Consistent:      report.Consistent(),
		BlobCount:       report.BlobCount,
		RecordCount:     report.RecordCount,
		OrphanedBlobs:   nonNil(report.OrphanedBlobs),
		OrphanedRecords: nonNil(report.OrphanedRecords),
		StaleRecords:    nonNil(report.StaleRecords),
		ContentVerified: report.ContentVerified,
	}, nil
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
