package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/logger"
)

// Response headers carrying orphan reports on GET /files.
const (
	headerOrphanedBlobs   = "X-Docgate-Orphaned-Blobs"
	headerOrphanedRecords = "X-Docgate-Orphaned-Records"
	headerMetadataChecked = "X-Docgate-Metadata-Checked"
)

// uploadField is the multipart form field carrying the file.
const uploadField = "file"

// maxQueryBytes caps the JSON body of a query request.
const maxQueryBytes = 1 << 20

// Response messages shared with existing clients.
const (
	msgUploaded        = "File uploaded and text extracted successfully"
	msgNoFile          = "No file uploaded."
	msgDeleted         = "File and metadata deleted successfully"
	msgBlobNotFound    = "File not found in storage"
	msgRecordNotFound  = "File metadata not found in the database"
	msgFileNotFound    = "File not found"
	msgListFailed      = "Unable to fetch files"
	msgPartialDelete   = "File deleted from storage but its metadata could not be removed"
	msgUploadFailed    = "Error uploading file."
	msgExtractFailed   = "File stored but text extraction failed."
	msgPersistFailed   = "File stored but extracted text could not be saved."
	msgQueryFailed     = "Internal Server Error"
	msgAuditNotEnabled = "Consistency checks are not enabled"
)

// recordJSON is the wire form of a text record.
type recordJSON struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Text       string    `json:"text"`
	UploadedAt time.Time `json:"uploadedAt"`
	Size       int64     `json:"size"`
	SHA256     string    `json:"sha256,omitempty"`
}

func toRecordJSON(r *domain.TextRecord) recordJSON {
	return recordJSON{
		ID:         r.ID,
		Filename:   r.Filename,
		Text:       r.Text,
		UploadedAt: r.UploadedAt.UTC(),
		Size:       r.Size,
		SHA256:     r.SHA256,
	}
}

type uploadResponse struct {
	Message  string     `json:"message"`
	TextData recordJSON `json:"textData"`
}

type uploadFailure struct {
	errorBody
	FileStored bool `json:"fileStored"`
}

type deleteResponse struct {
	Error         string `json:"error,omitempty"`
	Message       string `json:"message"`
	BlobDeleted   bool   `json:"blobDeleted"`
	RecordDeleted bool   `json:"recordDeleted"`
}

type queryRequest struct {
	Query *string `json:"query"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

type auditResponse struct {
	Consistent      bool      `json:"consistent"`
	CheckedAt       time.Time `json:"checkedAt"`
	BlobCount       int       `json:"blobCount"`
	RecordCount     int       `json:"recordCount"`
	OrphanedBlobs   []string  `json:"orphanedBlobs"`
	OrphanedRecords []string  `json:"orphanedRecords"`
	StaleRecords    []string  `json:"staleRecords"`
	ContentVerified bool      `json:"contentVerified"`
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	listing, err := s.ports.Files.List(r.Context())
	if err != nil {
		writeError(w, err, msgListFailed)
		return
	}

	h := w.Header()
	h.Set(headerMetadataChecked, strconv.FormatBool(listing.MetadataChecked))
	if len(listing.OrphanedBlobs) > 0 {
		h.Set(headerOrphanedBlobs, strings.Join(listing.OrphanedBlobs, ","))
	}
	if len(listing.OrphanedRecords) > 0 {
		h.Set(headerOrphanedRecords, strings.Join(listing.OrphanedRecords, ","))
	}

	files := listing.Files
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["fileName"]
	logger.Debug("Request for file: %q", name)

	rc, err := s.ports.Files.Open(r.Context(), name)
	if err != nil {
		msg := ""
		if errors.Is(err, domain.ErrNotFound) {
			msg = msgFileNotFound
		}
		writeError(w, err, msg)
		return
	}
	defer rc.Close()

	ext := strings.ToLower(path.Ext(name))
	if ext != ".pdf" {
		disposition := mime.FormatMediaType("inline", map[string]string{"filename": name})
		if disposition == "" {
			disposition = "inline"
		}
		w.Header().Set("Content-Disposition", disposition)
	}

	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, modTime(rc), rs)
		return
	}

	ctype := mime.TypeByExtension(ext)
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		logger.Warn("Streaming %q aborted: %v", name, err)
	}
}

// modTime returns the blob's modification time when the reader exposes one.
func modTime(rc io.Reader) time.Time {
	if st, ok := rc.(interface{ Stat() (fs.FileInfo, error) }); ok {
		if info, err := st.Stat(); err == nil {
			return info.ModTime()
		}
	}
	return time.Time{}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "no_file", Message: msgNoFile})
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, err, "")
				return
			}
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed_upload", Message: err.Error()})
			return
		}

		if part.FormName() != uploadField || part.FileName() == "" {
			part.Close()
			continue
		}

		s.ingestPart(w, r, part.FileName(), part)
		part.Close()
		return
	}

	writeJSON(w, http.StatusBadRequest, errorBody{Error: "no_file", Message: msgNoFile})
}

func (s *Server) ingestPart(w http.ResponseWriter, r *http.Request, filename string, body io.Reader) {
	record, err := s.ports.Ingest.Ingest(r.Context(), filename, body)
	if err == nil {
		writeJSON(w, http.StatusOK, uploadResponse{Message: msgUploaded, TextData: toRecordJSON(record)})
		return
	}

	status, code := classify(err)
	if status < http.StatusInternalServerError {
		writeError(w, err, "")
		return
	}

	failure := uploadFailure{errorBody: errorBody{Error: code, Message: msgUploadFailed}}
	switch {
	case errors.Is(err, domain.ErrExtractionFailed):
		failure.Message = msgExtractFailed
		failure.FileStored = true
	case errors.Is(err, domain.ErrPersistence):
		failure.Message = msgPersistFailed
		failure.FileStored = true
	}
	logger.Error("Upload of %q failed: %v", filename, err)
	writeJSON(w, status, failure)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["fileName"]

	outcome, err := s.ports.Deletion.Delete(r.Context(), name)
	resp := deleteResponse{
		Message:       msgDeleted,
		BlobDeleted:   outcome.BlobDeleted,
		RecordDeleted: outcome.RecordDeleted,
	}
	if err == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	status, code := classify(err)
	resp.Error = code
	switch {
	case errors.Is(err, domain.ErrNotFound) && outcome.BlobDeleted:
		resp.Message = msgRecordNotFound
	case errors.Is(err, domain.ErrNotFound):
		resp.Message = msgBlobNotFound
	case errors.Is(err, domain.ErrPartialDelete):
		resp.Message = msgPartialDelete
	default:
		resp.Message = err.Error()
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Delete of %q failed: %v", name, err)
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_input", Message: "request body must be JSON with a query field"})
		return
	}
	if req.Query == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_input", Message: "query is required"})
		return
	}

	answer, err := s.ports.Query.Query(r.Context(), *req.Query)
	if err != nil {
		msg := msgQueryFailed
		if errors.Is(err, domain.ErrInvalidInput) {
			msg = ""
		}
		writeError(w, err, msg)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Answer: answer})
}

func (s *Server) handleConsistency(w http.ResponseWriter, r *http.Request) {
	if s.ports.Audit == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "not_implemented", Message: msgAuditNotEnabled})
		return
	}

	verify := false
	if v := r.URL.Query().Get("verify"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_input", Message: "verify must be true or false"})
			return
		}
		verify = b
	}

	report, err := s.ports.Audit.Audit(r.Context(), domain.AuditOptions{VerifyContent: verify})
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, auditResponse{
		Consistent:      report.Consistent(),
		CheckedAt:       report.CheckedAt,
		BlobCount:       report.BlobCount,
		RecordCount:     report.RecordCount,
		OrphanedBlobs:   nonNil(report.OrphanedBlobs),
		OrphanedRecords: nonNil(report.OrphanedRecords),
		StaleRecords:    nonNil(report.StaleRecords),
		ContentVerified: report.ContentVerified,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
