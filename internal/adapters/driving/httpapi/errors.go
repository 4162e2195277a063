package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/logger"
)

// errorBody is the JSON shape of every failure response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// classify maps an orchestrator error onto a status and a stable error code.
func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrPartialDelete):
		return http.StatusInternalServerError, "partial_delete"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "upload_failed"
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusInternalServerError, "extraction_failed"
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, "persistence_error"
	case errors.Is(err, domain.ErrAnsweringFailed):
		return http.StatusInternalServerError, "answering_failed"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusInternalServerError, "storage_unavailable"
	case errors.Is(err, domain.ErrNotImplemented):
		return http.StatusNotImplemented, "not_implemented"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError logs err and writes it with the given user-facing message.
// An empty message falls back to the error text.
func writeError(w http.ResponseWriter, err error, message string) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("%s: %v", code, err)
	} else {
		logger.Debug("%s: %v", code, err)
	}
	if message == "" {
		message = err.Error()
	}
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response: %v", err)
	}
}
