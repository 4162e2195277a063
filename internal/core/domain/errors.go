package domain

import "errors"

// Domain errors classify failures at the orchestrator boundary.
// Adapters wrap their causes; orchestrators join one of these sentinels
// with the cause so callers can classify with errors.Is.
var (
	// ErrNotFound indicates the requested filename is absent in the relevant store.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUploadFailed indicates the blob write failed.
	// No record was created and no partial state remains.
	ErrUploadFailed = errors.New("upload failed")

	// ErrExtractionFailed indicates the extraction service returned an error
	// or could not be reached.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrPersistence indicates a metadata read or write failed.
	ErrPersistence = errors.New("persistence error")

	// ErrAnsweringFailed indicates the answering service returned an error
	// or could not be reached.
	ErrAnsweringFailed = errors.New("answering failed")

	// ErrPartialDelete indicates the blob was removed but its metadata
	// record could not be deleted. The record is now orphaned.
	ErrPartialDelete = errors.New("partial delete: blob removed, metadata stale")

	// ErrStorageUnavailable indicates the blob directory could not be enumerated.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
