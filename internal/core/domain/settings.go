package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// BlobBackend selects where uploaded bytes are kept.
type BlobBackend string

// Available blob backends.
const (
	// BlobBackendLocal stores blobs in a directory on local disk.
	BlobBackendLocal BlobBackend = "local"

	// BlobBackendS3 stores blobs in an S3-compatible bucket.
	BlobBackendS3 BlobBackend = "s3"

	// BlobBackendMemory keeps blobs in process memory. Nothing survives a restart.
	BlobBackendMemory BlobBackend = "memory"
)

// IsValid returns true if the blob backend is recognised.
func (b BlobBackend) IsValid() bool {
	switch b {
	case BlobBackendLocal, BlobBackendS3, BlobBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b BlobBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b BlobBackend) Description() string {
	switch b {
	case BlobBackendLocal:
		return "Local directory"
	case BlobBackendS3:
		return "S3-compatible object storage"
	case BlobBackendMemory:
		return "In-memory (ephemeral)"
	default:
		return unknownDescription
	}
}

// MetadataBackend selects where text records are kept.
type MetadataBackend string

// Available metadata backends.
const (
	// MetadataBackendSQLite stores records in an embedded SQLite database.
	MetadataBackendSQLite MetadataBackend = "sqlite"

	// MetadataBackendBadger stores records in an embedded BadgerDB key-value store.
	MetadataBackendBadger MetadataBackend = "badger"

	// MetadataBackendMemory keeps records in process memory.
	MetadataBackendMemory MetadataBackend = "memory"
)

// IsValid returns true if the metadata backend is recognised.
func (m MetadataBackend) IsValid() bool {
	switch m {
	case MetadataBackendSQLite, MetadataBackendBadger, MetadataBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m MetadataBackend) String() string {
	return string(m)
}

// Description returns a human-readable description of the backend.
func (m MetadataBackend) Description() string {
	switch m {
	case MetadataBackendSQLite:
		return "SQLite (embedded SQL)"
	case MetadataBackendBadger:
		return "BadgerDB (embedded key-value)"
	case MetadataBackendMemory:
		return "In-memory (ephemeral)"
	default:
		return unknownDescription
	}
}

// ServerSettings holds HTTP listener configuration.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":5000".
	Addr string

	// MaxUploadBytes caps the size of an upload request body.
	MaxUploadBytes int64

	// CORSOrigin is sent as Access-Control-Allow-Origin. Empty disables CORS.
	CORSOrigin string
}

// BlobSettings holds blob store configuration.
type BlobSettings struct {
	Backend BlobBackend

	// Dir is the upload directory for the local backend.
	Dir string

	// S3 settings, used only by the s3 backend.
	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Endpoint string
}

// MetadataSettings holds metadata store configuration.
type MetadataSettings struct {
	Backend MetadataBackend

	// Dir holds the database files for sqlite and badger.
	Dir string
}

// RemoteSettings configures a call-out to an external service.
type RemoteSettings struct {
	// URL is the full endpoint URL.
	URL string

	// Timeout bounds a single request.
	Timeout time.Duration

	// RatePerSecond throttles outbound requests. Zero means unlimited.
	RatePerSecond float64
}

// WatchSettings configures the upload directory watcher.
type WatchSettings struct {
	Enabled bool
}

// GatewaySettings holds all application settings.
type GatewaySettings struct {
	Server     ServerSettings
	Blob       BlobSettings
	Metadata   MetadataSettings
	Extraction RemoteSettings
	Answering  RemoteSettings
	Watch      WatchSettings
}

// Default endpoints of the hosted extraction and answering service.
const (
	DefaultExtractionURL = "https://pythonpdf-13ms.onrender.com/extract"
	DefaultAnsweringURL  = "https://pythonpdf-13ms.onrender.com/pdf-query"
)

// DefaultGatewaySettings returns settings with sensible defaults.
func DefaultGatewaySettings() GatewaySettings {
	return GatewaySettings{
		Server: ServerSettings{
			Addr:           ":5000",
			MaxUploadBytes: 64 << 20,
			CORSOrigin:     "*",
		},
		Blob: BlobSettings{
			Backend: BlobBackendLocal,
			Dir:     "uploads",
		},
		Metadata: MetadataSettings{
			Backend: MetadataBackendSQLite,
			Dir:     "data",
		},
		Extraction: RemoteSettings{
			URL:     DefaultExtractionURL,
			Timeout: 120 * time.Second,
		},
		Answering: RemoteSettings{
			URL:     DefaultAnsweringURL,
			Timeout: 120 * time.Second,
		},
	}
}

// Validate checks that the settings describe a runnable gateway.
func (s *GatewaySettings) Validate() error {
	if s.Server.Addr == "" {
		return fmt.Errorf("%w: server address is required", ErrInvalidInput)
	}
	if s.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: max upload bytes must be positive", ErrInvalidInput)
	}
	if !s.Blob.Backend.IsValid() {
		return fmt.Errorf("%w: unknown blob backend %q", ErrInvalidInput, s.Blob.Backend)
	}
	if s.Blob.Backend == BlobBackendLocal && s.Blob.Dir == "" {
		return fmt.Errorf("%w: blob directory is required", ErrInvalidInput)
	}
	if s.Blob.Backend == BlobBackendS3 && s.Blob.S3Bucket == "" {
		return fmt.Errorf("%w: s3 bucket is required", ErrInvalidInput)
	}
	if !s.Metadata.Backend.IsValid() {
		return fmt.Errorf("%w: unknown metadata backend %q", ErrInvalidInput, s.Metadata.Backend)
	}
	if s.Metadata.Backend != MetadataBackendMemory && s.Metadata.Dir == "" {
		return fmt.Errorf("%w: metadata directory is required", ErrInvalidInput)
	}
	if s.Extraction.URL == "" {
		return fmt.Errorf("%w: extraction URL is required", ErrInvalidInput)
	}
	if s.Answering.URL == "" {
		return fmt.Errorf("%w: answering URL is required", ErrInvalidInput)
	}
	return nil
}

// AllBlobBackends returns all available blob backends.
func AllBlobBackends() []BlobBackend {
	return []BlobBackend{BlobBackendLocal, BlobBackendS3, BlobBackendMemory}
}

// AllMetadataBackends returns all available metadata backends.
func AllMetadataBackends() []MetadataBackend {
	return []MetadataBackend{MetadataBackendSQLite, MetadataBackendBadger, MetadataBackendMemory}
}
