package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
	"github.com/custodia-labs/docgate/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyServerAddr        = "server.addr"
	keyServerMaxUpload   = "server.max_upload_bytes"
	keyServerCORSOrigin  = "server.cors_origin"
	keyBlobBackend       = "blob.backend"
	keyBlobDir           = "blob.dir"
	keyBlobS3Bucket      = "blob.s3_bucket"
	keyBlobS3Prefix      = "blob.s3_prefix"
	keyBlobS3Region      = "blob.s3_region"
	keyBlobS3Endpoint    = "blob.s3_endpoint"
	keyMetadataBackend   = "metadata.backend"
	keyMetadataDir       = "metadata.dir"
	keyExtractionURL     = "extraction.url"
	keyExtractionTimeout = "extraction.timeout_secs"
	keyExtractionRate    = "extraction.rate_per_sec"
	keyAnsweringURL      = "answering.url"
	keyAnsweringTimeout  = "answering.timeout_secs"
	keyAnsweringRate     = "answering.rate_per_sec"
	keyWatchEnabled      = "watch.enabled"
)

// Environment variables that override file configuration.
const (
	EnvPort          = "PORT"
	EnvExtractionURL = "DOCGATE_EXTRACTION_URL"
	EnvAnsweringURL  = "DOCGATE_ANSWERING_URL"
	EnvBlobDir       = "DOCGATE_BLOB_DIR"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
)

var knownKeys = map[string]valueKind{
	keyServerAddr:        kindString,
	keyServerMaxUpload:   kindInt,
	keyServerCORSOrigin:  kindString,
	keyBlobBackend:       kindString,
	keyBlobDir:           kindString,
	keyBlobS3Bucket:      kindString,
	keyBlobS3Prefix:      kindString,
	keyBlobS3Region:      kindString,
	keyBlobS3Endpoint:    kindString,
	keyMetadataBackend:   kindString,
	keyMetadataDir:       kindString,
	keyExtractionURL:     kindString,
	keyExtractionTimeout: kindInt,
	keyExtractionRate:    kindFloat,
	keyAnsweringURL:      kindString,
	keyAnsweringTimeout:  kindInt,
	keyAnsweringRate:     kindFloat,
	keyWatchEnabled:      kindBool,
}

// LookupEnvFunc resolves an environment variable.
type LookupEnvFunc func(key string) (string, bool)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   LookupEnvFunc
}

// NewSettingsService creates a new settings service.
// A nil lookupEnv uses the process environment.
func NewSettingsService(configStore driven.ConfigStore, lookupEnv LookupEnvFunc) *SettingsService {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   lookupEnv,
	}
}

// Get resolves current settings from defaults, file and environment.
func (s *SettingsService) Get() (*domain.GatewaySettings, error) {
	defaults := domain.DefaultGatewaySettings()

	settings := &domain.GatewaySettings{
		Server: domain.ServerSettings{
			Addr:           s.getString(keyServerAddr, defaults.Server.Addr),
			MaxUploadBytes: int64(s.getInt(keyServerMaxUpload, int(defaults.Server.MaxUploadBytes))),
			CORSOrigin:     s.getString(keyServerCORSOrigin, defaults.Server.CORSOrigin),
		},
		Blob: domain.BlobSettings{
			Backend:    domain.BlobBackend(s.getString(keyBlobBackend, defaults.Blob.Backend.String())),
			Dir:        s.getString(keyBlobDir, defaults.Blob.Dir),
			S3Bucket:   s.configStore.GetString(keyBlobS3Bucket),
			S3Prefix:   s.configStore.GetString(keyBlobS3Prefix),
			S3Region:   s.configStore.GetString(keyBlobS3Region),
			S3Endpoint: s.configStore.GetString(keyBlobS3Endpoint),
		},
		Metadata: domain.MetadataSettings{
			Backend: domain.MetadataBackend(s.getString(keyMetadataBackend, defaults.Metadata.Backend.String())),
			Dir:     s.getString(keyMetadataDir, defaults.Metadata.Dir),
		},
		Extraction: domain.RemoteSettings{
			URL:           s.getString(keyExtractionURL, defaults.Extraction.URL),
			Timeout:       s.getSeconds(keyExtractionTimeout, defaults.Extraction.Timeout),
			RatePerSecond: s.configStore.GetFloat(keyExtractionRate),
		},
		Answering: domain.RemoteSettings{
			URL:           s.getString(keyAnsweringURL, defaults.Answering.URL),
			Timeout:       s.getSeconds(keyAnsweringTimeout, defaults.Answering.Timeout),
			RatePerSecond: s.configStore.GetFloat(keyAnsweringRate),
		},
		Watch: domain.WatchSettings{
			Enabled: s.configStore.GetBool(keyWatchEnabled),
		},
	}

	s.applyEnv(settings)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// applyEnv overlays environment overrides.
func (s *SettingsService) applyEnv(settings *domain.GatewaySettings) {
	if port, ok := s.lookupEnv(EnvPort); ok && port != "" {
		settings.Server.Addr = ":" + port
	}
	if v, ok := s.lookupEnv(EnvExtractionURL); ok && v != "" {
		settings.Extraction.URL = v
	}
	if v, ok := s.lookupEnv(EnvAnsweringURL); ok && v != "" {
		settings.Answering.URL = v
	}
	if v, ok := s.lookupEnv(EnvBlobDir); ok && v != "" {
		settings.Blob.Dir = v
	}
}

// Set stores a single configuration key, converting value to the key's type.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	var typed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number", domain.ErrInvalidInput, key)
		}
		typed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		typed = b
	default:
		typed = value
	}

	switch key {
	case keyBlobBackend:
		if !domain.BlobBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown blob backend %q", domain.ErrInvalidInput, value)
		}
	case keyMetadataBackend:
		if !domain.MetadataBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown metadata backend %q", domain.ErrInvalidInput, value)
		}
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Lookup returns the raw stored value for key, formatted as a string.
func (s *SettingsService) Lookup(key string) (string, bool) {
	val, ok := s.configStore.Get(key)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", val), true
}

// Keys returns every configuration key docgate understands, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.GatewaySettings {
	return domain.DefaultGatewaySettings()
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return fallback
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getSeconds(key string, fallback time.Duration) time.Duration {
	if secs := s.configStore.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
