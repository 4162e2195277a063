package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgate/internal/adapters/driven/answering"
	"github.com/custodia-labs/docgate/internal/adapters/driven/blob/local"
	s3store "github.com/custodia-labs/docgate/internal/adapters/driven/blob/s3"
	"github.com/custodia-labs/docgate/internal/adapters/driven/extraction"
	"github.com/custodia-labs/docgate/internal/adapters/driven/storage/badger"
	"github.com/custodia-labs/docgate/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docgate/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docgate/internal/adapters/driven/throttle"
	"github.com/custodia-labs/docgate/internal/adapters/driven/watch"
	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
	"github.com/custodia-labs/docgate/internal/core/ports/driving"
	"github.com/custodia-labs/docgate/internal/core/services"
	"github.com/custodia-labs/docgate/internal/logger"
)

// badgerSubdir holds the badger files inside metadata.dir.
const badgerSubdir = "badger"

// appServices bundles the driving ports and the resources backing them.
type appServices struct {
	settings *domain.GatewaySettings

	ingest   driving.IngestService
	deletion driving.DeletionService
	query    driving.QueryService
	files    driving.FileService
	audit    driving.AuditService

	// monitor is nil unless watching is enabled on a local blob store.
	monitor *services.ConsistencyMonitor

	closers []io.Closer
}

// Close releases the stores.
func (a *appServices) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// app is built on first use; tests inject their own.
var app *appServices

// withApp runs fn against the application services, building and closing
// them around the call unless they were injected.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *appServices) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if app != nil {
		return fn(ctx, app)
	}

	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	a, err := buildApp(settings)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("closing stores: %v", cerr)
		}
	}()
	return fn(ctx, a)
}

// buildApp wires the configured backends into the core services.
func buildApp(settings *domain.GatewaySettings) (*appServices, error) {
	a := &appServices{settings: settings}

	blobs, watcher, err := buildBlobStore(settings.Blob, settings.Watch)
	if err != nil {
		return nil, err
	}

	records, closer, err := buildMetadataStore(settings.Metadata)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	extractor := extraction.New(extraction.Config{
		URL:     settings.Extraction.URL,
		Timeout: settings.Extraction.Timeout,
		Limiter: throttle.New(settings.Extraction.RatePerSecond, 1),
	})
	answerer := answering.New(answering.Config{
		URL:     settings.Answering.URL,
		Timeout: settings.Answering.Timeout,
		Limiter: throttle.New(settings.Answering.RatePerSecond, 1),
	})

	locks := services.NewKeyLock()
	audit := services.NewAuditService(blobs, records)

	a.ingest = services.NewIngestService(blobs, records, extractor, locks)
	a.deletion = services.NewDeletionService(blobs, records, locks)
	a.query = services.NewQueryService(records, answerer)
	a.files = services.NewFileService(blobs, records)
	a.audit = audit
	if watcher != nil {
		a.monitor = services.NewConsistencyMonitor(watcher, audit, locks, services.DefaultMonitorDebounce)
	}

	logger.Debug("Blob backend: %s, metadata backend: %s", settings.Blob.Backend, settings.Metadata.Backend)
	return a, nil
}

// buildBlobStore returns the blob store and, for a watched local store, its watcher.
func buildBlobStore(cfg domain.BlobSettings, w domain.WatchSettings) (driven.BlobStore, driven.Watcher, error) {
	switch cfg.Backend {
	case domain.BlobBackendLocal:
		store, err := local.New(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening blob dir: %w", err)
		}
		if w.Enabled {
			return store, watch.New(store.Root()), nil
		}
		return store, nil, nil
	case domain.BlobBackendS3:
		if w.Enabled {
			logger.Warn("watch.enabled is ignored for the s3 blob backend")
		}
		client := s3store.NewClient(cfg.S3Region, cfg.S3Endpoint)
		return s3store.New(client, cfg.S3Bucket, cfg.S3Prefix), nil, nil
	case domain.BlobBackendMemory:
		return memory.NewBlobStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown blob backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}

// buildMetadataStore returns the metadata store and, when it holds resources, its closer.
func buildMetadataStore(cfg domain.MetadataSettings) (driven.MetadataStore, io.Closer, error) {
	switch cfg.Backend {
	case domain.MetadataBackendSQLite:
		store, err := sqlite.NewStore(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, store, nil
	case domain.MetadataBackendBadger:
		store, err := badger.NewStore(badger.Options{Dir: filepath.Join(cfg.Dir, badgerSubdir)})
		if err != nil {
			return nil, nil, fmt.Errorf("opening badger store: %w", err)
		}
		return store, store, nil
	case domain.MetadataBackendMemory:
		return memory.NewMetadataStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown metadata backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}
