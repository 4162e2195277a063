package services

import (
	"context"
	"time"

	"github.com/custodia-labs/docgate/internal/core/domain"
	"github.com/custodia-labs/docgate/internal/core/ports/driven"
	"github.com/custodia-labs/docgate/internal/core/ports/driving"
	"github.com/custodia-labs/docgate/internal/logger"
)

// DefaultMonitorDebounce groups bursts of blob events into one audit.
const DefaultMonitorDebounce = 2 * time.Second

// ConsistencyMonitor audits the stores after changes made outside the API,
// such as files copied into or deleted from the upload directory by hand.
type ConsistencyMonitor struct {
	watcher  driven.Watcher
	audit    driving.AuditService
	locks    *KeyLock
	debounce time.Duration

	// onReport is called after each audit. Used by tests.
	onReport func(*domain.AuditReport)
}

// NewConsistencyMonitor creates a monitor. Events for filenames held in locks
// come from the API's own ingest or delete and are ignored; locks may be nil.
// A non-positive debounce uses DefaultMonitorDebounce.
func NewConsistencyMonitor(watcher driven.Watcher, audit driving.AuditService, locks *KeyLock, debounce time.Duration) *ConsistencyMonitor {
	if debounce <= 0 {
		debounce = DefaultMonitorDebounce
	}
	return &ConsistencyMonitor{
		watcher:  watcher,
		audit:    audit,
		locks:    locks,
		debounce: debounce,
	}
}

// Run blocks until ctx is cancelled or the watcher fails.
func (m *ConsistencyMonitor) Run(ctx context.Context) error {
	events := make(chan driven.BlobEvent, 64)
	watchErr := make(chan error, 1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { watchErr <- m.watcher.Watch(ctx, events) }()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-watchErr:
			return err
		case ev := <-events:
			if m.locks != nil && m.locks.Busy(ev.Name) {
				logger.Debug("Upload dir %s: %s (in progress via API)", ev.Op, ev.Name)
				continue
			}
			logger.Info("Upload dir changed outside the API: %s %s", ev.Op, ev.Name)
			if timer == nil {
				timer = time.NewTimer(m.debounce)
			} else {
				timer.Reset(m.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			m.runAudit(ctx)
		}
	}
}

func (m *ConsistencyMonitor) runAudit(ctx context.Context) {
	report, err := m.audit.Audit(ctx, domain.AuditOptions{})
	if err != nil {
		logger.Warn("Consistency audit failed: %v", err)
		return
	}
	if !report.Consistent() {
		logger.Warn("Storage inconsistent: orphaned blobs %v, orphaned records %v",
			report.OrphanedBlobs, report.OrphanedRecords)
	}
	if m.onReport != nil {
		m.onReport(report)
	}
}
