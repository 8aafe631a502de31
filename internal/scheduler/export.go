// Package scheduler runs cron-driven background jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/exporters"
	"github.com/mrlokans/readinglog/internal/settingsstore"
)

var (
	// ErrExportRunning is returned by Run while another export is in progress.
	ErrExportRunning = errors.New("export already in progress")

	ErrExportNotConfigured = errors.New("export directory not configured")
)

// ExportSettings resolves the export configuration and records outcomes.
type ExportSettings interface {
	GetExportConfig() settingsstore.ExportConfig
	SetExportStatus(status, message string) error
}

// StateReader provides the snapshot to export.
type StateReader interface {
	State() entities.ReadingState
	Location() *time.Location
}

// Journal records export outcomes. *audit.Auditor satisfies it.
type Journal interface {
	Record(action string, payload any) (string, error)
}

// ExporterFactory builds an exporter for the configured directory.
type ExporterFactory func(dir string, loc *time.Location) exporters.StateExporter

// ExportScheduler manages periodic reading-log exports.
type ExportScheduler struct {
	settings    ExportSettings
	state       StateReader
	newExporter ExporterFactory
	journal     Journal

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	cancel    context.CancelFunc
	baseCtx   context.Context // first Start context, reused by Reschedule
	runGen    uint64          // bumped by every Start that schedules the job

	runMu sync.Mutex
}

// NewExportScheduler creates a new scheduler instance. journal may be nil.
func NewExportScheduler(settings ExportSettings, state StateReader, journal Journal) *ExportScheduler {
	return &ExportScheduler{
		settings: settings,
		state:    state,
		journal:  journal,
		newExporter: func(dir string, loc *time.Location) exporters.StateExporter {
			return exporters.NewMarkdownExporter(dir, loc)
		},
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		))),
	}
}

// Start begins the scheduler if export is enabled
func (s *ExportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.baseCtx == nil {
		s.baseCtx = ctx
	}

	cfg := s.settings.GetExportConfig()

	if !cfg.Enabled {
		log.Printf("Export scheduler: disabled")
		return nil
	}

	if cfg.Dir == "" {
		log.Printf("Export scheduler: export directory not configured, skipping")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", cfg.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(cfg.Schedule, func() {
		if _, err := s.Run(); err != nil && !errors.Is(err, ErrExportRunning) {
			log.Printf("Export scheduler: run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancel = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	s.runGen++
	gen := s.runGen

	next, _ := settingsstore.NextRunAfter(cfg.Schedule, time.Now())
	log.Printf("Export scheduler: started with schedule '%s' (%s). Next run: %v",
		cfg.Schedule,
		settingsstore.GetCronDescription(cfg.Schedule),
		next)

	// The watcher only stops the run it belongs to; a Reschedule cancels
	// the old context after the new run has already started.
	go func() {
		<-cancelCtx.Done()
		s.stopRun(gen)
	}()

	return nil
}

// Stop waits for a running export and removes the job.
func (s *ExportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *ExportScheduler) stopRun(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runGen != gen {
		return
	}
	s.stopLocked()
}

func (s *ExportScheduler) stopLocked() {
	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entryID)

	s.isRunning = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	log.Printf("Export scheduler: stopped")
}

// Reschedule applies changed settings. The job keeps the lifetime of the
// context first passed to Start; ctx is used only when Start never ran.
func (s *ExportScheduler) Reschedule(ctx context.Context) error {
	s.Stop()

	s.mu.RLock()
	base := s.baseCtx
	s.mu.RUnlock()
	if base == nil {
		base = ctx
	}
	return s.Start(base)
}

// RunNow triggers an export in the background.
func (s *ExportScheduler) RunNow() {
	go func() {
		if _, err := s.Run(); err != nil {
			log.Printf("Export scheduler: manual run failed: %v", err)
		}
	}()
}

// IsRunning returns whether the scheduler is active
func (s *ExportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next export will occur
func (s *ExportScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// Run performs one export synchronously and records its status. Only the
// directory is required; a disabled schedule does not block a manual run.
func (s *ExportScheduler) Run() (exporters.ExportResult, error) {
	if !s.runMu.TryLock() {
		return exporters.ExportResult{}, ErrExportRunning
	}
	defer s.runMu.Unlock()

	cfg := s.settings.GetExportConfig()
	if cfg.Dir == "" {
		s.record(settingsstore.StatusFailed, "Export directory not configured", ErrExportNotConfigured)
		return exporters.ExportResult{}, ErrExportNotConfigured
	}

	log.Printf("Export: writing reading log to %s", cfg.Dir)
	startTime := time.Now()

	exporter := s.newExporter(cfg.Dir, s.state.Location())
	result, err := exporter.Export(s.state.State())
	if err != nil {
		msg := fmt.Sprintf("Export failed: %v", err)
		s.record(settingsstore.StatusFailed, msg, err)
		return result, err
	}

	msg := fmt.Sprintf("Exported reading log, %d finished books (%d failed) in %v",
		result.BooksProcessed, result.BooksFailed, time.Since(startTime).Round(time.Millisecond))
	s.record(settingsstore.StatusSuccess, msg, nil)
	return result, nil
}

func (s *ExportScheduler) record(status, message string, err error) {
	log.Printf("Export: %s", message)
	if setErr := s.settings.SetExportStatus(status, message); setErr != nil {
		log.Printf("Export: failed to record status: %v", setErr)
	}
	if s.journal == nil {
		return
	}
	payload := map[string]string{"status": status, "message": message}
	if err != nil {
		payload["error"] = err.Error()
	}
	if _, jErr := s.journal.Record("export", payload); jErr != nil {
		log.Printf("Export: failed to journal run: %v", jErr)
	}
}
