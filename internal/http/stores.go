package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/readinglog/internal/exporters"
	"github.com/mrlokans/readinglog/internal/metadata"
	"github.com/mrlokans/readinglog/internal/settingsstore"
)

// Each controller depends only on the calls it makes, so tests can swap in
// fakes for the network and queue backed pieces.

// CatalogClient looks books up in the public catalog.
type CatalogClient interface {
	Search(ctx context.Context, query string, limit int) ([]metadata.SearchResult, error)
	Details(ctx context.Context, workKey, editionKey string) (*metadata.Details, error)
}

// TaskQueue enqueues background work and reports its progress.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// CoverStore serves cached cover images.
type CoverStore interface {
	GetCover(ctx context.Context, workKey, coverURL string) (string, error)
}

// ExportSettingsStore reads and overrides the export settings.
type ExportSettingsStore interface {
	GetExportConfigInfo() settingsstore.ExportConfigInfo
	UpdateExportConfig(update settingsstore.ExportUpdate) error
	ClearExportConfig() error
}

// ExportRunner drives the scheduled reading-log export.
type ExportRunner interface {
	Reschedule(ctx context.Context) error
	RunNow()
	Run() (exporters.ExportResult, error)
	GetNextRunTime() *time.Time
}

// Journal records accepted mutation requests.
type Journal interface {
	Record(action string, payload any) (string, error)
}
