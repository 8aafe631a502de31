package http

import (
	"github.com/mrlokans/readinglog/internal/database"
	"github.com/mrlokans/readinglog/internal/reading"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. Only Store is required; routes backed by a
// nil dependency answer 503.
type RouterConfig struct {
	// Core dependencies
	Store    *reading.Store
	Database *database.Database
	Journal  Journal

	// Catalog lookups and cover images
	Catalog    CatalogClient
	CoverCache CoverStore

	// Task queue client (optional)
	TaskClient TaskQueue

	// Reading-log export
	ExportSettings  ExportSettingsStore
	ExportScheduler ExportRunner

	// Default window for activity charts
	ActivityDays int

	// Reject writes (except reload) so generated demo data stays intact
	DemoMode bool

	// Application info
	Version string
}
