package interfaces

// Compile-time checks that the concrete types wired in entrypoint satisfy
// the interfaces their consumers declare.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/covers"
	"github.com/mrlokans/readinglog/internal/exporters"
	"github.com/mrlokans/readinglog/internal/http"
	"github.com/mrlokans/readinglog/internal/metadata"
	"github.com/mrlokans/readinglog/internal/reading"
	"github.com/mrlokans/readinglog/internal/scheduler"
	"github.com/mrlokans/readinglog/internal/settingsstore"
	"github.com/mrlokans/readinglog/internal/storage"
	"github.com/mrlokans/readinglog/internal/tasks"
)

// =============================================================================
// Storage slots
// =============================================================================

var (
	_ storage.Adapter = (*storage.SettingsSlot)(nil)
	_ storage.Adapter = (*storage.FileSlot)(nil)
	_ storage.Adapter = (*storage.MemorySlot)(nil)
)

// =============================================================================
// Metadata
// =============================================================================

var (
	_ metadata.CatalogProvider  = (*metadata.OpenLibraryClient)(nil)
	_ metadata.BookUpdater      = (*reading.Store)(nil)
	_ metadata.CoverInvalidator = (*covers.Cache)(nil)
)

// =============================================================================
// Background tasks
// =============================================================================

var (
	_ tasks.BookEnricher  = (*metadata.Enricher)(nil)
	_ tasks.ShelfEnricher = (*metadata.Enricher)(nil)
	_ tasks.CoverFetcher  = (*covers.Cache)(nil)
	_ tasks.JournalPruner = (*audit.Auditor)(nil)
)

// =============================================================================
// Export
// =============================================================================

var (
	_ exporters.StateExporter  = (*exporters.MarkdownExporter)(nil)
	_ scheduler.ExportSettings = (*settingsstore.SettingsStore)(nil)
	_ scheduler.StateReader    = (*reading.Store)(nil)
	_ scheduler.Journal        = (*audit.Auditor)(nil)
)

// =============================================================================
// HTTP controllers
// =============================================================================

var (
	_ http.CatalogClient       = (*metadata.OpenLibraryClient)(nil)
	_ http.TaskQueue           = (*tasks.Client)(nil)
	_ http.CoverStore          = (*covers.Cache)(nil)
	_ http.ExportSettingsStore = (*settingsstore.SettingsStore)(nil)
	_ http.ExportRunner        = (*scheduler.ExportScheduler)(nil)
	_ http.Journal             = (*audit.Auditor)(nil)
)
