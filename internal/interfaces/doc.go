// Package interfaces documents the seams between the packages of the
// reading log.
//
// # Interface Categories
//
// ## Persistence
//
//   - storage.Adapter: a single slot holding the serialized reading state
//     (internal/storage/adapter.go). Implemented by SettingsSlot (gorm
//     settings row), FileSlot (JSON file) and MemorySlot (tests).
//
// ## Catalog
//
//   - metadata.CatalogProvider: edition lookup against a book catalog (internal/metadata/enricher.go)
//   - metadata.BookUpdater: the store side of enrichment, implemented by
//     *reading.Store
//   - metadata.CoverInvalidator: drops cached covers when a cover URL changes
//
// ## Background Work
//
//   - tasks.BookEnricher, tasks.ShelfEnricher: enrichment queues
//   - tasks.CoverFetcher: cover cache warming
//   - tasks.JournalPruner: request journal retention
//
// ## Export
//
//   - exporters.StateExporter: renders a reading state snapshot to disk
//   - scheduler.ExportSettings, scheduler.StateReader, scheduler.Journal:
//     what the export scheduler needs from the rest of the app
//
// ## HTTP
//
// The controllers in internal/http depend on small interfaces declared in
// internal/http/stores.go so they can be tested against fakes:
// CatalogClient, TaskQueue, CoverStore, ExportSettingsStore, ExportRunner
// and Journal.
//
// # Adding a New Storage Backend
//
//  1. Implement storage.Adapter in internal/storage/
//
//     type S3Slot struct {
//         client *s3.Client
//         bucket string
//         key    string
//     }
//
//     func (s *S3Slot) Get(ctx context.Context) ([]byte, bool, error)
//     func (s *S3Slot) Set(ctx context.Context, data []byte) error
//
//  2. Select it in storage.NewAdapter based on config.Storage.Backend
//
//  3. Add a compile-time check to checks.go
//
// # Adding a New Catalog
//
//  1. Implement metadata.CatalogProvider in internal/metadata/, plus Search
//     if the catalog endpoints should use it too
//
//     func (c *GoogleBooksClient) Details(ctx context.Context, workKey, editionKey string) (*Details, error)
//
//  2. Pass it to metadata.NewEnricher and http.RouterConfig in entrypoint.go
//
// # Compile-Time Interface Checks
//
// Implementations carry compile-time checks so missing methods surface at
// build time:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
