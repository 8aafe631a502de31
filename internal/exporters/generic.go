// Package exporters renders the reading state as markdown notes.
package exporters

import "github.com/mrlokans/readinglog/internal/entities"

// StateExporter writes a snapshot of the reading state somewhere durable.
type StateExporter interface {
	Export(state entities.ReadingState) (ExportResult, error)
}

type ExportResult struct {
	BooksProcessed int      `json:"books_processed"`
	BooksFailed    int      `json:"books_failed"`
	SessionsListed int      `json:"sessions_listed"`
	Files          []string `json:"files,omitempty"`
}
