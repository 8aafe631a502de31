package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/reading"
)

// ErrEnrichmentRunning is returned when a shelf enrichment is already in progress.
var ErrEnrichmentRunning = errors.New("metadata enrichment is already in progress")

// CatalogProvider defines the interface for fetching book metadata.
type CatalogProvider interface {
	Details(ctx context.Context, workKey, editionKey string) (*Details, error)
}

// BookUpdater is the part of the reading store the enricher writes through.
type BookUpdater interface {
	Lookup(workKey string) (entities.Book, entities.ShelfStatus, bool)
	ApplyMetadata(workKey string, patch reading.MetadataPatch) (entities.ReadingState, bool)
	State() entities.ReadingState
}

// CoverInvalidator defines the interface for invalidating cached covers.
type CoverInvalidator interface {
	InvalidateCover(workKey string) error
}

// EnrichmentResult contains the result of an enrichment operation.
type EnrichmentResult struct {
	Book          entities.Book        `json:"book"`
	Shelf         entities.ShelfStatus `json:"shelf"`
	FieldsUpdated []string             `json:"fieldsUpdated"`
	Source        string               `json:"source"`
}

// BulkEnrichmentResult contains the summary of a bulk enrichment operation.
type BulkEnrichmentResult struct {
	TotalBooks int      `json:"totalBooks"`
	Enriched   int      `json:"enriched"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// Enricher fills catalog gaps in books already on a shelf.
type Enricher struct {
	provider         CatalogProvider
	store            BookUpdater
	coverInvalidator CoverInvalidator
	running          atomic.Bool
}

func NewEnricher(provider CatalogProvider, store BookUpdater) *Enricher {
	return &Enricher{
		provider: provider,
		store:    store,
	}
}

// SetCoverInvalidator sets the cover cache invalidator (optional).
func (e *Enricher) SetCoverInvalidator(invalidator CoverInvalidator) {
	e.coverInvalidator = invalidator
}

// NeedsEnrichment reports whether a record is missing catalog data.
func NeedsEnrichment(b entities.Book) bool {
	return b.CoverURL == "" || b.TotalPages == nil || len(b.Authors) == 0 || b.EditionKey == ""
}

// EnrichBook fetches catalog details for a shelved book and fills whatever
// the stored record lacks.
func (e *Enricher) EnrichBook(ctx context.Context, workKey string) (*EnrichmentResult, error) {
	book, shelf, ok := e.store.Lookup(workKey)
	if !ok {
		return nil, fmt.Errorf("book %q is not on any shelf", workKey)
	}

	details, err := e.provider.Details(ctx, book.WorkKey, book.EditionKey)
	if err != nil {
		return nil, fmt.Errorf("fetch details: %w", err)
	}

	patch, fieldsUpdated := buildPatch(book, details)
	result := &EnrichmentResult{
		Book:          book,
		Shelf:         shelf,
		FieldsUpdated: fieldsUpdated,
		Source:        "openlibrary",
	}
	if len(fieldsUpdated) == 0 {
		return result, nil
	}

	if _, changed := e.store.ApplyMetadata(book.WorkKey, patch); !changed {
		// The record was filled concurrently.
		result.FieldsUpdated = nil
		return result, nil
	}

	if patch.CoverURL != "" && e.coverInvalidator != nil {
		if err := e.coverInvalidator.InvalidateCover(book.WorkKey); err != nil {
			log.Printf("Enricher: failed to invalidate cover for %s: %v", book.WorkKey, err)
		}
	}

	if updated, shelf, ok := e.store.Lookup(book.WorkKey); ok {
		result.Book = updated
		result.Shelf = shelf
	}
	return result, nil
}

// EnrichShelf enriches every shelved book that is missing metadata. Only one
// run may be active at a time.
func (e *Enricher) EnrichShelf(ctx context.Context) (*BulkEnrichmentResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrEnrichmentRunning
	}
	defer e.running.Store(false)

	var books []entities.Book
	for _, b := range e.store.State().Books() {
		if NeedsEnrichment(b) {
			books = append(books, b)
		}
	}

	result := &BulkEnrichmentResult{
		TotalBooks: len(books),
	}

	for _, book := range books {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "operation cancelled")
			return result, ctx.Err()
		default:
		}

		enrichResult, err := e.EnrichBook(ctx, book.WorkKey)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", book.Title, err))
			continue
		}

		if len(enrichResult.FieldsUpdated) > 0 {
			result.Enriched++
		} else {
			result.Skipped++
		}
	}

	log.Printf("Enricher: shelf enrichment done, %d enriched, %d skipped, %d failed",
		result.Enriched, result.Skipped, result.Failed)
	return result, nil
}

// buildPatch keeps only the details that fill an empty field of book.
func buildPatch(book entities.Book, details *Details) (reading.MetadataPatch, []string) {
	var patch reading.MetadataPatch
	var fieldsUpdated []string

	if book.EditionKey == "" && details.EditionKey != "" {
		patch.EditionKey = details.EditionKey
		fieldsUpdated = append(fieldsUpdated, "editionKey")
	}

	if book.Title == "" && details.Title != "" {
		patch.Title = details.Title
		fieldsUpdated = append(fieldsUpdated, "title")
	}

	if len(book.Authors) == 0 && len(details.Authors) > 0 {
		patch.Authors = details.Authors
		fieldsUpdated = append(fieldsUpdated, "authors")
	}

	if book.CoverURL == "" && details.CoverURL != "" {
		patch.CoverURL = details.CoverURL
		fieldsUpdated = append(fieldsUpdated, "coverUrl")
	}

	if book.TotalPages == nil && details.NumberOfPages > 0 {
		patch.TotalPages = entities.IntPtr(details.NumberOfPages)
		fieldsUpdated = append(fieldsUpdated, "totalPages")
	}

	return patch, fieldsUpdated
}
