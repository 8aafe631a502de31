package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/readinglog/internal/metadata"
)

// BookEnricher fills catalog gaps for one shelved book.
type BookEnricher interface {
	EnrichBook(ctx context.Context, workKey string) (*metadata.EnrichmentResult, error)
}

// ShelfEnricher fills catalog gaps for every shelved book.
type ShelfEnricher interface {
	EnrichShelf(ctx context.Context) (*metadata.BulkEnrichmentResult, error)
}

// EnrichBookTask enriches a single book's metadata from the catalog.
type EnrichBookTask struct {
	WorkKey string `json:"work_key"`
}

// Config returns the queue configuration for book enrichment tasks.
func (t EnrichBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichBookProcessor creates a processor function for EnrichBookTask.
func EnrichBookProcessor(enricher BookEnricher) backlite.QueueProcessor[EnrichBookTask] {
	return func(ctx context.Context, task EnrichBookTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichBook(ctx, task.WorkKey)
		if err != nil {
			return fmt.Errorf("enrich book %s: %w", task.WorkKey, err)
		}

		if len(result.FieldsUpdated) > 0 {
			log.Printf("[TASK] Enriched %s (%s): updated %v",
				task.WorkKey, result.Book.Title, result.FieldsUpdated)
		} else {
			log.Printf("[TASK] %s (%s): no metadata updates needed",
				task.WorkKey, result.Book.Title)
		}

		return nil
	}
}

// NewEnrichBookQueue creates a backlite queue for book enrichment tasks.
func NewEnrichBookQueue(enricher BookEnricher) backlite.Queue {
	return backlite.NewQueue(EnrichBookProcessor(enricher))
}

// EnrichShelfTask enriches every shelved book missing metadata.
type EnrichShelfTask struct{}

// Config returns the queue configuration for shelf enrichment tasks.
func (t EnrichShelfTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_shelf",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichShelfProcessor creates a processor function for EnrichShelfTask.
// A run that finds another run in progress succeeds without doing anything.
func EnrichShelfProcessor(enricher ShelfEnricher) backlite.QueueProcessor[EnrichShelfTask] {
	return func(ctx context.Context, task EnrichShelfTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichShelf(ctx)
		if errors.Is(err, metadata.ErrEnrichmentRunning) {
			log.Printf("[TASK] Shelf enrichment skipped: %v", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("enrich shelf: %w", err)
		}

		log.Printf("[TASK] Enrichment complete: %d total, %d enriched, %d skipped, %d failed",
			result.TotalBooks, result.Enriched, result.Skipped, result.Failed)

		return nil
	}
}

// NewEnrichShelfQueue creates a backlite queue for shelf enrichment tasks.
func NewEnrichShelfQueue(enricher ShelfEnricher) backlite.Queue {
	return backlite.NewQueue(EnrichShelfProcessor(enricher))
}
