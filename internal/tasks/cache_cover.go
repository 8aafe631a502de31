package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// CoverFetcher downloads a cover into the local cache.
type CoverFetcher interface {
	GetCover(ctx context.Context, workKey, coverURL string) (string, error)
}

// CacheCoverTask warms the cover cache for one book.
type CacheCoverTask struct {
	WorkKey  string `json:"work_key"`
	CoverURL string `json:"cover_url"`
}

// Config returns the queue configuration for cover caching tasks.
func (t CacheCoverTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cache_cover",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   6 * time.Hour,
			OnlyFailed: true,
		},
	}
}

// CacheCoverProcessor creates a processor function for CacheCoverTask.
func CacheCoverProcessor(fetcher CoverFetcher) backlite.QueueProcessor[CacheCoverTask] {
	return func(ctx context.Context, task CacheCoverTask) error {
		if fetcher == nil {
			return fmt.Errorf("cover cache not configured")
		}
		if task.CoverURL == "" {
			return nil
		}

		path, err := fetcher.GetCover(ctx, task.WorkKey, task.CoverURL)
		if err != nil {
			return fmt.Errorf("cache cover for %s: %w", task.WorkKey, err)
		}
		log.Printf("[TASK] Cached cover for %s at %s", task.WorkKey, path)
		return nil
	}
}

// NewCacheCoverQueue creates a backlite queue for cover caching tasks.
func NewCacheCoverQueue(fetcher CoverFetcher) backlite.Queue {
	return backlite.NewQueue(CacheCoverProcessor(fetcher))
}
