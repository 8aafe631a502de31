package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// JournalPruner removes journaled requests older than a retention period.
type JournalPruner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// PruneAuditJournalTask trims the request journal. A zero Retention uses
// the client default.
type PruneAuditJournalTask struct {
	Retention time.Duration `json:"retention"`
}

func (t PruneAuditJournalTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_audit_journal",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
		},
	}
}

func PruneAuditJournalProcessor(pruner JournalPruner, fallback time.Duration) backlite.QueueProcessor[PruneAuditJournalTask] {
	return func(ctx context.Context, task PruneAuditJournalTask) error {
		if pruner == nil {
			return fmt.Errorf("audit journal not configured")
		}

		retention := task.Retention
		if retention <= 0 {
			retention = fallback
		}

		deleted, err := pruner.DeleteOldEvents(retention)
		if err != nil {
			return fmt.Errorf("prune audit journal: %w", err)
		}
		if deleted > 0 {
			log.Printf("[TASK] Removed %d journaled requests older than %s", deleted, retention)
		}
		return nil
	}
}

func NewPruneAuditJournalQueue(pruner JournalPruner, fallback time.Duration) backlite.Queue {
	return backlite.NewQueue(PruneAuditJournalProcessor(pruner, fallback))
}
