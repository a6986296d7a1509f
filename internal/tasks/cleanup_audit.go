package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/libroapp/libro/internal/audit"
)

// CleanupAuditTask prunes audit events past the retention window.
type CleanupAuditTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
		},
	}
}

// CleanupAuditProcessor creates the processor for CleanupAuditTask.
func CleanupAuditProcessor(repo *audit.Repository) backlite.QueueProcessor[CleanupAuditTask] {
	return func(ctx context.Context, task CleanupAuditTask) error {
		if repo == nil {
			return fmt.Errorf("audit repository not configured")
		}

		days := task.RetentionDays
		if days <= 0 {
			days = 30
		}
		cutoff := time.Now().AddDate(0, 0, -days)

		deleted, err := repo.DeleteOlderThan(cutoff)
		if err != nil {
			return fmt.Errorf("delete old audit events: %w", err)
		}

		if deleted > 0 {
			log.Printf("[TASK] Pruned %d audit events older than %d days", deleted, days)
		}
		return nil
	}
}

// NewCleanupAuditQueue creates the backlite queue for audit cleanup.
func NewCleanupAuditQueue(repo *audit.Repository) backlite.Queue {
	return backlite.NewQueue(CleanupAuditProcessor(repo))
}
