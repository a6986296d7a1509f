package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/libroapp/libro/internal/metadata"
)

// EnrichBookTask fills in a freshly uploaded book's missing author and
// cover from OpenLibrary.
type EnrichBookTask struct {
	BookID string `json:"book_id"`
}

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

// EnrichBookProcessor creates the processor for EnrichBookTask.
func EnrichBookProcessor(enricher *metadata.Enricher) backlite.QueueProcessor[EnrichBookTask] {
	return func(ctx context.Context, task EnrichBookTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		updated, err := enricher.EnrichBook(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("enrich book %s: %w", task.BookID, err)
		}

		if len(updated) > 0 {
			log.Printf("[TASK] Enriched book %s: updated %v", task.BookID, updated)
		} else {
			log.Printf("[TASK] Book %s: no metadata updates needed", task.BookID)
		}
		return nil
	}
}

// NewEnrichBookQueue creates the backlite queue for enrichment tasks.
func NewEnrichBookQueue(enricher *metadata.Enricher) backlite.Queue {
	return backlite.NewQueue(EnrichBookProcessor(enricher))
}
