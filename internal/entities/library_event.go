package entities

import "time"

type LibraryEventType string

const (
	LibraryEventIngest   LibraryEventType = "ingest"
	LibraryEventProgress LibraryEventType = "progress"
	LibraryEventEnrich   LibraryEventType = "enrich"
)

// LibraryEvent is an operational audit record of a library mutation.
// Events live in their own SQLite database, separate from the book
// blob, and are pruned on a retention schedule.
type LibraryEvent struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	EventType LibraryEventType `gorm:"index;size:20" json:"event_type"`
	BookID    string           `gorm:"index;size:64" json:"book_id"`
	Detail    string           `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func (LibraryEvent) TableName() string {
	return "library_events"
}
