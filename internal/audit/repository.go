// Package audit keeps an operational log of library mutations in its
// own SQLite database, outside the book blob and its quota.
package audit

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/libroapp/libro/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

// Open opens (or creates) the audit database at path.
func Open(path string) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if err := db.AutoMigrate(&entities.LibraryEvent{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record saves one audit event.
func (r *Repository) Record(eventType entities.LibraryEventType, bookID, detail string) error {
	event := &entities.LibraryEvent{
		EventType: eventType,
		BookID:    bookID,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	return r.db.Create(event).Error
}

// Recent retrieves events ordered most recent first.
func (r *Repository) Recent(limit int) ([]entities.LibraryEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []entities.LibraryEvent
	err := r.db.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

// DeleteOlderThan removes events created before the given time and
// returns the number deleted.
func (r *Repository) DeleteOlderThan(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.LibraryEvent{})
	return result.RowsAffected, result.Error
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
