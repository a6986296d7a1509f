// Package progress records reading position as the viewer navigates.
package progress

import (
	"errors"
	"time"

	"github.com/libroapp/libro/internal/library"
)

var (
	// ErrPageOutOfRange is returned when the requested page falls
	// outside [1, totalPages]. The position is never clamped.
	ErrPageOutOfRange = errors.New("progress: page outside document bounds")

	// ErrInvalidTotal is returned when a reported page count is below 1.
	ErrInvalidTotal = errors.New("progress: total pages must be at least 1")
)

// Tracker applies progress events to the record store.
type Tracker struct {
	store *library.Store
}

func NewTracker(store *library.Store) *Tracker {
	return &Tracker{store: store}
}

// Update records the current page for a book. totalPages, when
// non-nil, corrects the stored page count; this is the single path by
// which the upload-time placeholder is replaced with the count the
// viewer determined.
//
// An unknown bookID is a benign race (the book vanished between the
// viewer loading and reporting) and is silently ignored. The same
// applies when the record disappears between lookup and replace.
func (t *Tracker) Update(bookID string, page int, totalPages *int) error {
	book, ok := t.store.Get(bookID)
	if !ok {
		return nil
	}

	total := book.TotalPages
	if totalPages != nil {
		if *totalPages < 1 {
			return ErrInvalidTotal
		}
		total = *totalPages
	}
	if page < 1 || page > total {
		return ErrPageOutOfRange
	}

	now := time.Now().UTC()
	book.CurrentPage = page
	book.TotalPages = total
	book.LastRead = &now

	if _, err := t.store.Replace(book); err != nil {
		return err
	}
	return nil
}
