// Package ingest turns a user-selected file into a committed book
// record: validation, data-URI encoding, id generation and a
// speculative append against the record store.
package ingest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/vincent-petithory/dataurl"

	"github.com/libroapp/libro/internal/entities"
	"github.com/libroapp/libro/internal/library"
	"github.com/libroapp/libro/internal/notify"
)

// MediaTypePDF is the only accepted upload media type.
const MediaTypePDF = "application/pdf"

var (
	ErrEmptyTitle  = errors.New("ingest: title is required")
	ErrInvalidType = errors.New("ingest: only PDF files are accepted")
	ErrTooLarge    = errors.New("ingest: file exceeds the upload size limit")
)

// Upload is a user-selected file plus the form fields accompanying it.
type Upload struct {
	Title       string
	Author      string
	ContentType string // declared media type, may carry parameters
	Data        []byte
}

// Service validates uploads and commits them to the store.
type Service struct {
	store     *library.Store
	sizeLimit int64 // soft upload ceiling in bytes, 0 disables
	notifier  notify.Notifier
}

func NewService(store *library.Store, sizeLimit int64, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Service{store: store, sizeLimit: sizeLimit, notifier: notifier}
}

// Ingest validates, encodes and commits one upload. Validation happens
// before the encode step so oversized or mistyped files cost nothing.
// The append is speculative: a quota failure leaves the store's
// observable sequence exactly as it was.
//
// Cancelling ctx before the append (the dialog was dismissed) aborts
// without mutating anything.
func (s *Service) Ingest(ctx context.Context, up Upload) (entities.Book, error) {
	title := strings.TrimSpace(up.Title)
	if title == "" {
		return entities.Book{}, ErrEmptyTitle
	}
	if mediaType(up.ContentType) != MediaTypePDF {
		return entities.Book{}, ErrInvalidType
	}
	if s.sizeLimit > 0 && int64(len(up.Data)) > s.sizeLimit {
		s.notifier.Error(fmt.Sprintf("%q is larger than the %d MB upload limit.", title, s.sizeLimit>>20), 5*time.Second)
		return entities.Book{}, ErrTooLarge
	}

	content := dataurl.New(up.Data, MediaTypePDF).String()

	if err := ctx.Err(); err != nil {
		return entities.Book{}, err
	}

	book := entities.Book{
		ID:          newID(),
		Title:       title,
		Content:     content,
		CurrentPage: 1,
		TotalPages:  library.PlaceholderTotalPages,
		UploadedAt:  time.Now().UTC(),
	}
	if author := strings.TrimSpace(up.Author); author != "" {
		book.Author = &author
	}

	if err := s.store.Append(book); err != nil {
		if errors.Is(err, library.ErrQuotaExceeded) {
			s.notifier.Error("Storage is full. Remove a book or upload a smaller file.", 8*time.Second)
			return entities.Book{}, library.ErrQuotaExceeded
		}
		return entities.Book{}, fmt.Errorf("failed to commit new book: %w", err)
	}

	s.notifier.Success(fmt.Sprintf("Added %q to your library.", book.Title))
	return book, nil
}

// mediaType strips parameters from a declared content type. An
// unparseable declaration is treated as not-a-PDF rather than an error.
func mediaType(declared string) string {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return ""
	}
	return mt
}

// newID generates a fresh record id from the upload instant plus a
// random hex suffix. Collisions would need two uploads in the same
// millisecond drawing the same 32 random bits.
func newID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; fall
		// back to a nanosecond suffix rather than panic here.
		return fmt.Sprintf("%d-%d", time.Now().UnixMilli(), time.Now().UnixNano()%1_000_000)
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}
