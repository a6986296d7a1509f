package metadata

import (
	"context"
	"fmt"

	"github.com/libroapp/libro/internal/library"
)

// MetadataProvider is the lookup interface the enricher depends on.
type MetadataProvider interface {
	SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
}

// Enricher fills in a book's missing author and cover URL after
// upload. Ingestion itself never touches these fields; enrichment is a
// separate best-effort path running on the task queue.
type Enricher struct {
	provider MetadataProvider
	store    *library.Store
}

func NewEnricher(provider MetadataProvider, store *library.Store) *Enricher {
	return &Enricher{provider: provider, store: store}
}

// EnrichBook looks up metadata for the book and commits any fields
// that were absent. Returns the list of updated field names. A book
// that vanished, or one that already has author and cover, is a no-op.
func (e *Enricher) EnrichBook(ctx context.Context, bookID string) ([]string, error) {
	book, ok := e.store.Get(bookID)
	if !ok {
		return nil, nil
	}
	if book.Author != nil && book.CoverURL != nil {
		return nil, nil
	}

	meta, err := e.provider.SearchByTitle(ctx, book.Title, book.AuthorName())
	if err != nil {
		return nil, fmt.Errorf("metadata search failed: %w", err)
	}

	var updated []string
	if book.Author == nil && meta.Author != "" {
		author := meta.Author
		book.Author = &author
		updated = append(updated, "author")
	}
	if book.CoverURL == nil && meta.CoverURL != "" {
		coverURL := meta.CoverURL
		book.CoverURL = &coverURL
		updated = append(updated, "cover_url")
	}
	if len(updated) == 0 {
		return nil, nil
	}

	// Metadata is a few hundred bytes on top of a multi-megabyte blob;
	// a quota failure here still aborts cleanly with state intact.
	if _, err := e.store.Replace(book); err != nil {
		return nil, fmt.Errorf("commit enriched book: %w", err)
	}
	return updated, nil
}
