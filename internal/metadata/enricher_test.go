package metadata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libroapp/libro/internal/entities"
	"github.com/libroapp/libro/internal/kvstore"
	"github.com/libroapp/libro/internal/library"
)

type stubProvider struct {
	meta  *BookMetadata
	err   error
	calls int
}

func (s *stubProvider) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.meta, nil
}

func strPtr(s string) *string { return &s }

func setupEnricherStore(t *testing.T, book entities.Book) *library.Store {
	t.Helper()

	store := library.NewStore(kvstore.NewMemory(0))
	require.NoError(t, store.Append(book))
	return store
}

func bareBook() entities.Book {
	return entities.Book{
		ID:          "dune-1",
		Title:       "Dune",
		Content:     "data:application/pdf;base64,JVBERi0=",
		CurrentPage: 1,
		TotalPages:  library.PlaceholderTotalPages,
		UploadedAt:  time.Now().UTC(),
	}
}

func TestEnricher_EnrichBook(t *testing.T) {
	t.Run("fills absent author and cover", func(t *testing.T) {
		store := setupEnricherStore(t, bareBook())
		provider := &stubProvider{meta: &BookMetadata{
			Author:   "Frank Herbert",
			CoverURL: "https://covers.openlibrary.org/b/id/222-M.jpg",
		}}

		updated, err := NewEnricher(provider, store).EnrichBook(context.Background(), "dune-1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"author", "cover_url"}, updated)

		book, _ := store.Get("dune-1")
		require.NotNil(t, book.Author)
		assert.Equal(t, "Frank Herbert", *book.Author)
		require.NotNil(t, book.CoverURL)
		assert.Equal(t, "https://covers.openlibrary.org/b/id/222-M.jpg", *book.CoverURL)
	})

	t.Run("never overwrites a user-provided author", func(t *testing.T) {
		book := bareBook()
		book.Author = strPtr("F. Herbert")
		store := setupEnricherStore(t, book)
		provider := &stubProvider{meta: &BookMetadata{Author: "Frank Herbert", CoverURL: "https://example.com/c.jpg"}}

		updated, err := NewEnricher(provider, store).EnrichBook(context.Background(), "dune-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"cover_url"}, updated)

		stored, _ := store.Get("dune-1")
		assert.Equal(t, "F. Herbert", *stored.Author)
	})

	t.Run("fully populated book skips the lookup", func(t *testing.T) {
		book := bareBook()
		book.Author = strPtr("Frank Herbert")
		book.CoverURL = strPtr("https://example.com/c.jpg")
		store := setupEnricherStore(t, book)
		provider := &stubProvider{}

		updated, err := NewEnricher(provider, store).EnrichBook(context.Background(), "dune-1")
		require.NoError(t, err)
		assert.Empty(t, updated)
		assert.Equal(t, 0, provider.calls)
	})

	t.Run("vanished book is a no-op", func(t *testing.T) {
		store := library.NewStore(kvstore.NewMemory(0))
		provider := &stubProvider{}

		updated, err := NewEnricher(provider, store).EnrichBook(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Empty(t, updated)
		assert.Equal(t, 0, provider.calls)
	})

	t.Run("lookup failure leaves the record untouched", func(t *testing.T) {
		store := setupEnricherStore(t, bareBook())
		provider := &stubProvider{err: assert.AnError}

		_, err := NewEnricher(provider, store).EnrichBook(context.Background(), "dune-1")
		require.Error(t, err)

		book, _ := store.Get("dune-1")
		assert.Nil(t, book.Author)
	})

	t.Run("empty metadata commits nothing", func(t *testing.T) {
		store := setupEnricherStore(t, bareBook())
		provider := &stubProvider{meta: &BookMetadata{}}

		updated, err := NewEnricher(provider, store).EnrichBook(context.Background(), "dune-1")
		require.NoError(t, err)
		assert.Empty(t, updated)
	})
}
