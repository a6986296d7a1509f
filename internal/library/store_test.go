package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libroapp/libro/internal/entities"
	"github.com/libroapp/libro/internal/kvstore"
)

func testBook(id, title string) entities.Book {
	return entities.Book{
		ID:          id,
		Title:       title,
		Content:     "data:application/pdf;base64,JVBERi0=",
		CurrentPage: 1,
		TotalPages:  PlaceholderTotalPages,
		UploadedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore_Load(t *testing.T) {
	t.Run("missing blob yields empty library", func(t *testing.T) {
		store := NewStore(kvstore.NewMemory(0))

		books, err := store.Load()
		require.NoError(t, err)
		assert.Empty(t, books)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("round trip preserves order and fields", func(t *testing.T) {
		backend := kvstore.NewMemory(0)
		store := NewStore(backend)
		require.NoError(t, store.Append(testBook("1", "Dune")))
		require.NoError(t, store.Append(testBook("2", "Hyperion")))

		reloaded := NewStore(backend)
		books, err := reloaded.Load()
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "Dune", books[0].Title)
		assert.Equal(t, "Hyperion", books[1].Title)
		assert.Equal(t, PlaceholderTotalPages, books[0].TotalPages)
	})

	t.Run("malformed blob reports ErrLoad and empties memory", func(t *testing.T) {
		backend := kvstore.NewMemory(0)
		require.NoError(t, backend.Set(StorageKey, []byte("{not json")))

		store := NewStore(backend)
		_, err := store.Load()
		assert.ErrorIs(t, err, ErrLoad)
		assert.Equal(t, 0, store.Len())
	})
}

func TestStore_Append(t *testing.T) {
	t.Run("persists before swapping memory", func(t *testing.T) {
		backend := kvstore.NewMemory(0)
		store := NewStore(backend)

		require.NoError(t, store.Append(testBook("1", "Dune")))

		raw, err := backend.Get(StorageKey)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"Dune"`)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		store := NewStore(kvstore.NewMemory(0))
		require.NoError(t, store.Append(testBook("1", "Dune")))

		err := store.Append(testBook("1", "Dune again"))
		assert.ErrorIs(t, err, ErrDuplicateID)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("quota failure leaves the sequence unchanged", func(t *testing.T) {
		backend := kvstore.NewMemory(200)
		store := NewStore(backend)
		require.NoError(t, store.Append(testBook("1", "Dune")))

		err := store.Append(testBook("2", "Hyperion"))
		assert.ErrorIs(t, err, ErrQuotaExceeded)

		books := store.All()
		require.Len(t, books, 1)
		assert.Equal(t, "Dune", books[0].Title)

		// Persisted state matches memory: the failed write was atomic.
		reloaded := NewStore(backend)
		persisted, err := reloaded.Load()
		require.NoError(t, err)
		require.Len(t, persisted, 1)
		assert.Equal(t, "Dune", persisted[0].Title)
	})

	t.Run("backend failure leaves the sequence unchanged", func(t *testing.T) {
		backend := kvstore.NewMemory(0)
		store := NewStore(backend)
		require.NoError(t, store.Append(testBook("1", "Dune")))

		backend.FailSet = assert.AnError
		err := store.Append(testBook("2", "Hyperion"))
		require.Error(t, err)
		assert.Equal(t, 1, store.Len())
	})
}

func TestStore_Replace(t *testing.T) {
	t.Run("swaps in place preserving order", func(t *testing.T) {
		store := NewStore(kvstore.NewMemory(0))
		require.NoError(t, store.Append(testBook("1", "Dune")))
		require.NoError(t, store.Append(testBook("2", "Hyperion")))

		updated := testBook("1", "Dune")
		updated.CurrentPage = 42

		replaced, err := store.Replace(updated)
		require.NoError(t, err)
		assert.True(t, replaced)

		books := store.All()
		require.Len(t, books, 2)
		assert.Equal(t, "1", books[0].ID)
		assert.Equal(t, 42, books[0].CurrentPage)
		assert.Equal(t, "2", books[1].ID)
	})

	t.Run("missing id is a benign no-op", func(t *testing.T) {
		store := NewStore(kvstore.NewMemory(0))
		require.NoError(t, store.Append(testBook("1", "Dune")))

		replaced, err := store.Replace(testBook("ghost", "Nothing"))
		require.NoError(t, err)
		assert.False(t, replaced)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("failed commit keeps the old record", func(t *testing.T) {
		backend := kvstore.NewMemory(0)
		store := NewStore(backend)
		require.NoError(t, store.Append(testBook("1", "Dune")))

		backend.FailSet = assert.AnError
		updated := testBook("1", "Dune")
		updated.CurrentPage = 99

		_, err := store.Replace(updated)
		require.Error(t, err)

		book, ok := store.Get("1")
		require.True(t, ok)
		assert.Equal(t, 1, book.CurrentPage)
	})
}

func TestStore_All_ReturnsCopy(t *testing.T) {
	store := NewStore(kvstore.NewMemory(0))
	require.NoError(t, store.Append(testBook("1", "Dune")))

	books := store.All()
	books[0].Title = "mutated"

	book, ok := store.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Dune", book.Title)
}

func TestStore_UsageBytes(t *testing.T) {
	backend := kvstore.NewMemory(5 << 20)
	store := NewStore(backend)
	require.NoError(t, store.Append(testBook("1", "Dune")))

	used, quota, err := store.UsageBytes()
	require.NoError(t, err)
	assert.Greater(t, used, int64(0))
	assert.Equal(t, int64(5<<20), quota)
}
