package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libroapp/libro/internal/entities"
	"github.com/libroapp/libro/internal/kvstore"
	"github.com/libroapp/libro/internal/library"
)

func setupBooksStore(t *testing.T, quota int64) *library.Store {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := library.NewStore(kvstore.NewMemory(quota))
	_, err := store.Load()
	require.NoError(t, err)
	return store
}

func seedBook(t *testing.T, store *library.Store, id, title string, uploadedAt time.Time, lastRead *time.Time) {
	t.Helper()
	require.NoError(t, store.Append(entities.Book{
		ID:          id,
		Title:       title,
		Content:     "data:application/pdf;base64,JVBERi0=",
		CurrentPage: 1,
		TotalPages:  library.PlaceholderTotalPages,
		LastRead:    lastRead,
		UploadedAt:  uploadedAt,
	}))
}

func TestBooksController_GetAllBooks(t *testing.T) {
	t.Run("returns empty list when no books", func(t *testing.T) {
		controller := NewBooksController(setupBooksStore(t, 0))

		router := gin.New()
		router.GET("/api/books", controller.GetAllBooks)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)

		assert.Equal(t, float64(0), response["count"])
		assert.Empty(t, response["books"])
	})

	t.Run("orders by last read then upload time", func(t *testing.T) {
		store := setupBooksStore(t, 0)
		base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		readOld := base.Add(1 * time.Hour)
		readNew := base.Add(2 * time.Hour)

		seedBook(t, store, "a", "Never opened, uploaded first", base, nil)
		seedBook(t, store, "b", "Read earlier", base.Add(time.Minute), &readOld)
		seedBook(t, store, "c", "Read most recently", base.Add(2*time.Minute), &readNew)
		seedBook(t, store, "d", "Never opened, uploaded last", base.Add(3*time.Minute), nil)

		controller := NewBooksController(store)
		router := gin.New()
		router.GET("/api/books", controller.GetAllBooks)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Books []BookSummary `json:"books"`
			Count int           `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, 4, response.Count)

		ids := []string{response.Books[0].ID, response.Books[1].ID, response.Books[2].ID, response.Books[3].ID}
		assert.Equal(t, []string{"c", "b", "d", "a"}, ids)
	})

	t.Run("summaries never carry the content payload", func(t *testing.T) {
		store := setupBooksStore(t, 0)
		seedBook(t, store, "a", "Dune", time.Now().UTC(), nil)

		controller := NewBooksController(store)
		router := gin.New()
		router.GET("/api/books", controller.GetAllBooks)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "base64")
		assert.NotContains(t, w.Body.String(), `"content"`)
	})
}

func TestBooksController_GetBook(t *testing.T) {
	store := setupBooksStore(t, 0)
	seedBook(t, store, "dune-1", "Dune", time.Now().UTC(), nil)

	controller := NewBooksController(store)
	router := gin.New()
	router.GET("/api/books/:id", controller.GetBook)

	t.Run("returns the full record", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/dune-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var book entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		assert.Equal(t, "Dune", book.Title)
		assert.Contains(t, book.Content, "data:application/pdf;base64,")
	})

	t.Run("unknown id answers 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/ghost", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not_found")
	})
}

func TestBooksController_GetBookContent(t *testing.T) {
	store := setupBooksStore(t, 0)
	seedBook(t, store, "dune-1", "Dune", time.Now().UTC(), nil)

	controller := NewBooksController(store)
	router := gin.New()
	router.GET("/api/books/:id/content", controller.GetBookContent)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/books/dune-1/content", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "data:application/pdf;base64,JVBERi0=", w.Body.String())
}

func TestBooksController_GetStats(t *testing.T) {
	store := setupBooksStore(t, 5<<20)
	seedBook(t, store, "dune-1", "Dune", time.Now().UTC(), nil)

	controller := NewBooksController(store)
	router := gin.New()
	router.GET("/api/books/stats", controller.GetStats)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/books/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["total_books"])
	assert.Greater(t, response["used_bytes"], float64(0))
	assert.Equal(t, float64(5<<20), response["quota_bytes"])
}
