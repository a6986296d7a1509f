package http

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/entities"
	"github.com/libroapp/libro/internal/library"
)

// BookSummary is a book record with the content payload elided, sized
// for the library grid.
type BookSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      *string    `json:"author,omitempty"`
	CoverURL    *string    `json:"cover_url,omitempty"`
	CurrentPage int        `json:"current_page"`
	TotalPages  int        `json:"total_pages"`
	LastRead    *time.Time `json:"last_read,omitempty"`
	UploadedAt  time.Time  `json:"uploaded_at"`
}

type BooksController struct {
	store *library.Store
}

func NewBooksController(store *library.Store) *BooksController {
	return &BooksController{store: store}
}

// GetAllBooks returns the library grid data. Display order is derived,
// never persisted: most recently read first, then most recently
// uploaded.
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books := controller.store.All()

	sort.SliceStable(books, func(i, j int) bool {
		a, b := books[i], books[j]
		switch {
		case a.LastRead != nil && b.LastRead != nil:
			return a.LastRead.After(*b.LastRead)
		case a.LastRead != nil:
			return true
		case b.LastRead != nil:
			return false
		default:
			return a.UploadedAt.After(b.UploadedAt)
		}
	})

	summaries := make([]BookSummary, 0, len(books))
	for _, book := range books {
		summaries = append(summaries, summarize(book))
	}

	c.JSON(http.StatusOK, gin.H{"books": summaries, "count": len(summaries)})
}

// GetBook returns one full record, content included.
func (controller *BooksController) GetBook(c *gin.Context) {
	book, ok := controller.store.Get(c.Param("id"))
	if !ok {
		respondNotFound(c, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// GetBookContent serves the raw data URI for the document renderer.
func (controller *BooksController) GetBookContent(c *gin.Context) {
	book, ok := controller.store.Get(c.Param("id"))
	if !ok {
		respondNotFound(c, "book")
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(book.Content))
}

// GetStats reports record count and serialized size against the quota.
func (controller *BooksController) GetStats(c *gin.Context) {
	used, quota, err := controller.store.UsageBytes()
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_books": controller.store.Len(),
		"used_bytes":  used,
		"quota_bytes": quota,
	})
}

func summarize(book entities.Book) BookSummary {
	return BookSummary{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		CoverURL:    book.CoverURL,
		CurrentPage: book.CurrentPage,
		TotalPages:  book.TotalPages,
		LastRead:    book.LastRead,
		UploadedAt:  book.UploadedAt,
	}
}
