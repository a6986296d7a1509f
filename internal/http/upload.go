package http

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/audit"
	"github.com/libroapp/libro/internal/entities"
	"github.com/libroapp/libro/internal/ingest"
	"github.com/libroapp/libro/internal/library"
	"github.com/libroapp/libro/internal/tasks"
)

type UploadController struct {
	ingester   *ingest.Service
	auditor    *audit.Repository
	taskClient *tasks.Client
}

// NewUploadController creates the upload endpoint controller. auditor
// and taskClient are optional; a nil task client skips enrichment.
func NewUploadController(ingester *ingest.Service, auditor *audit.Repository, taskClient *tasks.Client) *UploadController {
	return &UploadController{
		ingester:   ingester,
		auditor:    auditor,
		taskClient: taskClient,
	}
}

// Upload ingests a multipart PDF upload: form fields "title" and
// "author" plus a "file" part. Failure mapping follows the ingestion
// error taxonomy: invalid input 400, oversized 413, quota 507.
func (controller *UploadController) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "a PDF file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondInternalError(c, fmt.Errorf("read upload: %w", err))
		return
	}

	book, err := controller.ingester.Ingest(c.Request.Context(), ingest.Upload{
		Title:       c.PostForm("title"),
		Author:      c.PostForm("author"),
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		controller.respondIngestError(c, err)
		return
	}

	if controller.auditor != nil {
		if err := controller.auditor.Record(entities.LibraryEventIngest, book.ID, book.Title); err != nil {
			// Audit is operational logging; never fail the upload over it.
			log.Printf("WARNING: failed to record ingest audit event: %v", err)
		}
	}

	if controller.taskClient != nil {
		if _, err := controller.taskClient.Add(tasks.EnrichBookTask{BookID: book.ID}).Save(); err != nil {
			log.Printf("WARNING: failed to enqueue enrichment for %s: %v", book.ID, err)
		}
	}

	c.JSON(http.StatusCreated, book)
}

func (controller *UploadController) respondIngestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ingest.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "title is required", Code: "invalid_input"})
	case errors.Is(err, ingest.ErrInvalidType):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "only PDF files are accepted", Code: "invalid_input"})
	case errors.Is(err, ingest.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file exceeds the upload size limit", Code: "too_large"})
	case errors.Is(err, library.ErrQuotaExceeded):
		c.JSON(http.StatusInsufficientStorage, ErrorResponse{Error: "library storage is full", Code: "quota_exceeded"})
	default:
		respondInternalError(c, err)
	}
}
