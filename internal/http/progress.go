package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/audit"
	"github.com/libroapp/libro/internal/entities"
	"github.com/libroapp/libro/internal/progress"
)

type ProgressController struct {
	tracker *progress.Tracker
	auditor *audit.Repository
}

func NewProgressController(tracker *progress.Tracker, auditor *audit.Repository) *ProgressController {
	return &ProgressController{tracker: tracker, auditor: auditor}
}

type progressRequest struct {
	Page       int  `json:"page" binding:"required"`
	TotalPages *int `json:"total_pages,omitempty"`
}

// UpdateProgress applies a reader progress event. The viewer sends
// total_pages with its first event after determining the true page
// count, which corrects the upload-time placeholder. An unknown book
// id is a benign race and still answers 204.
func (controller *ProgressController) UpdateProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "page is required")
		return
	}

	bookID := c.Param("id")
	err := controller.tracker.Update(bookID, req.Page, req.TotalPages)
	switch {
	case err == nil:
		// audited below
	case errors.Is(err, progress.ErrPageOutOfRange):
		respondBadRequest(c, "page outside document bounds")
		return
	case errors.Is(err, progress.ErrInvalidTotal):
		respondBadRequest(c, "total pages must be at least 1")
		return
	default:
		respondInternalError(c, err)
		return
	}

	if controller.auditor != nil {
		detail := fmt.Sprintf("page %d", req.Page)
		if req.TotalPages != nil {
			detail = fmt.Sprintf("page %d of %d", req.Page, *req.TotalPages)
		}
		if err := controller.auditor.Record(entities.LibraryEventProgress, bookID, detail); err != nil {
			log.Printf("WARNING: failed to record progress audit event: %v", err)
		}
	}

	c.Status(http.StatusNoContent)
}
