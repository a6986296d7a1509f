package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/library"
	"github.com/libroapp/libro/internal/session"
)

type SessionController struct {
	controller *session.Controller
	store      *library.Store
}

func NewSessionController(controller *session.Controller, store *library.Store) *SessionController {
	return &SessionController{controller: controller, store: store}
}

type openRequest struct {
	BookID string `json:"book_id" binding:"required"`
}

// Open transitions the session from Library to Reading(bookID).
func (controller *SessionController) Open(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id is required")
		return
	}

	if _, ok := controller.store.Get(req.BookID); !ok {
		respondNotFound(c, "book")
		return
	}

	controller.controller.Open(c.Request, req.BookID)
	c.JSON(http.StatusOK, gin.H{"state": session.StateReading, "book_id": req.BookID})
}

// Close transitions the session back to Library.
func (controller *SessionController) Close(c *gin.Context) {
	controller.controller.Close(c.Request)
	c.JSON(http.StatusOK, gin.H{"state": session.StateLibrary})
}

// Current reports the session's selection state. A book deleted out
// from under the session degrades to the Library state.
func (controller *SessionController) Current(c *gin.Context) {
	bookID, state := controller.controller.Current(c.Request)
	if state == session.StateReading {
		if _, ok := controller.store.Get(bookID); !ok {
			controller.controller.Close(c.Request)
			c.JSON(http.StatusOK, gin.H{"state": session.StateLibrary})
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": state, "book_id": bookID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}
