package http

import (
	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/audit"
	"github.com/libroapp/libro/internal/ingest"
	"github.com/libroapp/libro/internal/kvstore"
	"github.com/libroapp/libro/internal/library"
	"github.com/libroapp/libro/internal/notify"
	"github.com/libroapp/libro/internal/progress"
	"github.com/libroapp/libro/internal/session"
	"github.com/libroapp/libro/internal/tasks"
)

// RouterConfig carries every dependency the router wires into
// controllers. Optional fields (auditor, task client, CSRF secret,
// notification center) may be nil/empty and their features are
// skipped.
type RouterConfig struct {
	Store             *library.Store
	Backend           kvstore.Backend
	Ingester          *ingest.Service
	Tracker           *progress.Tracker
	SessionController *session.Controller
	Auditor           *audit.Repository
	TaskClient        *tasks.Client
	Notifications     *notify.Center

	CSRFSecret    []byte
	SecureCookies bool
	Version       string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	// CSRF must run before session loading so the session context is
	// layered on top of CSRF's request replacement.
	if len(cfg.CSRFSecret) > 0 {
		router.Use(CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	if cfg.SessionController != nil {
		router.Use(cfg.SessionController.LoadSave())
	}

	health := NewHealthController(cfg.Backend, cfg.Version)
	booksController := NewBooksController(cfg.Store)
	uploadController := NewUploadController(cfg.Ingester, cfg.Auditor, cfg.TaskClient)
	progressController := NewProgressController(cfg.Tracker, cfg.Auditor)

	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	router.GET("/api/books", booksController.GetAllBooks)
	router.GET("/api/books/stats", booksController.GetStats)
	router.GET("/api/books/:id", booksController.GetBook)
	router.GET("/api/books/:id/content", booksController.GetBookContent)
	router.POST("/api/books", uploadController.Upload)
	router.PUT("/api/books/:id/progress", progressController.UpdateProgress)

	if cfg.SessionController != nil {
		sessionController := NewSessionController(cfg.SessionController, cfg.Store)
		router.GET("/api/session", sessionController.Current)
		router.POST("/api/session/open", sessionController.Open)
		router.POST("/api/session/close", sessionController.Close)
	}

	if cfg.Notifications != nil {
		notificationsController := NewNotificationsController(cfg.Notifications)
		router.GET("/api/notifications", notificationsController.GetNotifications)
	}

	return router
}
