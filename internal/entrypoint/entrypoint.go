// Package entrypoint wires the application together and runs the HTTP
// server with graceful shutdown.
package entrypoint

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/audit"
	"github.com/libroapp/libro/internal/config"
	httpcontrollers "github.com/libroapp/libro/internal/http"
	"github.com/libroapp/libro/internal/ingest"
	"github.com/libroapp/libro/internal/kvstore"
	"github.com/libroapp/libro/internal/library"
	"github.com/libroapp/libro/internal/metadata"
	"github.com/libroapp/libro/internal/notify"
	"github.com/libroapp/libro/internal/progress"
	"github.com/libroapp/libro/internal/scheduler"
	"github.com/libroapp/libro/internal/session"
	"github.com/libroapp/libro/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown requested, waiting up to %v", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run builds every component from config and serves until shutdown.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Libro v%s", version)

	backend, err := kvstore.OpenSQLite(cfg.Store.Path, cfg.Store.QuotaBytes)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}()

	notifications := notify.NewCenter(32)

	store := library.NewStore(backend)
	if _, err := store.Load(); err != nil {
		if errors.Is(err, library.ErrLoad) {
			// Never crash over a bad blob: warn and continue empty so
			// the user can keep using the app.
			log.Printf("WARNING: %v; starting with an empty library", err)
			notifications.Error("Saved library could not be read. Starting fresh.", 10*time.Second)
		} else {
			log.Fatalf("Failed to load library: %v", err)
		}
	}
	log.Printf("Library loaded: %d book(s)", store.Len())

	auditPath := cfg.Audit.Path
	if auditPath == "" {
		auditPath = auditPathFor(cfg.Store.Path)
	}
	auditor, err := audit.Open(auditPath)
	if err != nil {
		log.Printf("WARNING: failed to open audit database: %v; auditing disabled", err)
		auditor = nil
	}
	defer func() {
		if auditor != nil {
			if err := auditor.Close(); err != nil {
				log.Printf("Error closing audit database: %v", err)
			}
		}
	}()

	sessionController, err := session.NewController(backend.DB(), cfg.Session.Lifetime, cfg.Session.SecureCookies)
	if err != nil {
		log.Fatalf("Failed to initialize sessions: %v", err)
	}

	ingester := ingest.NewService(store, cfg.Upload.SizeLimitBytes, notifications)
	tracker := progress.NewTracker(store)

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var cleanupScheduler *scheduler.AuditCleanupScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Store.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		if cfg.Enrichment.Enabled {
			enricher := metadata.NewEnricher(metadata.NewOpenLibraryClient(), store)
			taskClient.Register(tasks.NewEnrichBookQueue(enricher))
		}
		if auditor != nil {
			taskClient.Register(tasks.NewCleanupAuditQueue(auditor))
			cleanupScheduler = scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		}

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if cleanupScheduler != nil {
			if err := cleanupScheduler.Start(taskCtx); err != nil {
				log.Printf("WARNING: failed to start audit cleanup scheduler: %v", err)
			}
		}
	}

	csrfSecret, err := resolveCSRFSecret(cfg.Session.CSRFSecret)
	if err != nil {
		log.Fatalf("Failed to resolve CSRF secret: %v", err)
	}

	enrichmentTasks := taskClient
	if !cfg.Enrichment.Enabled {
		enrichmentTasks = nil
	}

	router := httpcontrollers.NewRouter(httpcontrollers.RouterConfig{
		Store:             store,
		Backend:           backend,
		Ingester:          ingester,
		Tracker:           tracker,
		SessionController: sessionController,
		Auditor:           auditor,
		TaskClient:        enrichmentTasks,
		Notifications:     notifications,
		CSRFSecret:        csrfSecret,
		SecureCookies:     cfg.Session.SecureCookies,
		Version:           version,
	})

	Serve(router, cfg, func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		if taskCtxCancel != nil {
			taskCtxCancel()
		}
	})
}

// auditPathFor derives the audit database path from the store path,
// alongside it with an "-audit" suffix.
func auditPathFor(storePath string) string {
	dir := filepath.Dir(storePath)
	base := filepath.Base(storePath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	return filepath.Join(dir, name+"-audit"+ext)
}

// resolveCSRFSecret decodes the configured secret or generates an
// ephemeral one. An ephemeral secret invalidates in-flight tokens on
// restart, which is acceptable for a personal single-user app.
func resolveCSRFSecret(configured string) ([]byte, error) {
	if configured != "" {
		secret, err := hex.DecodeString(configured)
		if err != nil {
			return nil, fmt.Errorf("CSRF_SECRET must be hex-encoded: %w", err)
		}
		if len(secret) < 32 {
			return nil, fmt.Errorf("CSRF_SECRET must decode to at least 32 bytes")
		}
		return secret, nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	return secret, nil
}
