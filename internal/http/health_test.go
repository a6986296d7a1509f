package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libroapp/libro/internal/kvstore"
	"github.com/libroapp/libro/internal/notify"
)

func TestHealthController_Status(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("healthy when the store answers", func(t *testing.T) {
		controller := NewHealthController(kvstore.NewMemory(0), "test-version")

		router := gin.New()
		router.GET("/health", controller.Status)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "test-version", response.Version)
		assert.Equal(t, "ok", response.Checks["store"])
	})

	t.Run("reports an unconfigured store", func(t *testing.T) {
		controller := NewHealthController(nil, "")

		router := gin.New()
		router.GET("/health", controller.Status)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "not configured")
	})
}

func TestNotificationsController_GetNotifications(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("empty buffer yields an empty list", func(t *testing.T) {
		center := notify.NewCenter(8)
		controller := NewNotificationsController(center)

		router := gin.New()
		router.GET("/api/notifications", controller.GetNotifications)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/notifications", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"notifications":[]`)
	})

	t.Run("drains pending toasts", func(t *testing.T) {
		center := notify.NewCenter(8)
		center.Success("Added \"Dune\" to your library.")
		controller := NewNotificationsController(center)

		router := gin.New()
		router.GET("/api/notifications", controller.GetNotifications)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/notifications", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Dune")

		// Second poll comes back empty.
		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/api/notifications", nil)
		router.ServeHTTP(w, req)
		assert.Contains(t, w.Body.String(), `"notifications":[]`)
	})
}
