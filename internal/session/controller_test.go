package session

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_StateMachine(t *testing.T) {
	controller, err := NewController(nil, time.Hour, false)
	require.NoError(t, err)

	ctx, err := controller.Load(context.Background(), "")
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/", nil).WithContext(ctx)

	t.Run("starts in the library state", func(t *testing.T) {
		bookID, state := controller.Current(req)
		assert.Equal(t, StateLibrary, state)
		assert.Empty(t, bookID)
	})

	t.Run("open moves to reading", func(t *testing.T) {
		controller.Open(req, "dune-1")

		bookID, state := controller.Current(req)
		assert.Equal(t, StateReading, state)
		assert.Equal(t, "dune-1", bookID)
	})

	t.Run("opening another book replaces the selection", func(t *testing.T) {
		controller.Open(req, "hyperion-2")

		bookID, state := controller.Current(req)
		assert.Equal(t, StateReading, state)
		assert.Equal(t, "hyperion-2", bookID)
	})

	t.Run("close returns to the library state", func(t *testing.T) {
		controller.Close(req)

		bookID, state := controller.Current(req)
		assert.Equal(t, StateLibrary, state)
		assert.Empty(t, bookID)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		controller.Close(req)

		_, state := controller.Current(req)
		assert.Equal(t, StateLibrary, state)
	})
}

func TestNewController_CookieSettings(t *testing.T) {
	controller, err := NewController(nil, 720*time.Hour, true)
	require.NoError(t, err)

	assert.Equal(t, "libro_session", controller.Cookie.Name)
	assert.True(t, controller.Cookie.HttpOnly)
	assert.True(t, controller.Cookie.Secure)
	assert.Equal(t, 720*time.Hour, controller.Lifetime)
}
