// Package session tracks which book, if any, the browser session has
// open. It is a two-state machine: Library (nothing open) and
// Reading(bookID). Opening a book moves to Reading, an explicit close
// moves back, and there are no other transitions. Closing flushes
// nothing extra; progress commits are already incremental.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

type State string

const (
	StateLibrary State = "library"
	StateReading State = "reading"
)

const sessionKeyBookID = "reading_book_id"

// Controller wraps scs.SessionManager with the selection state machine.
type Controller struct {
	*scs.SessionManager
}

// NewController creates a session-backed selection controller. When
// sqlDB is non-nil sessions persist to a sqlite3store table in that
// database; otherwise scs's in-memory store is used (tests, CLI).
func NewController(sqlDB *sql.DB, lifetime time.Duration, secureCookies bool) (*Controller, error) {
	sm := scs.New()

	if sqlDB != nil {
		_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, err
		}
		sm.Store = sqlite3store.New(sqlDB)
	}

	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime / 2

	sm.Cookie.Name = "libro_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &Controller{SessionManager: sm}, nil
}

// Open transitions the session to Reading(bookID). The caller is
// responsible for verifying the id exists before opening.
func (c *Controller) Open(r *http.Request, bookID string) {
	c.Put(r.Context(), sessionKeyBookID, bookID)
}

// Close transitions the session back to Library.
func (c *Controller) Close(r *http.Request) {
	c.Remove(r.Context(), sessionKeyBookID)
}

// Current reports the session's state and, when Reading, the open
// book's id.
func (c *Controller) Current(r *http.Request) (string, State) {
	bookID := c.GetString(r.Context(), sessionKeyBookID)
	if bookID == "" {
		return "", StateLibrary
	}
	return bookID, StateReading
}
