package session

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

// sessionResponseWriter wraps gin.ResponseWriter to write the session
// cookie before headers are sent, since Gin may flush headers before
// the middleware chain unwinds.
type sessionResponseWriter struct {
	gin.ResponseWriter
	controller    *Controller
	request       *http.Request
	wroteHeader   bool
	cookieWritten bool
}

func (w *sessionResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.writeSessionCookie()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionResponseWriter) WriteHeaderNow() {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.writeSessionCookie()
	}
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.writeSessionCookie()
	}
	return w.ResponseWriter.Write(b)
}

func (w *sessionResponseWriter) writeSessionCookie() {
	if w.cookieWritten {
		return
	}
	w.cookieWritten = true

	ctx := w.request.Context()
	switch w.controller.Status(ctx) {
	case scs.Modified:
		token, expiry, err := w.controller.Commit(ctx)
		if err != nil {
			return
		}
		w.controller.WriteSessionCookie(ctx, w.ResponseWriter, token, expiry)
	case scs.Destroyed:
		w.controller.WriteSessionCookie(ctx, w.ResponseWriter, "", time.Time{})
	}
}

// Hijack keeps WebSocket upgrades working through the wrapper.
func (w *sessionResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

// LoadSave returns a Gin middleware that loads session data into the
// request context and commits it on the way out. Must run before any
// handler that touches the selection state.
func (c *Controller) LoadSave() gin.HandlerFunc {
	return func(g *gin.Context) {
		var token string
		if cookie, err := g.Request.Cookie(c.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := c.Load(g.Request.Context(), token)
		if err != nil {
			g.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		g.Request = g.Request.WithContext(ctx)

		srw := &sessionResponseWriter{
			ResponseWriter: g.Writer,
			controller:     c,
			request:        g.Request,
		}
		g.Writer = srw

		g.Next()

		if !srw.wroteHeader {
			srw.writeSessionCookie()
		}
	}
}
