// Package notify implements the notification surface the core reports
// outcomes to. Calls are fire-and-forget; the server-side
// implementation logs and keeps a small ring the UI polls for toasts.
package notify

import (
	"log"
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier is consumed by ingestion and the HTTP layer.
type Notifier interface {
	Success(message string)
	Error(message string, durationHint time.Duration)
}

// Notification is one toast-worthy event.
type Notification struct {
	Level     Level         `json:"level"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration_hint,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Center buffers recent notifications, dropping the oldest when full.
type Center struct {
	mu      sync.Mutex
	limit   int
	pending []Notification
}

func NewCenter(limit int) *Center {
	if limit <= 0 {
		limit = 32
	}
	return &Center{limit: limit}
}

func (c *Center) Success(message string) {
	log.Printf("[NOTIFY] %s", message)
	c.push(Notification{Level: LevelSuccess, Message: message, CreatedAt: time.Now()})
}

func (c *Center) Error(message string, durationHint time.Duration) {
	log.Printf("[NOTIFY ERROR] %s", message)
	c.push(Notification{Level: LevelError, Message: message, Duration: durationHint, CreatedAt: time.Now()})
}

// Drain returns all buffered notifications and clears the buffer.
func (c *Center) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.pending
	c.pending = nil
	return out
}

func (c *Center) push(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = append(c.pending, n)
	if len(c.pending) > c.limit {
		c.pending = c.pending[len(c.pending)-c.limit:]
	}
}

// Discard is a Notifier that drops everything. Useful in tests and in
// CLI paths where outcomes go straight to stdout.
type Discard struct{}

func (Discard) Success(string) {}

func (Discard) Error(string, time.Duration) {}
