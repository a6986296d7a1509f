// Package kvstore provides the size-limited key/value backend the
// library blob is persisted to. The backend is injectable so tests can
// substitute an in-memory double for the SQLite implementation.
package kvstore

import "errors"

var (
	// ErrNotFound is returned by Get when no value exists for a key.
	ErrNotFound = errors.New("kvstore: key not found")

	// ErrQuotaExceeded is returned by Set when writing the value would
	// push the total stored size past the backend's capacity.
	ErrQuotaExceeded = errors.New("kvstore: storage quota exceeded")
)

// Backend is a minimal key/value store with a capacity ceiling.
// Set is whole-value replace: a failed Set must leave the previously
// stored value for that key intact.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error

	// Usage reports the total bytes currently stored across all keys.
	Usage() (int64, error)

	// Quota reports the capacity ceiling in bytes (0 means unlimited).
	Quota() int64

	Close() error
}
