// Package library implements the book record store: the single source
// of truth for the ordered sequence of books, persisted as one JSON
// blob in a size-limited key/value backend.
//
// Persistence is whole-sequence replace-on-write. Every mutation
// serializes the entire collection and writes it before the in-memory
// sequence is swapped, so a capacity failure can never lose
// previously-good state. This trades write amplification for
// simplicity and is acceptable because a personal library holds a
// small number of records.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/libroapp/libro/internal/entities"
	"github.com/libroapp/libro/internal/kvstore"
)

// StorageKey is the single key the serialized library lives under.
const StorageKey = "libro_books"

// PlaceholderTotalPages is assigned at upload time and corrected once
// the viewer reports the true page count through a progress update.
const PlaceholderTotalPages = 100

var (
	// ErrLoad indicates the persisted blob exists but cannot be
	// decoded. Callers fall back to an empty library and warn.
	ErrLoad = errors.New("library: persisted data is malformed")

	// ErrSerialization indicates the record sequence could not be
	// encoded. The store is left in its last-known-good state.
	ErrSerialization = errors.New("library: failed to serialize records")

	// ErrQuotaExceeded indicates the backend rejected the write
	// because the serialized library no longer fits.
	ErrQuotaExceeded = errors.New("library: storage quota exceeded")

	// ErrDuplicateID indicates an append would violate id uniqueness.
	ErrDuplicateID = errors.New("library: record id already exists")
)

// Store owns the ordered book sequence and mediates all reads and
// writes against the persistence backend. Mutations are serialized by
// an internal mutex; HTTP handlers call into the store concurrently.
type Store struct {
	backend kvstore.Backend

	mu    sync.RWMutex
	books []entities.Book
}

func NewStore(backend kvstore.Backend) *Store {
	return &Store{backend: backend}
}

// Load reads the persisted blob and replaces the in-memory sequence.
// A missing blob yields an empty library. A malformed blob yields
// ErrLoad and leaves the in-memory sequence empty; the caller decides
// how loudly to complain.
func (s *Store) Load() ([]entities.Book, error) {
	raw, err := s.backend.Get(StorageKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		s.mu.Lock()
		s.books = nil
		s.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read library blob: %w", err)
	}

	var books []entities.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		s.mu.Lock()
		s.books = nil
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	s.mu.Lock()
	s.books = books
	s.mu.Unlock()
	return s.All(), nil
}

// Commit serializes the given sequence and writes it to the backend.
// It does not touch the in-memory sequence; mutation helpers commit
// first and only then swap memory.
func (s *Store) Commit(books []entities.Book) error {
	raw, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := s.backend.Set(StorageKey, raw); err != nil {
		if errors.Is(err, kvstore.ErrQuotaExceeded) {
			return ErrQuotaExceeded
		}
		return fmt.Errorf("failed to write library blob: %w", err)
	}
	return nil
}

// Append commits the sequence with book added at the end and, on
// success, makes it the current sequence. A failed commit leaves the
// observable sequence unchanged.
func (s *Store) Append(book entities.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.books {
		if s.books[i].ID == book.ID {
			return ErrDuplicateID
		}
	}

	next := make([]entities.Book, len(s.books), len(s.books)+1)
	copy(next, s.books)
	next = append(next, book)

	if err := s.Commit(next); err != nil {
		return err
	}
	s.books = next
	return nil
}

// Replace swaps the record with a matching id in place, preserving
// order, then commits. A missing id is reported as (false, nil): the
// record vanished concurrently and the caller treats it as a benign
// no-op.
func (s *Store) Replace(book entities.Book) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.books {
		if s.books[i].ID == book.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	next := make([]entities.Book, len(s.books))
	copy(next, s.books)
	next[idx] = book

	if err := s.Commit(next); err != nil {
		return false, err
	}
	s.books = next
	return true, nil
}

// All returns a copy of the current sequence in insertion order.
func (s *Store) All() []entities.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Book, len(s.books))
	copy(out, s.books)
	return out
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (entities.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.books {
		if s.books[i].ID == id {
			return s.books[i], true
		}
	}
	return entities.Book{}, false
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// UsageBytes reports the serialized size of the current sequence along
// with the backend quota (0 when unlimited).
func (s *Store) UsageBytes() (used int64, quota int64, err error) {
	s.mu.RLock()
	raw, err := json.Marshal(s.books)
	s.mu.RUnlock()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return int64(len(raw)), s.backend.Quota(), nil
}
