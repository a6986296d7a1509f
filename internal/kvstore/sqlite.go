package kvstore

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores key/value pairs in a single table of a SQLite file.
// Capacity accounting counts value bytes only; keys are a handful of
// short fixed strings and are ignored.
type SQLite struct {
	db    *sql.DB
	quota int64
}

// OpenSQLite opens (or creates) the store at path. quota is the
// capacity ceiling in bytes; 0 disables the limit.
func OpenSQLite(path string, quota int64) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLite{db: db, quota: quota}, nil
}

func (s *SQLite) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLite) Set(key string, value []byte) error {
	// The quota check and the write run in one transaction so a
	// concurrent Set cannot slip past the capacity ceiling.
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin write: %w", err)
	}
	defer tx.Rollback()

	if s.quota > 0 {
		var others int64
		err = tx.QueryRow(`SELECT COALESCE(SUM(LENGTH(value)), 0) FROM kv WHERE key != ?`, key).Scan(&others)
		if err != nil {
			return fmt.Errorf("failed to compute usage: %w", err)
		}
		if others+int64(len(value)) > s.quota {
			return ErrQuotaExceeded
		}
	}

	_, err = tx.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}

	return tx.Commit()
}

func (s *SQLite) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Usage() (int64, error) {
	var total int64
	err := s.db.QueryRow(`SELECT COALESCE(SUM(LENGTH(value)), 0) FROM kv`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to compute usage: %w", err)
	}
	return total, nil
}

func (s *SQLite) Quota() int64 {
	return s.quota
}

// DB exposes the underlying connection so collaborators (the session
// store) can share the same SQLite file.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
