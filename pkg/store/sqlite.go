package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/metrics"
)

// SQLiteStore persists key-value entries in a single sqlite table.
type SQLiteStore struct {
	db     *sql.DB
	logger *logging.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string, logger *logging.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create data dir: %v", ErrPersistence, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrPersistence, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: ping: %v", ErrPersistence, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		logger.Warn("Failed to set WAL mode", "error", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("%w: create table: %v", ErrPersistence, err)
	}

	logger.Info("Opened sqlite store", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Get returns the values for the given keys.
func (s *SQLiteStore) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	query := fmt.Sprintf("SELECT key, value FROM kv WHERE key IN (%s)", placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordStoreError("get")
		return nil, fmt.Errorf("%w: get: %v", ErrPersistence, err)
	}
	defer rows.Close()

	result := make(map[string][]byte, len(keys))
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			metrics.RecordStoreError("get")
			return nil, fmt.Errorf("%w: scan: %v", ErrPersistence, err)
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError("get")
		return nil, fmt.Errorf("%w: rows: %v", ErrPersistence, err)
	}

	return result, nil
}

// Set upserts all entries.
func (s *SQLiteStore) Set(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	now := time.Now().Unix()
	for key, value := range entries {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now)
		if err != nil {
			metrics.RecordStoreError("set")
			return fmt.Errorf("%w: set %q: %v", ErrPersistence, key, err)
		}
	}

	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
