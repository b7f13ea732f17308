package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	client_id  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (client_id, key)
)`

// SQLiteProvider keeps every client's values in one SQLite database.
type SQLiteProvider struct {
	mu sync.RWMutex
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(path string) (*SQLiteProvider, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migrate sqlite: %w", err)
	}
	return &SQLiteProvider{db: db}, nil
}

// Close releases the database handle.
func (p *SQLiteProvider) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// ForClient returns a Store view for clientID.
func (p *SQLiteProvider) ForClient(clientID string) (Store, error) {
	if !validClientID(clientID) {
		return nil, ErrInvalidClient
	}
	return &sqliteStore{provider: p, clientID: clientID}, nil
}

type sqliteStore struct {
	provider *SQLiteProvider
	clientID string
}

func (s *sqliteStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	s.provider.mu.RLock()
	defer s.provider.mu.RUnlock()

	var value []byte
	err := s.provider.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE client_id = ? AND key = ?",
		s.clientID, string(key),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *sqliteStore) Set(ctx context.Context, key Key, value []byte) error {
	if !validKey(key) {
		return fmt.Errorf("storage: unknown key %q", key)
	}
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()

	_, err := s.provider.db.ExecContext(ctx,
		`INSERT INTO kv (client_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(client_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.clientID, string(key), value, time.Now().UTC(),
	)
	return err
}

func (s *sqliteStore) Remove(ctx context.Context, key Key) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()

	_, err := s.provider.db.ExecContext(ctx,
		"DELETE FROM kv WHERE client_id = ? AND key = ?",
		s.clientID, string(key),
	)
	return err
}
