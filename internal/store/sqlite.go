// Package store persists the resumable session snapshot and the game
// history as JSON blobs in a local SQLite database. Reads fail open:
// missing or corrupt data is treated as absent so a bad blob can never
// keep the game from starting.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"showdown/internal/game"
)

// Storage keys, one per blob, mirroring the two records the game keeps.
const (
	sessionKey = "truthOrDareGameState"
	historyKey = "truthOrDareGameHistory"
)

type SQLite struct {
	db *sql.DB
}

// Open initializes the database at path, creating the file and schema
// as needed.
func Open(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS blobs (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// LoadSession returns the saved snapshot if one exists and parses.
func (s *SQLite) LoadSession() (*game.Snapshot, bool, error) {
	raw, ok, err := s.get(sessionKey)
	if err != nil || !ok {
		return nil, false, err
	}
	var snap game.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, false, fmt.Errorf("corrupt session snapshot: %w", err)
	}
	return &snap, true, nil
}

func (s *SQLite) SaveSession(snap game.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}
	return s.set(sessionKey, string(raw))
}

func (s *SQLite) ClearSession() error {
	return s.delete(sessionKey)
}

// LoadHistory returns the saved history, or nil when absent or corrupt.
func (s *SQLite) LoadHistory() ([]game.GameResult, error) {
	raw, ok, err := s.get(historyKey)
	if err != nil || !ok {
		return nil, err
	}
	var history []game.GameResult
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, fmt.Errorf("corrupt game history: %w", err)
	}
	return history, nil
}

func (s *SQLite) SaveHistory(history []game.GameResult) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode game history: %w", err)
	}
	return s.set(historyKey, string(raw))
}

func (s *SQLite) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}
