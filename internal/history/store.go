// Package history keeps a SQLite-backed audit trail of backend calls so a
// user can see what was sent to which backend, when, and how it went.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"clinweaver/internal/llm"
)

// Store records generation-backend calls. It implements llm.Recorder.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Entry is one recorded backend call.
type Entry struct {
	ID            string
	Backend       string
	PromptChars   int
	ResponseChars int
	Duration      time.Duration
	Err           string
	StartedAt     time.Time
}

// Open initializes the history database at the given path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS backend_calls (
		id TEXT PRIMARY KEY,
		backend TEXT NOT NULL,
		prompt_chars INTEGER NOT NULL,
		response_chars INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		err TEXT NOT NULL DEFAULT '',
		started_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_backend_calls_started ON backend_calls(started_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// Record stores one call record. Recording failures are swallowed: the audit
// trail must never break the pipeline stage that triggered the call.
func (s *Store) Record(ctx context.Context, rec llm.CallRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO backend_calls
		 (id, backend, prompt_chars, response_chars, duration_ms, err, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Backend, rec.PromptChars, rec.ResponseChars,
		rec.Duration.Milliseconds(), rec.Err, rec.StartedAt.UTC().Format(time.RFC3339Nano))
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, backend, prompt_chars, response_chars, duration_ms, err, started_at
		 FROM backend_calls ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMS int64
		var startedAt string
		if err := rows.Scan(&e.ID, &e.Backend, &e.PromptChars, &e.ResponseChars,
			&durationMS, &e.Err, &startedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			e.StartedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
