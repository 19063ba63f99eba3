// Package store provides a SQLite-backed query log for the FAQ service.
// Every answered question is recorded with its answer and confidence score,
// keyed by the caller-supplied conversation ID. The log is write-mostly:
// the answer pipeline never reads it, it exists for operator review and the
// one-shot `faqrag history` style tooling.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Entry is one logged question/answer exchange.
type Entry struct {
	// ConversationID groups entries from the same caller session.
	ConversationID string
	// Question is the question as asked.
	Question string
	// Answer is the answer as returned, fallback messages included.
	Answer string
	// Confidence is the retrieval confidence score for the answer.
	Confidence float64
	// CreatedAt is when the entry was persisted.
	CreatedAt time.Time
}

// QueryLog persists and retrieves answered questions keyed by conversation
// ID. Implementations must be safe for concurrent use.
type QueryLog interface {
	// Record persists a single exchange.
	Record(ctx context.Context, conversationID, question, answer string, confidence float64) error
	// Recent returns the most recent n entries for the conversation,
	// ordered oldest-first. If fewer than n exist, all are returned.
	Recent(ctx context.Context, conversationID string, n int) ([]Entry, error)
	// Close releases any resources held by the log.
	Close() error
}

// SQLiteLog is a QueryLog backed by a local SQLite database.
type SQLiteLog struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the query log database.
// It resolves to ~/.faqrag/history.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".faqrag")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (or creates) a SQLiteLog at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteLog, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteLog{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteLog) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS queries (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    conversation_id TEXT    NOT NULL,
    question        TEXT    NOT NULL,
    answer          TEXT    NOT NULL,
    confidence      REAL    NOT NULL,
    created_at      INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_queries_conversation_created
    ON queries (conversation_id, created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Record persists a single exchange.
func (s *SQLiteLog) Record(ctx context.Context, conversationID, question, answer string, confidence float64) error {
	const q = `INSERT INTO queries (conversation_id, question, answer, confidence, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, conversationID, question, answer, confidence, time.Now().Unix()); err != nil {
		return fmt.Errorf("store: record: %w", err)
	}
	return nil
}

// Recent returns the most recent n entries for the conversation, ordered
// oldest-first. Uses a subquery to select the tail then re-order for display.
func (s *SQLiteLog) Recent(ctx context.Context, conversationID string, n int) ([]Entry, error) {
	const q = `
SELECT conversation_id, question, answer, confidence, created_at FROM (
    SELECT id, conversation_id, question, answer, confidence, created_at
    FROM   queries
    WHERE  conversation_id = ?
    ORDER  BY created_at DESC, id DESC
    LIMIT  ?
) ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q, conversationID, n)
	if err != nil {
		return nil, fmt.Errorf("store: recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ConversationID, &e.Question, &e.Answer, &e.Confidence, &ts); err != nil {
			return nil, fmt.Errorf("store: recent scan: %w", err)
		}
		e.CreatedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent rows: %w", err)
	}
	return entries, nil
}

// Close releases the database connection pool.
func (s *SQLiteLog) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
