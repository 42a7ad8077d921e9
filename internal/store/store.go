// Package store handles local persistence: a small key-value table for the
// wizard and a journal of submissions.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/staffapp/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned by KV.Get when the key is absent.
var ErrNotFound = errors.New("store: key not found")

// KV is the key-value contract used by the draft store and the rate
// limiter.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store wraps SQLite access for wizard data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			nickname TEXT NOT NULL,
			submitted_at TEXT NOT NULL,
			delivered INTEGER NOT NULL,
			time_spent_seconds INTEGER NOT NULL,
			quiz_correct INTEGER NOT NULL,
			quiz_total INTEGER NOT NULL,
			suspicious INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_submitted_at ON submissions(submitted_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// RecordSubmission stores one delivery attempt.
func (s *Store) RecordSubmission(ctx context.Context, sub model.Submission) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO submissions (id, nickname, submitted_at, delivered, time_spent_seconds, quiz_correct, quiz_total, suspicious)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.Nickname,
		sub.SubmittedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(sub.Delivered),
		sub.TimeSpentSeconds,
		sub.QuizCorrect,
		sub.QuizTotal,
		boolToInt(sub.Suspicious),
	)
	if err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// ListSubmissions returns the most recent submissions, oldest first. A
// limit of zero returns all rows.
func (s *Store) ListSubmissions(ctx context.Context, limit int) ([]model.Submission, error) {
	query := `SELECT id, nickname, submitted_at, delivered, time_spent_seconds, quiz_correct, quiz_total, suspicious
		FROM submissions
		ORDER BY submitted_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Submission
	for rows.Next() {
		var sub model.Submission
		var submittedAt string
		var delivered, suspicious int
		if err := rows.Scan(&sub.ID, &sub.Nickname, &submittedAt, &delivered, &sub.TimeSpentSeconds, &sub.QuizCorrect, &sub.QuizTotal, &suspicious); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, submittedAt)
		if err != nil {
			return nil, err
		}
		sub.SubmittedAt = parsed
		sub.Delivered = delivered != 0
		sub.Suspicious = suspicious != 0
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
