// Package sqlite stores attempt records in a single-file SQLite database
// for deployments without Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"adaptive-quiz-service/internal/domain"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS quiz_attempts (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	topic      TEXT NOT NULL,
	responses  TEXT NOT NULL,
	score      INTEGER NOT NULL,
	max_score  INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS quiz_attempts_email_idx ON quiz_attempts (email, seq);`

const selectAttempts = `SELECT id, name, email, topic, responses, score, max_score, created_at FROM quiz_attempts`

// AttemptStore is an append-only attempt store backed by SQLite.
type AttemptStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*AttemptStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &AttemptStore{db: db}, nil
}

func (s *AttemptStore) Close() error {
	return s.db.Close()
}

func (s *AttemptStore) Insert(ctx context.Context, rec domain.AttemptRecord) error {
	responses, err := json.Marshal(rec.Responses)
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quiz_attempts (id, name, email, topic, responses, score, max_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Email, rec.Topic, string(responses), rec.Score, rec.MaxScore,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) FindByEmail(ctx context.Context, email string) ([]domain.AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectAttempts+` WHERE email = ? ORDER BY seq`, email)
	if err != nil {
		return nil, fmt.Errorf("query attempts by email: %w", err)
	}
	return scanAttempts(rows)
}

func (s *AttemptStore) All(ctx context.Context) ([]domain.AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectAttempts+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return scanAttempts(rows)
}

func scanAttempts(rows *sql.Rows) ([]domain.AttemptRecord, error) {
	defer rows.Close()

	records := make([]domain.AttemptRecord, 0)
	for rows.Next() {
		var (
			rec       domain.AttemptRecord
			responses string
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Topic, &responses, &rec.Score, &rec.MaxScore, &createdAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal([]byte(responses), &rec.Responses); err != nil {
			return nil, fmt.Errorf("unmarshal responses of %s: %w", rec.ID, err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read attempts: %w", err)
	}
	return records, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
