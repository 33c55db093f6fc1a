package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"adaptive-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const selectAttempts = `SELECT id, name, email, topic, responses, score, max_score, created_at FROM quiz_attempts`

// AttemptStore appends attempt records to quiz_attempts. The seq column
// keeps insertion order for reads.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) Insert(ctx context.Context, rec domain.AttemptRecord) error {
	responses, err := json.Marshal(rec.Responses)
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_attempts (id, name, email, topic, responses, score, max_score, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Name, rec.Email, rec.Topic, responses, rec.Score, rec.MaxScore, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) FindByEmail(ctx context.Context, email string) ([]domain.AttemptRecord, error) {
	rows, err := s.pool.Query(ctx, selectAttempts+` WHERE email=$1 ORDER BY seq`, email)
	if err != nil {
		return nil, fmt.Errorf("query attempts by email: %w", err)
	}
	return scanAttempts(rows)
}

func (s *AttemptStore) All(ctx context.Context) ([]domain.AttemptRecord, error) {
	rows, err := s.pool.Query(ctx, selectAttempts+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return scanAttempts(rows)
}

func scanAttempts(rows pgx.Rows) ([]domain.AttemptRecord, error) {
	defer rows.Close()

	records := make([]domain.AttemptRecord, 0)
	for rows.Next() {
		var (
			rec domain.AttemptRecord
			raw []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Topic, &raw, &rec.Score, &rec.MaxScore, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal(raw, &rec.Responses); err != nil {
			return nil, fmt.Errorf("unmarshal responses of %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read attempts: %w", err)
	}
	return records, nil
}
