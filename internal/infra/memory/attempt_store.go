package memory

import (
	"context"
	"sync"

	"adaptive-quiz-service/internal/domain"
)

// AttemptStore is an append-only in-process record store.
type AttemptStore struct {
	mu      sync.RWMutex
	records []domain.AttemptRecord
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{}
}

func (s *AttemptStore) Insert(_ context.Context, record domain.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, cloneRecord(record))
	return nil
}

func (s *AttemptStore) FindByEmail(_ context.Context, email string) ([]domain.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AttemptRecord, 0)
	for _, rec := range s.records {
		if rec.Email == email {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (s *AttemptStore) All(_ context.Context) ([]domain.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AttemptRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, cloneRecord(rec))
	}
	return out, nil
}

func cloneRecord(rec domain.AttemptRecord) domain.AttemptRecord {
	rec.Responses = append([]domain.Response(nil), rec.Responses...)
	return rec
}
