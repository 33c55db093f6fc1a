package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/logger"

	"github.com/google/uuid"
)

const missingField = "N/A"

// RecordManager is the only writer of attempt records. Store errors are
// logged here and replaced with domain.ErrPersistence.
type RecordManager struct {
	store AttemptStore
	cache LeaderboardCache
	log   *logger.Logger
	now   func() time.Time
	newID func() string
}

// NewRecordManager wires a store and an optional leaderboard cache.
func NewRecordManager(store AttemptStore, cache LeaderboardCache, log *logger.Logger) *RecordManager {
	return &RecordManager{
		store: store,
		cache: cache,
		log:   log.With("component", "records"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// ToRecord projects an attempt onto its persisted shape.
func ToRecord(attempt domain.QuizAttempt) domain.AttemptRecord {
	responses := make([]domain.Response, 0, len(attempt.GradedQuestions))
	for _, g := range attempt.GradedQuestions {
		responses = append(responses, domain.Response{
			Question:      g.Question.Prompt,
			UserAnswer:    g.LearnerLabel,
			CorrectAnswer: g.Question.Answer,
		})
	}
	return domain.AttemptRecord{
		ID:        attempt.ID,
		Name:      attempt.LearnerName,
		Email:     attempt.LearnerEmail,
		Topic:     attempt.Topic,
		Responses: responses,
		Score:     attempt.Score,
		MaxScore:  attempt.MaxScore,
		CreatedAt: attempt.CreatedAt,
	}
}

// Finalize persists attempt as a new record and returns its id. Every call
// creates a new record, even for an identical attempt.
func (m *RecordManager) Finalize(ctx context.Context, attempt domain.QuizAttempt) (string, error) {
	attempt.ID = m.newID()
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = m.now().UTC()
	}

	if err := m.store.Insert(ctx, ToRecord(attempt)); err != nil {
		m.log.Error("insert attempt failed", "email", attempt.LearnerEmail, "error", err)
		return "", fmt.Errorf("finalize attempt: %w", domain.ErrPersistence)
	}

	if m.cache != nil {
		if err := m.cache.Invalidate(ctx); err != nil {
			m.log.Warn("leaderboard cache invalidation failed", "error", err)
		}
	}
	m.log.Info("attempt finalized", "id", attempt.ID, "score", attempt.Score, "max_score", attempt.MaxScore)
	return attempt.ID, nil
}

// HistoryFor flattens the responses of every record whose email matches
// exactly, in record order then response order.
func (m *RecordManager) HistoryFor(ctx context.Context, email string) ([]domain.HistoryEntry, error) {
	records, err := m.store.FindByEmail(ctx, email)
	if err != nil {
		m.log.Error("read history failed", "email", email, "error", err)
		return nil, fmt.Errorf("history for %s: %w", email, domain.ErrPersistence)
	}

	entries := make([]domain.HistoryEntry, 0)
	for _, rec := range records {
		if rec.Email != email {
			continue
		}
		for _, r := range rec.Responses {
			entries = append(entries, domain.HistoryEntry{Question: r.Question, Answer: r.UserAnswer})
		}
	}
	return entries, nil
}

// Leaderboard ranks all records by score, highest first. Equal scores keep
// store order.
func (m *RecordManager) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	var (
		entries []domain.LeaderboardEntry
		err     error
	)
	if m.cache != nil {
		entries, err = m.cache.Leaderboard(ctx, m.loadLeaderboard)
	} else {
		entries, err = m.loadLeaderboard(ctx)
	}
	if err != nil {
		m.log.Error("read leaderboard failed", "error", err)
		return nil, fmt.Errorf("leaderboard: %w", domain.ErrPersistence)
	}
	return entries, nil
}

func (m *RecordManager) loadLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	records, err := m.store.All(ctx)
	if err != nil {
		return nil, err
	}
	return RankRecords(records), nil
}

// RankRecords projects records onto leaderboard entries sorted by score
// descending with a stable sort.
func RankRecords(records []domain.AttemptRecord) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, domain.LeaderboardEntry{
			ID:    rec.ID,
			Name:  orMissing(rec.Name),
			Score: rec.Score,
			Topic: orMissing(rec.Topic),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

func orMissing(v string) string {
	if v == "" {
		return missingField
	}
	return v
}
