package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/memory"
	"adaptive-quiz-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ err error }

func (f failingStore) Insert(context.Context, domain.AttemptRecord) error { return f.err }
func (f failingStore) FindByEmail(context.Context, string) ([]domain.AttemptRecord, error) {
	return nil, f.err
}
func (f failingStore) All(context.Context) ([]domain.AttemptRecord, error) { return nil, f.err }

// blockingStore pauses the first All after it has read the records, until
// release is closed.
type blockingStore struct {
	*memory.AttemptStore
	scanned chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) All(ctx context.Context) ([]domain.AttemptRecord, error) {
	records, err := b.AttemptStore.All(ctx)
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.scanned)
		<-b.release
	}
	return records, err
}

func attemptWith(email string, score int, pairs ...[2]string) domain.QuizAttempt {
	a := domain.QuizAttempt{LearnerName: "Ada", LearnerEmail: email, Topic: "Algebra", Score: score}
	for _, p := range pairs {
		a.GradedQuestions = append(a.GradedQuestions, domain.GradedQuestion{
			Question:     domain.Question{Prompt: p[0], Answer: "A"},
			LearnerLabel: p[1],
		})
	}
	a.MaxScore = 10 * len(a.GradedQuestions)
	return a
}

func TestLeaderboardSortsByScoreDescending(t *testing.T) {
	ctx := context.Background()
	m := NewRecordManager(memory.NewAttemptStore(), nil, logger.Nop())

	for _, score := range []int{30, 50, 10} {
		_, err := m.Finalize(ctx, attemptWith("a@example.com", score))
		require.NoError(t, err)
	}

	entries, err := m.Leaderboard(ctx)
	require.NoError(t, err)
	scores := make([]int, 0, len(entries))
	for _, e := range entries {
		scores = append(scores, e.Score)
	}
	assert.Equal(t, []int{50, 30, 10}, scores)
}

func TestRankRecordsKeepsStoreOrderForTies(t *testing.T) {
	entries := RankRecords([]domain.AttemptRecord{
		{ID: "1", Name: "first", Score: 20},
		{ID: "2", Score: 40},
		{ID: "3", Name: "third", Score: 20, Topic: "Sets"},
	})
	require.Len(t, entries, 3)
	assert.Equal(t, "2", entries[0].ID)
	assert.Equal(t, "N/A", entries[0].Name)
	assert.Equal(t, "N/A", entries[0].Topic)
	assert.Equal(t, "1", entries[1].ID)
	assert.Equal(t, "3", entries[2].ID)
}

func TestHistoryForConcatenatesInRecordOrder(t *testing.T) {
	ctx := context.Background()
	m := NewRecordManager(memory.NewAttemptStore(), nil, logger.Nop())

	_, err := m.Finalize(ctx, attemptWith("a@example.com", 10, [2]string{"Q1", "A"}))
	require.NoError(t, err)
	_, err = m.Finalize(ctx, attemptWith("other@example.com", 10, [2]string{"Q9", "C"}))
	require.NoError(t, err)
	_, err = m.Finalize(ctx, attemptWith("a@example.com", 0, [2]string{"Q2", "B"}))
	require.NoError(t, err)

	history, err := m.HistoryFor(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, []domain.HistoryEntry{{Question: "Q1", Answer: "A"}, {Question: "Q2", Answer: "B"}}, history)

	none, err := m.HistoryFor(ctx, "A@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFinalizeAlwaysCreatesNewRecord(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAttemptStore()
	m := NewRecordManager(store, nil, logger.Nop())

	attempt := attemptWith("a@example.com", 20, [2]string{"Q1", "A"})
	id1, err := m.Finalize(ctx, attempt)
	require.NoError(t, err)
	id2, err := m.Finalize(ctx, attempt)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	all, _ := store.All(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, id1, all[0].ID)
	assert.Equal(t, "A", all[0].Responses[0].CorrectAnswer)
	assert.False(t, all[0].CreatedAt.IsZero())
}

func TestStoreErrorsBecomePersistenceErrors(t *testing.T) {
	ctx := context.Background()
	raw := errors.New("connection refused")
	m := NewRecordManager(failingStore{err: raw}, nil, logger.Nop())

	_, err := m.Finalize(ctx, attemptWith("a@example.com", 10))
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NotErrorIs(t, err, raw)

	_, err = m.HistoryFor(ctx, "a@example.com")
	assert.ErrorIs(t, err, domain.ErrPersistence)

	_, err = m.Leaderboard(ctx)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestFinalizeInvalidatesLeaderboardCache(t *testing.T) {
	ctx := context.Background()
	m := NewRecordManager(memory.NewAttemptStore(), memory.NewLeaderboardCache(0), logger.Nop())

	_, err := m.Finalize(ctx, attemptWith("a@example.com", 10))
	require.NoError(t, err)
	first, err := m.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = m.Finalize(ctx, attemptWith("b@example.com", 40))
	require.NoError(t, err)
	second, err := m.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, 40, second[0].Score)
}

func TestFinalizeDuringLeaderboardLoadIsNotLost(t *testing.T) {
	ctx := context.Background()
	store := &blockingStore{
		AttemptStore: memory.NewAttemptStore(),
		scanned:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	m := NewRecordManager(store, memory.NewLeaderboardCache(time.Minute), logger.Nop())

	done := make(chan []domain.LeaderboardEntry)
	go func() {
		entries, _ := m.Leaderboard(ctx)
		done <- entries
	}()
	<-store.scanned

	_, err := m.Finalize(ctx, attemptWith("a@example.com", 30))
	require.NoError(t, err)
	close(store.release)
	assert.Empty(t, <-done)

	entries, err := m.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 30, entries[0].Score)
}
