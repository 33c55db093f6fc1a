package app

import (
	"context"
	"errors"
	"testing"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHistory struct {
	entries []domain.HistoryEntry
	err     error
}

func (s stubHistory) HistoryFor(context.Context, string) ([]domain.HistoryEntry, error) {
	return s.entries, s.err
}

type recordingGenerator struct {
	fresh   int
	history []string
	err     error
}

func (g *recordingGenerator) Generate(context.Context, string, int, string) (string, error) {
	g.fresh++
	return "fresh text", g.err
}

func (g *recordingGenerator) GenerateWithHistory(_ context.Context, _ string, _ int, _ string, history string) (string, error) {
	g.history = append(g.history, history)
	return "history text", g.err
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "", FormatHistory(nil))
	assert.Equal(t, "Q1: A, Q2: B", FormatHistory([]domain.HistoryEntry{
		{Question: "Q1", Answer: "A"},
		{Question: "Q2", Answer: "B"},
	}))
}

func TestSelectFreshWithoutHistory(t *testing.T) {
	gen := &recordingGenerator{}
	s := NewStrategySelector(stubHistory{}, gen, logger.Nop())

	sel, err := s.Select(context.Background(), "a@example.com", "Algebra", 3, "easy")
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyFresh, sel.Strategy)
	assert.Equal(t, "fresh text", sel.Text)
	assert.Equal(t, 1, gen.fresh)
	assert.Empty(t, gen.history)
}

func TestSelectHistoryAware(t *testing.T) {
	gen := &recordingGenerator{}
	s := NewStrategySelector(stubHistory{entries: []domain.HistoryEntry{{Question: "Q1", Answer: "A"}}}, gen, logger.Nop())

	sel, err := s.Select(context.Background(), "a@example.com", "Algebra", 3, "easy")
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyHistory, sel.Strategy)
	assert.Equal(t, []string{"Q1: A"}, gen.history)
	assert.Zero(t, gen.fresh)
}

func TestSelectGenerationFailure(t *testing.T) {
	raw := errors.New("upstream 500")
	s := NewStrategySelector(stubHistory{}, &recordingGenerator{err: raw}, logger.Nop())

	_, err := s.Select(context.Background(), "a@example.com", "Algebra", 3, "easy")
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.NotErrorIs(t, err, raw)
}

func TestSelectHistoryFailure(t *testing.T) {
	gen := &recordingGenerator{}
	s := NewStrategySelector(stubHistory{err: domain.ErrPersistence}, gen, logger.Nop())

	_, err := s.Select(context.Background(), "a@example.com", "Algebra", 3, "easy")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Zero(t, gen.fresh)
}
