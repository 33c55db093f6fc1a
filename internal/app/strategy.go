package app

import (
	"context"
	"fmt"
	"strings"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/logger"
)

// HistorySource returns a learner's prior question/answer pairs.
type HistorySource interface {
	HistoryFor(ctx context.Context, email string) ([]domain.HistoryEntry, error)
}

// Selection is the generated text together with the path that produced it.
type Selection struct {
	Strategy domain.Strategy
	History  string
	Text     string
}

// StrategySelector picks fresh or history-aware generation per learner.
type StrategySelector struct {
	history   HistorySource
	generator QuizGenerator
	log       *logger.Logger
}

func NewStrategySelector(history HistorySource, generator QuizGenerator, log *logger.Logger) *StrategySelector {
	return &StrategySelector{history: history, generator: generator, log: log.With("component", "strategy")}
}

// FormatHistory renders entries as "<question>: <answer>, <question>: <answer>".
func FormatHistory(entries []domain.HistoryEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Question + ": " + e.Answer
	}
	return strings.Join(parts, ", ")
}

// Select generates quiz text for email. Learners with prior answers get the
// history-aware path. A generator failure is logged and reported as
// domain.ErrGenerationFailed.
func (s *StrategySelector) Select(ctx context.Context, email, topic string, count int, level string) (Selection, error) {
	entries, err := s.history.HistoryFor(ctx, email)
	if err != nil {
		return Selection{}, err
	}

	sel := Selection{Strategy: domain.StrategyFresh}
	if len(entries) > 0 {
		sel.Strategy = domain.StrategyHistory
		sel.History = FormatHistory(entries)
		sel.Text, err = s.generator.GenerateWithHistory(ctx, topic, count, level, sel.History)
	} else {
		sel.Text, err = s.generator.Generate(ctx, topic, count, level)
	}
	if err != nil {
		s.log.Error("quiz generation failed", "strategy", sel.Strategy, "topic", topic, "error", err)
		return Selection{}, fmt.Errorf("select %s: %w", sel.Strategy, domain.ErrGenerationFailed)
	}

	s.log.Debug("quiz text generated", "strategy", sel.Strategy, "history_pairs", len(entries), "bytes", len(sel.Text))
	return sel, nil
}
