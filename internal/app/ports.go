package app

import (
	"context"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/report"
)

// QuizRepository holds generated quizzes until the learner submits them.
type QuizRepository interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AttemptStore is an append-only record store. Reads return records in
// insertion order.
type AttemptStore interface {
	Insert(ctx context.Context, record domain.AttemptRecord) error
	FindByEmail(ctx context.Context, email string) ([]domain.AttemptRecord, error)
	All(ctx context.Context) ([]domain.AttemptRecord, error)
}

// LeaderboardCache memoizes the leaderboard between writes. load computes
// it from the attempt store on a miss.
type LeaderboardCache interface {
	Leaderboard(ctx context.Context, load func(context.Context) ([]domain.LeaderboardEntry, error)) ([]domain.LeaderboardEntry, error)
	Invalidate(ctx context.Context) error
}

// QuizGenerator is the text-generation collaborator.
type QuizGenerator interface {
	Generate(ctx context.Context, topic string, count int, level string) (string, error)
	GenerateWithHistory(ctx context.Context, topic string, count int, level, history string) (string, error)
}

// QuestionExtractor turns generated text into questions.
type QuestionExtractor interface {
	Extract(raw any) []domain.Question
}

// MaterialSearcher finds supplementary study material for a topic.
type MaterialSearcher interface {
	Search(ctx context.Context, topic string) ([]domain.StudyMaterial, error)
}

// Deliverer sends rendered reports to the learner.
type Deliverer interface {
	Deliver(ctx context.Context, name, email string, documents ...report.Artifact) error
}

// ReportStore keeps rendered reports for later download.
type ReportStore interface {
	Save(attemptID string, artifacts []report.Artifact) ([]report.Artifact, error)
	Path(attemptID, name string) (string, error)
}
