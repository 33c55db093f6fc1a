package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/grading"
	"adaptive-quiz-service/internal/logger"
	"adaptive-quiz-service/internal/report"

	"github.com/google/uuid"
)

const defaultLevel = "medium"

// Deps collects the collaborators of QuizService. Searcher, Deliverer,
// Reports and Feed are optional.
type Deps struct {
	Quizzes      QuizRepository
	Records      *RecordManager
	Selector     *StrategySelector
	Extractor    QuestionExtractor
	Grader       *grading.Engine
	Searcher     MaterialSearcher
	Deliverer    Deliverer
	Reports      ReportStore
	Feed         *LeaderboardFeed
	Log          *logger.Logger
	MaxQuestions int
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	quizzes      QuizRepository
	records      *RecordManager
	selector     *StrategySelector
	extractor    QuestionExtractor
	grader       *grading.Engine
	searcher     MaterialSearcher
	deliverer    Deliverer
	reports      ReportStore
	feed         *LeaderboardFeed
	log          *logger.Logger
	maxQuestions int
	now          func() time.Time
}

func NewQuizService(deps Deps) *QuizService {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	feed := deps.Feed
	if feed == nil {
		feed = NewLeaderboardFeed()
	}
	return &QuizService{
		quizzes:      deps.Quizzes,
		records:      deps.Records,
		selector:     deps.Selector,
		extractor:    deps.Extractor,
		grader:       deps.Grader,
		searcher:     deps.Searcher,
		deliverer:    deps.Deliverer,
		reports:      deps.Reports,
		feed:         feed,
		log:          log.With("component", "quiz_service"),
		maxQuestions: deps.MaxQuestions,
		now:          time.Now,
	}
}

// GenerateRequest asks for a new quiz for one learner.
type GenerateRequest struct {
	Name         string
	Email        string
	Topic        string
	NumQuestions int
	Level        string
}

// Submission carries the learner's labels keyed by question index. A
// missing or blank label means the question was skipped.
type Submission struct {
	QuizID  string
	Answers map[int]string
}

// SubmitResult is what a finalized submission produced.
type SubmitResult struct {
	Attempt       domain.QuizAttempt
	StudyMaterial []domain.StudyMaterial
	Reports       []report.Artifact
}

func (r GenerateRequest) validate(maxQuestions int) error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("name and email are required: %w", domain.ErrInvalidRequest)
	}
	if r.NumQuestions < 1 || (maxQuestions > 0 && r.NumQuestions > maxQuestions) {
		return fmt.Errorf("number of questions must be between 1 and %d: %w", maxQuestions, domain.ErrInvalidRequest)
	}
	return nil
}

// GenerateQuiz selects a strategy for the learner, generates and extracts
// questions, and keeps the quiz until it is submitted.
func (s *QuizService) GenerateQuiz(ctx context.Context, req GenerateRequest) (domain.Quiz, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Topic = strings.TrimSpace(req.Topic)
	req.Level = strings.TrimSpace(req.Level)
	if err := req.validate(s.maxQuestions); err != nil {
		return domain.Quiz{}, err
	}
	if req.Level == "" {
		req.Level = defaultLevel
	}

	sel, err := s.selector.Select(ctx, req.Email, req.Topic, req.NumQuestions, req.Level)
	if err != nil {
		return domain.Quiz{}, err
	}

	questions := s.extractor.Extract(sel.Text)
	if len(questions) == 0 {
		s.log.Warn("generated text contained no questions", "strategy", sel.Strategy, "topic", req.Topic)
		return domain.Quiz{}, domain.ErrEmptyQuiz
	}

	quiz := domain.Quiz{
		ID:           uuid.NewString(),
		LearnerName:  req.Name,
		LearnerEmail: req.Email,
		Topic:        req.Topic,
		Level:        req.Level,
		Requested:    req.NumQuestions,
		Strategy:     sel.Strategy,
		Questions:    questions,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.quizzes.SaveQuiz(ctx, quiz); err != nil {
		s.log.Error("save quiz failed", "quiz_id", quiz.ID, "error", err)
		return domain.Quiz{}, fmt.Errorf("save quiz: %w", domain.ErrPersistence)
	}

	s.log.Info("quiz generated",
		"quiz_id", quiz.ID,
		"strategy", quiz.Strategy,
		"requested", req.NumQuestions,
		"extracted", len(questions),
	)
	return quiz, nil
}

// SubmitQuiz grades a submission, persists the attempt and produces the
// reports. Study material, rendering, storage and delivery failures are
// logged and never fail the submission.
func (s *QuizService) SubmitQuiz(ctx context.Context, sub Submission) (SubmitResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, sub.QuizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return SubmitResult{}, err
		}
		s.log.Error("load quiz failed", "quiz_id", sub.QuizID, "error", err)
		return SubmitResult{}, fmt.Errorf("load quiz: %w", domain.ErrPersistence)
	}

	answers, err := submittedAnswers(quiz, sub.Answers)
	if err != nil {
		return SubmitResult{}, err
	}

	attempt := s.grader.Grade(ctx, grading.Learner{
		Name:  quiz.LearnerName,
		Email: quiz.LearnerEmail,
		Topic: quiz.Topic,
	}, answers)
	attempt.CreatedAt = s.now().UTC()

	id, err := s.records.Finalize(ctx, attempt)
	if err != nil {
		return SubmitResult{}, err
	}
	attempt.ID = id

	result := SubmitResult{Attempt: attempt}
	result.StudyMaterial = s.studyMaterial(ctx, quiz.Topic)
	result.Reports = s.compileReports(attempt, result.StudyMaterial)

	if s.deliverer != nil && len(result.Reports) > 0 {
		if err := s.deliverer.Deliver(ctx, attempt.LearnerName, attempt.LearnerEmail, result.Reports...); err != nil {
			s.log.Warn("report delivery failed", "attempt_id", id, "error", err)
		}
	}

	s.publishLeaderboard(ctx)
	return result, nil
}

func submittedAnswers(quiz domain.Quiz, labels map[int]string) ([]domain.SubmittedAnswer, error) {
	for i := range labels {
		if i < 0 || i >= len(quiz.Questions) {
			return nil, fmt.Errorf("answer for unknown question %d: %w", i, domain.ErrInvalidRequest)
		}
	}

	answers := make([]domain.SubmittedAnswer, len(quiz.Questions))
	for i, q := range quiz.Questions {
		label := strings.TrimSpace(labels[i])
		if label != "" && !validLabel(label) {
			return nil, fmt.Errorf("answer %q for question %d: %w", label, i, domain.ErrInvalidRequest)
		}
		answers[i] = domain.SubmittedAnswer{Question: q, LearnerLabel: label}
	}
	return answers, nil
}

func validLabel(label string) bool {
	for _, l := range domain.Labels {
		if l == label {
			return true
		}
	}
	return false
}

func (s *QuizService) studyMaterial(ctx context.Context, topic string) []domain.StudyMaterial {
	if topic == "" || s.searcher == nil {
		return nil
	}
	materials, err := s.searcher.Search(ctx, topic)
	if err != nil {
		s.log.Warn("study material search failed", "topic", topic, "error", err)
		return nil
	}
	return materials
}

func (s *QuizService) compileReports(attempt domain.QuizAttempt, materials []domain.StudyMaterial) []report.Artifact {
	docs := []report.Document{
		report.ResultDocument(attempt),
		report.StudyDocument(attempt.Topic, materials),
	}

	artifacts := make([]report.Artifact, 0, len(docs))
	for _, doc := range docs {
		a, err := report.Render(doc)
		if err != nil {
			s.log.Error("render report failed", "attempt_id", attempt.ID, "report", doc.Name, "error", err)
			continue
		}
		artifacts = append(artifacts, a)
	}

	if s.reports == nil || len(artifacts) == 0 {
		return artifacts
	}
	saved, err := s.reports.Save(attempt.ID, artifacts)
	if err != nil {
		s.log.Warn("save reports failed", "attempt_id", attempt.ID, "error", err)
		return artifacts
	}
	return saved
}

func (s *QuizService) publishLeaderboard(ctx context.Context) {
	lb, err := s.Leaderboard(ctx)
	if err != nil {
		return
	}
	s.feed.Publish(lb)
}

// Leaderboard returns the current ranking.
func (s *QuizService) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	entries, err := s.records.Leaderboard(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now().UTC()}, nil
}

// History returns the learner's prior question/answer pairs.
func (s *QuizService) History(ctx context.Context, email string) ([]domain.HistoryEntry, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", domain.ErrInvalidRequest)
	}
	return s.records.HistoryFor(ctx, email)
}

// Subscribe returns a channel that receives the leaderboard now and after
// every finalized attempt. The caller must invoke the returned cancel
// function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	lb, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.Subscribe(lb)
	return ch, cancel, nil
}

// ReportPath resolves a saved report for download.
func (s *QuizService) ReportPath(attemptID, name string) (string, error) {
	if s.reports == nil {
		return "", report.ErrNotFound
	}
	return s.reports.Path(attemptID, name)
}
