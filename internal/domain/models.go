package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// PointsPerCorrect is awarded for every correctly answered question.
const PointsPerCorrect = 10

// Labels are the option labels in the order they appear in a question block.
var Labels = [4]string{"A", "B", "C", "D"}

// Question models a generated MCQ question with exactly four options (A-D).
// Answer holds the correct-answer field as produced by the generator; use
// CorrectLabel for the normalized letter.
type Question struct {
	Prompt  string    `json:"prompt"`
	Options [4]string `json:"options"`
	Answer  string    `json:"answer"`
}

// CorrectLabel returns the normalized correct label (see NormalizeAnswerKey).
func (q Question) CorrectLabel() string {
	return NormalizeAnswerKey(q.Answer)
}

// NormalizeAnswerKey keeps the text before the first ":" and returns its
// first character. "B: because..." becomes "B". An empty key yields "",
// which never equals a learner label.
func NormalizeAnswerKey(raw string) string {
	key, _, _ := strings.Cut(raw, ":")
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(key)
	return key[:size]
}

// SubmittedAnswer pairs a question with the learner's label. An empty
// LearnerLabel means the question was skipped.
type SubmittedAnswer struct {
	Question     Question
	LearnerLabel string
}

// Skipped reports whether the learner left the question unanswered.
func (a SubmittedAnswer) Skipped() bool {
	return a.LearnerLabel == ""
}

// GradedQuestion is the outcome of grading one non-skipped question.
type GradedQuestion struct {
	Question     Question `json:"question"`
	LearnerLabel string   `json:"learnerLabel"`
	CorrectLabel string   `json:"correctLabel"`
	IsCorrect    bool     `json:"isCorrect"`
	Explanation  string   `json:"explanation"`
}

// QuizAttempt is one learner's graded submission.
type QuizAttempt struct {
	ID              string           `json:"id"`
	LearnerName     string           `json:"learnerName"`
	LearnerEmail    string           `json:"learnerEmail"`
	Topic           string           `json:"topic"`
	GradedQuestions []GradedQuestion `json:"gradedQuestions"`
	Score           int              `json:"score"`
	MaxScore        int              `json:"maxScore"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// Response is the persisted question/answer pair of an attempt.
type Response struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
}

// AttemptRecord is the persisted shape of a QuizAttempt.
type AttemptRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Topic     string     `json:"topic"`
	Responses []Response `json:"responses"`
	Score     int        `json:"score"`
	MaxScore  int        `json:"max_score"`
	CreatedAt time.Time  `json:"created_at"`
}

// LeaderboardEntry is the read-only projection of a persisted attempt.
type LeaderboardEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Topic string `json:"topic"`
}

// Leaderboard captures the ordered ranking at a point in time.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Strategy names the generation path chosen for a learner.
type Strategy string

const (
	StrategyFresh   Strategy = "fresh"
	StrategyHistory Strategy = "history"
)

// Quiz is a generated question set held until the learner submits.
type Quiz struct {
	ID           string     `json:"id"`
	LearnerName  string     `json:"learnerName"`
	LearnerEmail string     `json:"learnerEmail"`
	Topic        string     `json:"topic"`
	Level        string     `json:"level"`
	Requested    int        `json:"requested"`
	Strategy     Strategy   `json:"strategy"`
	Questions    []Question `json:"questions"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// StudyMaterial is one supplementary search hit for a topic.
type StudyMaterial struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// HistoryEntry is one prior question/answer pair of a learner.
type HistoryEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
