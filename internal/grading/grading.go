package grading

import (
	"context"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/logger"
)

// Explainer supplies the supplementary explanation for a question prompt.
type Explainer interface {
	Explain(ctx context.Context, question string) (string, error)
}

// Learner identifies who submitted the answers.
type Learner struct {
	Name  string
	Email string
	Topic string
}

// Engine grades submissions and attaches explanations.
type Engine struct {
	explainer Explainer
	log       *logger.Logger
}

func NewEngine(explainer Explainer, log *logger.Logger) *Engine {
	return &Engine{explainer: explainer, log: log.With("component", "grading")}
}

// Score grades answers without contacting any collaborator. Skipped answers
// are left out entirely; they count towards neither score nor max score.
func Score(answers []domain.SubmittedAnswer) (graded []domain.GradedQuestion, score, maxScore int) {
	graded = make([]domain.GradedQuestion, 0, len(answers))
	for i := range answers {
		answer := answers[i]
		if answer.Skipped() {
			continue
		}
		correct := answer.Question.CorrectLabel()
		isCorrect := correct != "" && answer.LearnerLabel == correct
		if isCorrect {
			score += domain.PointsPerCorrect
		}
		graded = append(graded, domain.GradedQuestion{
			Question:     answer.Question,
			LearnerLabel: answer.LearnerLabel,
			CorrectLabel: correct,
			IsCorrect:    isCorrect,
		})
	}
	return graded, score, domain.PointsPerCorrect * len(graded)
}

// Grade scores answers, then asks for one explanation per graded question,
// one at a time and in question order. A failed explanation is logged and
// left empty.
func (e *Engine) Grade(ctx context.Context, learner Learner, answers []domain.SubmittedAnswer) domain.QuizAttempt {
	graded, score, maxScore := Score(answers)

	for i := range graded {
		explanation, err := e.explainer.Explain(ctx, graded[i].Question.Prompt)
		if err != nil {
			e.log.Warn("explanation unavailable", "question", i, "error", err)
			continue
		}
		graded[i].Explanation = explanation
	}

	return domain.QuizAttempt{
		LearnerName:     learner.Name,
		LearnerEmail:    learner.Email,
		Topic:           learner.Topic,
		GradedQuestions: graded,
		Score:           score,
		MaxScore:        maxScore,
	}
}
