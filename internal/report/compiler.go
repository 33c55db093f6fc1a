package report

import (
	"fmt"

	"adaptive-quiz-service/internal/domain"
)

const (
	ResultFile = "quiz_result.pdf"
	StudyFile  = "study_material.pdf"

	NoTopicLine    = "No topic was provided, so no study material could be retrieved."
	NoMaterialLine = "No study material found for this topic."
)

// Document is an ordered list of logical lines. Each line becomes one
// paragraph when rendered; a line may itself contain newlines.
type Document struct {
	Name  string
	Lines []string
}

// ResultDocument lays out the score line followed by one block per graded
// question.
func ResultDocument(attempt domain.QuizAttempt) Document {
	lines := make([]string, 0, len(attempt.GradedQuestions)+1)
	lines = append(lines, fmt.Sprintf("Your score: %d/%d", attempt.Score, attempt.MaxScore))
	for _, g := range attempt.GradedQuestions {
		q := g.Question
		lines = append(lines, fmt.Sprintf(
			"Question: %s\nOptions:\n(A) %s\n(B) %s\n(C) %s\n(D) %s\nYour Answer: %s\nCorrect Answer: %s\nAdditional Info: %s",
			q.Prompt, q.Options[0], q.Options[1], q.Options[2], q.Options[3],
			g.LearnerLabel, g.CorrectLabel, g.Explanation,
		))
	}
	return Document{Name: ResultFile, Lines: lines}
}

// StudyDocument lays out one block per study-material entry, or a single
// placeholder line when there is no topic or nothing was found.
func StudyDocument(topic string, materials []domain.StudyMaterial) Document {
	doc := Document{Name: StudyFile}
	switch {
	case topic == "":
		doc.Lines = []string{NoTopicLine}
	case len(materials) == 0:
		doc.Lines = []string{NoMaterialLine}
	default:
		doc.Lines = make([]string, 0, len(materials))
		for _, m := range materials {
			doc.Lines = append(doc.Lines, fmt.Sprintf("Title: %s\n\nLink:\n %s\n\nSnippet:\n%s",
				orDefault(m.Title, "No title"),
				orDefault(m.Link, "No link"),
				orDefault(m.Snippet, "No snippet"),
			))
		}
	}
	return doc
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
