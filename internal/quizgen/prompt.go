package quizgen

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are an expert quiz question generator. Generate high-quality multiple choice questions with exactly 4 options each."

// formatRules pins the output to the grammar understood by the extractor.
const formatRules = `Format every question exactly like this, with blank lines where shown:

Question 1:

<question text on a single line>

(A) <option>
(B) <option>
(C) <option>
(D) <option>

Result: <letter of the correct option>

Number the questions consecutively. Do not add any other text.`

func buildFreshPrompt(topic string, count int, level string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generate %d multiple choice questions about: %s\n\n", count, topic))
	if level != "" {
		sb.WriteString(fmt.Sprintf("Difficulty level: %s\n\n", level))
	}
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each question must have exactly 4 multiple choice options\n")
	sb.WriteString("- Incorrect options should be plausible but clearly wrong\n")
	sb.WriteString("- Questions should test understanding, not just memorization\n\n")
	sb.WriteString(formatRules)
	return sb.String()
}

func buildHistoryPrompt(topic string, count int, level, history string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generate %d multiple choice questions about: %s\n\n", count, topic))
	if level != "" {
		sb.WriteString(fmt.Sprintf("Difficulty level: %s\n\n", level))
	}
	sb.WriteString("The learner has answered these questions before (question: their answer):\n")
	sb.WriteString(history)
	sb.WriteString("\n\nRequirements:\n")
	sb.WriteString("- Do not repeat any of the questions above\n")
	sb.WriteString("- Focus on concepts the learner appears to have struggled with\n")
	sb.WriteString("- Each question must have exactly 4 multiple choice options\n\n")
	sb.WriteString(formatRules)
	return sb.String()
}

func buildExplanationPrompt(question string) string {
	return fmt.Sprintf("Explain the concept behind the following quiz question in a short paragraph, "+
		"then state the key fact needed to answer it.\n\nQuestion: %s", question)
}
