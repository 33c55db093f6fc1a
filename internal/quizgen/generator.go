package quizgen

import (
	"context"

	"adaptive-quiz-service/internal/llm"
)

// Generator asks the text-generation collaborator for quiz text. Results are
// resolved to plain text here so callers never see provider shapes.
type Generator struct {
	provider    llm.Provider
	maxTokens   int
	temperature float64
}

func NewGenerator(provider llm.Provider, maxTokens int, temperature float64) *Generator {
	return &Generator{provider: provider, maxTokens: maxTokens, temperature: temperature}
}

// Generate requests count fresh questions on topic at level.
func (g *Generator) Generate(ctx context.Context, topic string, count int, level string) (string, error) {
	return g.call(ctx, "quiz", buildFreshPrompt(topic, count, level))
}

// GenerateWithHistory requests questions that take the learner's prior
// answers into account. history is "<question>: <answer>, ...".
func (g *Generator) GenerateWithHistory(ctx context.Context, topic string, count int, level, history string) (string, error) {
	return g.call(ctx, "quiz-history", buildHistoryPrompt(topic, count, level, history))
}

// Explain returns a supplementary explanation for a question prompt.
func (g *Generator) Explain(ctx context.Context, question string) (string, error) {
	return g.call(ctx, "explanation", buildExplanationPrompt(question))
}

func (g *Generator) call(ctx context.Context, purpose, prompt string) (string, error) {
	result, err := g.provider.Generate(ctx, llm.Request{
		Purpose:     purpose,
		System:      systemPrompt,
		Prompt:      prompt,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", err
	}
	return llm.ResolveText(result), nil
}
