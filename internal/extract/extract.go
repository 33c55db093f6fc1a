// Package extract turns generated quiz text into structured questions.
//
// The textual grammar is a contract with the generation prompts, so it is
// versioned and hidden behind Parser; grading and persistence only ever see
// domain.Question values.
package extract

import (
	"fmt"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/logger"
)

// Parser parses one grammar version.
type Parser interface {
	Version() string
	Parse(text string) Result
}

// Result is the outcome of parsing a text blob.
type Result struct {
	Questions []domain.Question
	// Blocks counts question markers seen, matched or not.
	Blocks int
}

// Extractor applies a Parser to collaborator output and logs mismatches.
type Extractor struct {
	parser Parser
	log    *logger.Logger
}

func New(parser Parser, log *logger.Logger) *Extractor {
	return &Extractor{parser: parser, log: log.With("component", "extractor", "grammar", parser.Version())}
}

// Extract returns the questions found in raw, in source order. Non-text
// input yields an empty slice; malformed blocks are dropped.
func (e *Extractor) Extract(raw any) []domain.Question {
	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	case fmt.Stringer:
		text = v.String()
	default:
		e.log.Warn("unexpected format for generated text", "type", fmt.Sprintf("%T", raw))
		return []domain.Question{}
	}

	res := e.parser.Parse(text)
	if dropped := res.Blocks - len(res.Questions); dropped > 0 {
		e.log.Warn("dropped question blocks not matching grammar",
			"blocks", res.Blocks,
			"parsed", len(res.Questions),
			"dropped", dropped,
		)
	}
	if res.Questions == nil {
		return []domain.Question{}
	}
	return res.Questions
}
