package llm

import (
	"context"
	"fmt"
)

// Provider is the text-generation collaborator.
type Provider interface {
	// Generate sends a prompt and returns the raw generated result. Callers
	// turn it into text with ResolveText.
	Generate(ctx context.Context, req Request) (TextResult, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes a single-turn generation.
type Request struct {
	// Purpose labels the request in logs, e.g. "quiz" or "explanation".
	Purpose string

	System string
	Prompt string

	MaxTokens   int
	Temperature float64
}

// TextResult is what a provider hands back. It is one of Structured,
// Mapping or Raw.
type TextResult interface {
	isTextResult()
}

// Structured is a typed response that exposes its text directly.
type Structured struct {
	Text string
}

// Mapping is a decoded key/value response; its text lives under "text".
type Mapping map[string]any

// Raw is any other value; its text is its string form.
type Raw struct {
	Value any
}

func (Structured) isTextResult() {}
func (Mapping) isTextResult()    {}
func (Raw) isTextResult()        {}

// ResolveText turns any TextResult into text: Structured yields its Text,
// Mapping yields the "text" key (empty when absent), everything else is
// stringified.
func ResolveText(r TextResult) string {
	switch v := r.(type) {
	case Structured:
		return v.Text
	case *Structured:
		if v == nil {
			return ""
		}
		return v.Text
	case Mapping:
		text, ok := v["text"]
		if !ok || text == nil {
			return ""
		}
		if s, ok := text.(string); ok {
			return s
		}
		return fmt.Sprint(text)
	case Raw:
		if s, ok := v.Value.(string); ok {
			return s
		}
		if b, ok := v.Value.([]byte); ok {
			return string(b)
		}
		return fmt.Sprint(v.Value)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
