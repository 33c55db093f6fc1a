package llm

import (
	"context"
	"fmt"
	"time"
)

// ProviderConfig holds the settings shared by every provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Config selects and configures a provider.
type Config struct {
	// Provider is one of "openai", "anthropic", "gemini", "agent", "mock".
	Provider string
	ProviderConfig
	Retry RetryConfig
}

// NewProvider builds the configured provider wrapped with retries. The mock
// provider is returned bare.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg.ProviderConfig)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.ProviderConfig)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.ProviderConfig)
	case "agent":
		base, err = NewAgentProvider(cfg.ProviderConfig)
	case "mock":
		return NewMockProvider().WithFallback(SampleQuizText), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return WithRetry(base, cfg.Retry), nil
}

// SampleQuizText answers every request with a fixed, grammar-conformant
// quiz or a short explanation. It backs the "mock" provider for local runs.
func SampleQuizText(req Request) TextResult {
	if req.Purpose == "explanation" {
		return Structured{Text: "Review the definitions behind this question and try a similar problem."}
	}
	return Structured{Text: "Question 1:\n\nWhat is 2 + 2?\n\n(A) 3\n(B) 4\n(C) 5\n(D) 22\n\nResult: B\n\n" +
		"Question 2:\n\nWhich number is prime?\n\n(A) 4\n(B) 6\n(C) 7\n(D) 9\n\nResult: C: 7 has no divisors besides 1 and itself\n"}
}
