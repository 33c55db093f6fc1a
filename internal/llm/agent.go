package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AgentProvider calls a remote agent endpoint over HTTP. The endpoint
// receives {"purpose","system","prompt"} and may answer with a JSON object
// (returned as Mapping), a JSON string or any other body (returned as Raw).
type AgentProvider struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewAgentProvider(cfg ProviderConfig) (*AgentProvider, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("agent base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "agent"
	}
	return &AgentProvider{
		endpoint:   endpoint,
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type agentRequest struct {
	Purpose string `json:"purpose,omitempty"`
	Model   string `json:"model,omitempty"`
	System  string `json:"system,omitempty"`
	Prompt  string `json:"prompt"`
}

func (p *AgentProvider) Generate(ctx context.Context, req Request) (TextResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(agentRequest{
		Purpose: req.Purpose,
		Model:   p.model,
		System:  req.System,
		Prompt:  req.Prompt,
	}); err != nil {
		return nil, fmt.Errorf("encode agent request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &ErrRateLimit{Err: fmt.Errorf("agent http %d", resp.StatusCode)}
	case resp.StatusCode >= 500:
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("agent http %d", resp.StatusCode)}
	case resp.StatusCode >= 300:
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("agent http %d: %s", resp.StatusCode, truncate(string(raw), 200))}
	}

	return decodeAgentBody(raw), nil
}

func (p *AgentProvider) ModelID() string {
	return p.model
}

func decodeAgentBody(raw []byte) TextResult {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Raw{Value: string(raw)}
	}
	switch v := decoded.(type) {
	case map[string]any:
		return Mapping(v)
	case string:
		return Raw{Value: v}
	default:
		return Raw{Value: string(raw)}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
