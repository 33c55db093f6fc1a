// Package scholar looks up study material through the SerpAPI search API.
package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/logger"
)

type Config struct {
	APIKey  string
	BaseURL string
	Engine  string
	Timeout time.Duration
}

// Client searches one SerpAPI engine, google_scholar by default.
type Client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing SERPAPI_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://serpapi.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Engine == "" {
		cfg.Engine = "google_scholar"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		log:        log.With("client", "SerpAPIClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type organicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
	Error          string          `json:"error"`
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 500 {
		msg = msg[:500] + "..."
	}
	return fmt.Sprintf("serpapi http %d: %s", e.StatusCode, msg)
}

// Search returns the organic results for topic in ranking order. A topic
// without results yields an empty slice and no error.
func (c *Client) Search(ctx context.Context, topic string) ([]domain.StudyMaterial, error) {
	q := url.Values{}
	q.Set("engine", c.cfg.Engine)
	q.Set("q", topic)
	q.Set("api_key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read serpapi response: %w", err)
	}

	var body searchResponse
	decodeErr := json.Unmarshal(raw, &body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Message: string(raw)}
		if decodeErr == nil && body.Error != "" {
			he.Message = body.Error
		}
		return nil, he
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", decodeErr)
	}

	materials := make([]domain.StudyMaterial, 0, len(body.OrganicResults))
	for _, r := range body.OrganicResults {
		materials = append(materials, domain.StudyMaterial{Title: r.Title, Link: r.Link, Snippet: r.Snippet})
	}
	c.log.Debug("study material found", "topic", topic, "results", len(materials))
	return materials, nil
}
