package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textStringer struct{}

func (textStringer) String() string { return "stringer text" }

func TestResolveText(t *testing.T) {
	tests := []struct {
		name   string
		result TextResult
		want   string
	}{
		{"structured", Structured{Text: "hello"}, "hello"},
		{"mapping with text", Mapping{"text": "from map", "other": 1}, "from map"},
		{"mapping without text", Mapping{"other": "x"}, ""},
		{"mapping non-string text", Mapping{"text": 42}, "42"},
		{"raw string", Raw{Value: "raw"}, "raw"},
		{"raw bytes", Raw{Value: []byte("bytes")}, "bytes"},
		{"raw stringer", Raw{Value: textStringer{}}, "stringer text"},
		{"raw number", Raw{Value: 3.5}, "3.5"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveText(tt.result))
		})
	}
}

func TestAgentProviderDecodesShapes(t *testing.T) {
	bodies := map[string]string{
		"/object": `{"text":"Question 1:","raw":"ignored"}`,
		"/string": `"plain string"`,
		"/text":   `not json at all`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(bodies[r.URL.Path]))
	}))
	defer srv.Close()

	for path, want := range map[string]string{
		"/object": "Question 1:",
		"/string": "plain string",
		"/text":   "not json at all",
	} {
		p, err := NewAgentProvider(ProviderConfig{BaseURL: srv.URL + path, APIKey: "key"})
		require.NoError(t, err)
		result, err := p.Generate(context.Background(), Request{Prompt: "go"})
		require.NoError(t, err)
		assert.Equal(t, want, ResolveText(result), path)
	}
}

func TestAgentProviderMapsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p, err := NewAgentProvider(ProviderConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), Request{Prompt: "go"})
	var unavailable *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavailable)
}

func TestRetryProviderRetriesTransientErrors(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Millisecond}},
		MockResponse{Result: Structured{Text: "ok"}},
	)
	p := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, Multiplier: 2}).(*RetryProvider)
	var waits []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	result, err := p.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", ResolveText(result))
	assert.Equal(t, 3, mock.CallCount())
	assert.Len(t, waits, 2)
	assert.Equal(t, time.Millisecond, waits[1])
}

func TestRetryProviderStopsOnPermanentError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad request")}},
		MockResponse{Result: Structured{Text: "never"}},
	)
	p := WithRetry(mock, RetryConfig{MaxAttempts: 3})

	_, err := p.Generate(context.Background(), Request{})
	var invalid *ErrInvalidResponse
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, mock.CallCount())
}

func TestNewProviderMockUsesSampleQuiz(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"})
	require.NoError(t, err)

	result, err := p.Generate(context.Background(), Request{Purpose: "quiz"})
	require.NoError(t, err)
	assert.Contains(t, ResolveText(result), "Question 1:")

	_, err = NewProvider(context.Background(), Config{Provider: "carrier-pigeon"})
	require.Error(t, err)
}
