package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Result TextResult
	Err    error
}

// MockProvider is a deterministic Provider for tests and local runs. It
// returns canned responses in FIFO order and records all requests. Once the
// queue is drained it keeps answering with the fallback, when one is set.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	fallback  func(Request) TextResult
	Calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// WithFallback sets the generator used when no canned response is queued.
func (m *MockProvider) WithFallback(fn func(Request) TextResult) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = fn
	return m
}

func (m *MockProvider) Generate(_ context.Context, req Request) (TextResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		if m.fallback != nil {
			return m.fallback(req), nil
		}
		return nil, &ErrProviderUnavailable{}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return nil, resp.Err
	}
	return resp.Result, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
