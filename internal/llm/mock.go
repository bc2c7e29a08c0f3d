package llm

import (
	"context"
	"sync"
)

// MockClient is a scriptable Client for tests and for running the service
// without provider credentials.
type MockClient struct {
	mu        sync.Mutex
	responses []string
	next      int

	// Err, when set, is returned by every Generate call.
	Err error
	// GenerateFunc, when set, overrides the scripted responses.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	Prompts []string
}

// NewMockClient creates a mock that replays the given responses in order,
// repeating the last one when exhausted.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{responses: responses}
}

// Generate records the prompt and returns the next scripted response.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	resp := m.responses[m.next]
	if m.next < len(m.responses)-1 {
		m.next++
	}
	return resp, nil
}
