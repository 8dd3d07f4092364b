package generation

import (
	"context"
	"strings"
	"sync"
)

// MockResponse is one canned reply for MockGenerator.
type MockResponse struct {
	Text string
	Err  error
}

// MockGenerator replays canned responses in FIFO order and records every
// prompt it was given.
type MockGenerator struct {
	mu        sync.Mutex
	responses []MockResponse
	Prompts   []string
}

func NewMockGenerator(responses ...MockResponse) *MockGenerator {
	return &MockGenerator{responses: responses}
}

func (m *MockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	if len(m.responses) == 0 {
		return "", &UnavailableError{}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.Text, nil
}

func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
