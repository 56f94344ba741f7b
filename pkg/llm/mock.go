package llm

import (
	"context"
	"sync"
	"time"
)

// Mock implements Provider for testing.
// All methods can be customized via function fields.
type Mock struct {
	// GenerateFunc is called when Generate is invoked.
	// If nil, returns Text.
	GenerateFunc func(ctx context.Context, req *Request) (*Response, error)

	// HealthFunc is called when Health is invoked.
	// If nil, returns nil (healthy).
	HealthFunc func(ctx context.Context) error

	// CloseFunc is called when Close is invoked.
	// If nil, returns nil.
	CloseFunc func() error

	// Text is returned by the default Generate behavior.
	Text string

	// Tracking
	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method string
	System string
	Prompt string
	Time   time.Time
}

// NewMock creates a mock that always returns the given text.
func NewMock(text string) *Mock {
	return &Mock{Text: text}
}

// NewMockWithError creates a mock that always fails generation.
func NewMockWithError(err error) *Mock {
	return &Mock{
		GenerateFunc: func(ctx context.Context, req *Request) (*Response, error) {
			return nil, err
		},
	}
}

// Generate calls GenerateFunc and records the call.
func (m *Mock) Generate(ctx context.Context, req *Request) (*Response, error) {
	m.recordCall("Generate", req.System, req.Prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &Response{Text: m.Text, Model: "mock", LatencyMs: 1}, nil
}

// Health calls HealthFunc and records the call.
func (m *Mock) Health(ctx context.Context) error {
	m.recordCall("Health", "", "")
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.recordCall("Close", "", "")
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// recordCall adds a call to the tracking list.
func (m *Mock) recordCall(method, system, prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method: method,
		System: system,
		Prompt: prompt,
		Time:   time.Now(),
	})
}

// Calls returns a copy of all recorded calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of calls to the given method.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// LastCall returns the most recent call to the given method, or nil.
func (m *Mock) LastCall(method string) *MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].Method == method {
			call := m.calls[i]
			return &call
		}
	}
	return nil
}

// Reset clears the recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
