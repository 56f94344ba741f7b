package detect

import (
	"context"
	"sync"
	"time"
)

// Mock implements Detector for testing.
// All methods can be customized via function fields.
type Mock struct {
	// DetectFunc is called when Detect is invoked.
	// If nil, returns Objects unconditionally.
	DetectFunc func(ctx context.Context, jpeg []byte) ([]Object, error)

	// CloseFunc is called when Close is invoked.
	// If nil, returns nil.
	CloseFunc func() error

	// Objects is returned by the default Detect behavior.
	Objects []Object

	// Tracking
	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method    string
	FrameSize int
	Time      time.Time
}

// NewMock creates a mock detector that returns the given objects.
func NewMock(objects ...Object) *Mock {
	return &Mock{Objects: objects}
}

// NewMockWithError creates a mock that always fails detection.
func NewMockWithError(err error) *Mock {
	return &Mock{
		DetectFunc: func(ctx context.Context, jpeg []byte) ([]Object, error) {
			return nil, err
		},
	}
}

// Detect calls DetectFunc and records the call.
func (m *Mock) Detect(ctx context.Context, jpeg []byte) ([]Object, error) {
	m.recordCall("Detect", len(jpeg))
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, jpeg)
	}
	return m.Objects, nil
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.recordCall("Close", 0)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// recordCall adds a call to the tracking list.
func (m *Mock) recordCall(method string, frameSize int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method:    method,
		FrameSize: frameSize,
		Time:      time.Now(),
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

// Reset clears the recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify Mock implements Detector at compile time.
var _ Detector = (*Mock)(nil)
