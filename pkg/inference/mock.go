package inference

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/moodcam/pkg/emotions"
	"gocv.io/x/gocv"
)

// Mock implements Classifier for testing.
type Mock struct {
	// AnalyzeFunc is called when Analyze is invoked.
	AnalyzeFunc func(ctx context.Context, frame gocv.Mat) ([]emotions.Detection, error)

	// CloseFunc is called when Close is invoked.
	CloseFunc func() error

	// NameOverride replaces the default "mock" name.
	NameOverride string

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation.
type MockCall struct {
	Method string
	Time   time.Time
}

// NewMock creates a mock classifier that finds no faces.
func NewMock() *Mock {
	return &Mock{
		AnalyzeFunc: func(ctx context.Context, frame gocv.Mat) ([]emotions.Detection, error) {
			return nil, nil
		},
	}
}

// WithDetections returns a mock that always reports dets.
func WithDetections(dets ...emotions.Detection) *Mock {
	m := NewMock()
	m.AnalyzeFunc = func(ctx context.Context, frame gocv.Mat) ([]emotions.Detection, error) {
		out := make([]emotions.Detection, len(dets))
		copy(out, dets)
		return out, nil
	}
	return m
}

// WithError returns a mock that always fails with err.
func WithError(err error) *Mock {
	m := NewMock()
	m.AnalyzeFunc = func(ctx context.Context, frame gocv.Mat) ([]emotions.Detection, error) {
		return nil, WrapError("mock", err)
	}
	return m
}

// Name implements Classifier.
func (m *Mock) Name() string {
	if m.NameOverride != "" {
		return m.NameOverride
	}
	return "mock"
}

// Analyze calls AnalyzeFunc and records the call.
func (m *Mock) Analyze(ctx context.Context, frame gocv.Mat) ([]emotions.Detection, error) {
	m.record("Analyze")
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, frame)
	}
	return nil, WrapError("mock", ErrBackendUnavailable)
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.record("Close")
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// record adds a call to the tracking list.
func (m *Mock) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method: method,
		Time:   time.Now(),
	})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns how many times method was called.
func (m *Mock) CallCount(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}
