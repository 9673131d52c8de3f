package landmark

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []Hand
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// MockSource is a scripted Source implementation for tests. Frames are
// consumed in the order they were enqueued; NextFrame returns nil once the
// script is exhausted.
type MockSource struct {
	frames []*Frame
	unit   DepthUnit
	mu     sync.Mutex
}

// NewMockSource creates a MockSource reporting the given depth unit.
func NewMockSource(unit DepthUnit) *MockSource {
	return &MockSource{unit: unit}
}

// Enqueue appends a frame to the script.
func (m *MockSource) Enqueue(f *Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, f)
}

// NextFrame pops and returns the next scripted frame, or nil when exhausted.
func (m *MockSource) NextFrame() (*Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.frames) == 0 {
		return nil, nil
	}
	f := m.frames[0]
	m.frames = m.frames[1:]
	return f, nil
}

// DepthUnit reports the configured depth unit.
func (m *MockSource) DepthUnit() DepthUnit {
	return m.unit
}

// Close is a no-op for the mock source.
func (m *MockSource) Close() error {
	return nil
}
