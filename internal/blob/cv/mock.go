package cv

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/gimbaltrack/internal/blob"
)

// MockSource is a test implementation of the Source interface.
// It allows tests to control the blobs reported for each frame.
type MockSource struct {
	blobs []blob.Blob
	err   error
	calls int
}

// NewMockSource creates a new MockSource instance.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// SetBlobs sets the blobs that will be returned by Find.
func (m *MockSource) SetBlobs(blobs []blob.Blob) {
	m.blobs = blobs
}

// SetError sets the error that will be returned by Find.
func (m *MockSource) SetError(err error) {
	m.err = err
}

// Calls returns how many times Find has been called.
func (m *MockSource) Calls() int {
	return m.calls
}

// Find returns the pre-configured blobs or error.
func (m *MockSource) Find(frame *gocv.Mat) ([]blob.Blob, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.blobs, nil
}
