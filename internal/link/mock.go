package link

import (
	"bytes"
	"errors"
	"sync"
)

// TestablePort implements Port with configurable behaviour for testing.
type TestablePort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls
	ReadBuffer *bytes.Buffer

	// WriteBuffer captures data written to the port
	WriteBuffer *bytes.Buffer

	// WriteError is returned by the next Write call if set
	WriteError error

	// ShortWrite makes the next Write report one byte fewer than requested
	ShortWrite bool

	// CloseError is returned by Close if set
	CloseError error

	// Closed indicates whether Close was called
	Closed bool

	// WriteCalls records the number of Write calls
	WriteCalls int
}

// NewTestablePort creates a new TestablePort for testing.
func NewTestablePort() *TestablePort {
	return &TestablePort{
		ReadBuffer:  bytes.NewBuffer(nil),
		WriteBuffer: bytes.NewBuffer(nil),
	}
}

// Read reads from the read buffer.
func (t *TestablePort) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Closed {
		return 0, errors.New("serial port closed")
	}
	return t.ReadBuffer.Read(p)
}

// Write writes to the write buffer, optionally simulating errors.
func (t *TestablePort) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.WriteCalls++

	if t.Closed {
		return 0, errors.New("serial port closed")
	}

	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}

	if t.ShortWrite && len(p) > 0 {
		t.ShortWrite = false
		return t.WriteBuffer.Write(p[:len(p)-1])
	}

	return t.WriteBuffer.Write(p)
}

// Close marks the port as closed.
func (t *TestablePort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Closed = true
	return t.CloseError
}

// Written returns everything written to the port as a string.
func (t *TestablePort) Written() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.WriteBuffer.String()
}

// MockOpener implements Opener for testing. Each Open hands out the next
// configured port; Error, when set, fails every Open.
type MockOpener struct {
	mu sync.Mutex

	// Ports are returned in order by successive successful Open calls.
	// When exhausted, a fresh TestablePort is created.
	Ports []*TestablePort

	// Error is returned by Open if set
	Error error

	// OpenCalls records the path of every Open call
	OpenCalls []string

	opened []*TestablePort
}

// NewMockOpener creates a MockOpener that hands out ports in order.
func NewMockOpener(ports ...*TestablePort) *MockOpener {
	return &MockOpener{Ports: ports}
}

// Open returns the next configured port or error.
func (o *MockOpener) Open(path string, opts PortOptions) (Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.OpenCalls = append(o.OpenCalls, path)

	if o.Error != nil {
		return nil, o.Error
	}

	var port *TestablePort
	if len(o.Ports) > 0 {
		port = o.Ports[0]
		o.Ports = o.Ports[1:]
	} else {
		port = NewTestablePort()
	}
	o.opened = append(o.opened, port)
	return port, nil
}

// SetError changes the error returned by Open.
func (o *MockOpener) SetError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Error = err
}

// Calls returns the number of Open calls so far.
func (o *MockOpener) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.OpenCalls)
}

// Opened returns every port handed out so far.
func (o *MockOpener) Opened() []*TestablePort {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*TestablePort(nil), o.opened...)
}
