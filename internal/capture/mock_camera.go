package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera replays a fixed sequence of frames. Every read hands out a clone,
// so callers may close what they get.
type MockCamera struct {
	mu     sync.Mutex
	frames []*gocv.Mat
	loop   bool
	pos    int
	open   bool
	reads  int

	// FailReads makes the next n ReadFrame calls fail with ErrFrameUnavailable.
	FailReads int
}

// NewMockCamera replays frames once, or forever when loop is set.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop}
}

// Open rewinds playback.
func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.pos = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	c.reads++

	if c.FailReads > 0 {
		c.FailReads--
		return nil, ErrFrameUnavailable
	}
	src, err := c.next()
	if err != nil {
		return nil, err
	}
	frame := src.Clone()
	return &frame, nil
}

func (c *MockCamera) next() (*gocv.Mat, error) {
	if len(c.frames) == 0 {
		return nil, fmt.Errorf("empty sequence: %w", ErrFrameUnavailable)
	}
	if c.pos == len(c.frames) {
		if !c.loop {
			return nil, fmt.Errorf("sequence exhausted after %d frames: %w", len(c.frames), ErrFrameUnavailable)
		}
		c.pos = 0
	}
	f := c.frames[c.pos]
	c.pos++
	return f, nil
}

func (c *MockCamera) SetFPS(int) {}

func (c *MockCamera) FPS() int { return DefaultFPS }

// Size reports the dimensions of the first frame, or the defaults when empty.
func (c *MockCamera) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return DefaultWidth, DefaultHeight
	}
	return c.frames[0].Cols(), c.frames[0].Rows()
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Reads counts ReadFrame calls made while open, failed ones included.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
