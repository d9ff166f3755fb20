package capture

import (
	"image"
	"image/color"
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// SyntheticDevice selects the synthetic camera instead of a real device.
const SyntheticDevice = -1

// Synthetic target geometry, in pixels.
const (
	syntheticTargetW  = 60
	syntheticTargetH  = 40
	syntheticBorder   = 3
	syntheticRadius   = 40
	syntheticStepRads = math.Pi / 60
)

// PaperFrame returns a white BGR frame of the given size. The caller closes it.
func PaperFrame(width, height int) gocv.Mat {
	frame := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	frame.SetTo(gocv.NewScalar(255, 255, 255, 0))
	return frame
}

// DrawTarget draws a black rectangle outline of the given thickness.
func DrawTarget(frame *gocv.Mat, r image.Rectangle, thickness int) {
	gocv.Rectangle(frame, r, color.RGBA{}, thickness)
}

// TargetRect returns the rectangle of a w x h target centred on c.
func TargetRect(c image.Point, w, h int) image.Rectangle {
	return image.Rect(c.X-w/2, c.Y-h/2, c.X+w/2, c.Y+h/2)
}

// SyntheticCamera renders a black-bordered target circling the frame centre.
// It stands in for a camera on machines without one.
type SyntheticCamera struct {
	width, height int
	fps           int
	step          int
	running       bool
	mu            sync.Mutex
}

// NewSyntheticCamera creates a SyntheticCamera producing width x height frames.
func NewSyntheticCamera(width, height int) *SyntheticCamera {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &SyntheticCamera{width: width, height: height, fps: DefaultFPS}
}

func (c *SyntheticCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.step = 0
	return nil
}

func (c *SyntheticCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

// ReadFrame renders the next frame. The caller is responsible for closing it.
func (c *SyntheticCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	frame := PaperFrame(c.width, c.height)
	DrawTarget(&frame, TargetRect(c.position(c.step), syntheticTargetW, syntheticTargetH), syntheticBorder)
	c.step++
	return &frame, nil
}

// Position returns where the target is drawn in frame n.
func (c *SyntheticCamera) Position(n int) image.Point {
	return c.position(n)
}

func (c *SyntheticCamera) position(n int) image.Point {
	angle := float64(n) * syntheticStepRads
	return image.Pt(
		c.width/2+int(math.Round(syntheticRadius*math.Cos(angle))),
		c.height/2+int(math.Round(syntheticRadius*math.Sin(angle))),
	)
}

func (c *SyntheticCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *SyntheticCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *SyntheticCamera) Size() (int, int) {
	return c.width, c.height
}

func (c *SyntheticCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
