package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// DefaultBlackMax is the brightest grey level still counted as part of the
// black target border.
const DefaultBlackMax = 35

// Binarizer turns a camera frame into a mask where dark pixels are foreground.
// It reuses its grey buffer between frames.
type Binarizer struct {
	blackMax float64
	gray     gocv.Mat
	mu       sync.Mutex
}

// NewBinarizer creates a Binarizer that marks pixels with grey level
// <= blackMax as foreground. Out of range values fall back to DefaultBlackMax.
func NewBinarizer(blackMax int) *Binarizer {
	if blackMax < 0 || blackMax > 255 {
		blackMax = DefaultBlackMax
	}
	return &Binarizer{
		blackMax: float64(blackMax),
		gray:     gocv.NewMat(),
	}
}

// Apply writes the 8-bit single channel mask of frame into dst: 255 where the
// pixel is dark enough, 0 elsewhere. frame may be BGR or already grey.
// It returns false for a nil or empty frame.
func (b *Binarizer) Apply(frame *gocv.Mat, dst *gocv.Mat) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false
	}

	src := *frame
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &b.gray, gocv.ColorBGRToGray)
		src = b.gray
	}

	gocv.Threshold(src, dst, float32(b.blackMax), 255, gocv.ThresholdBinaryInv)
	return true
}

// BlackMax returns the threshold in use.
func (b *Binarizer) BlackMax() int {
	return int(b.blackMax)
}

// Close releases the grey buffer. Close may be called more than once.
func (b *Binarizer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.gray.Empty() {
		b.gray.Close()
		b.gray = gocv.NewMat()
	}
}
