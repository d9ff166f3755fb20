// Package cv finds blobs in binary frames with OpenCV. It is kept apart from
// package blob so the scoring core builds without cgo.
package cv

import (
	"errors"

	"gocv.io/x/gocv"

	"github.com/ayusman/gimbaltrack/internal/blob"
)

// ErrEmptyFrame is returned when Find is handed a nil or empty frame.
var ErrEmptyFrame = errors.New("frame is empty")

// Source finds blobs in a binary (single channel, 0/255) frame.
type Source interface {
	// Find returns the blobs in frame. The order of the result is unspecified.
	Find(frame *gocv.Mat) ([]blob.Blob, error)
}
