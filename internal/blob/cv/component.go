package cv

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/gimbaltrack/internal/blob"
)

// Column layout of the stats matrix produced by ConnectedComponentsWithStats.
const (
	statLeft   = 0
	statTop    = 1
	statWidth  = 2
	statHeight = 3
	statArea   = 4
)

// ComponentSource finds blobs with OpenCV connected component labelling.
type ComponentSource struct {
	minArea int
	merge   bool
}

// NewComponentSource creates a ComponentSource that drops components with
// fewer than minArea pixels or a bounding box smaller than minArea. When merge
// is true, blobs with overlapping bounding boxes are combined before they are
// returned.
func NewComponentSource(minArea int, merge bool) *ComponentSource {
	if minArea < 0 {
		minArea = 0
	}
	return &ComponentSource{
		minArea: minArea,
		merge:   merge,
	}
}

// MinArea is the pixel and box-area floor applied to every component.
func (s *ComponentSource) MinArea() int {
	return s.minArea
}

// Find labels the 8-connected foreground components of frame.
// Label 0 is the background and is never reported.
func (s *ComponentSource) Find(frame *gocv.Mat) ([]blob.Blob, error) {
	if frame == nil || frame.Empty() {
		return nil, ErrEmptyFrame
	}

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(*frame, &labels, &stats, &centroids)

	blobs := make([]blob.Blob, 0, n)
	for label := 1; label < n; label++ {
		area := int(stats.GetIntAt(label, statArea))
		box := blob.Box{
			X: int(stats.GetIntAt(label, statLeft)),
			Y: int(stats.GetIntAt(label, statTop)),
			W: int(stats.GetIntAt(label, statWidth)),
			H: int(stats.GetIntAt(label, statHeight)),
		}
		if area < s.minArea || box.W*box.H < s.minArea {
			continue
		}
		blobs = append(blobs, blob.Blob{
			Area: area,
			Box:  box,
			Centroid: blob.Point{
				X: centroids.GetDoubleAt(label, 0),
				Y: centroids.GetDoubleAt(label, 1),
			},
		})
	}

	if s.merge {
		blobs = blob.Merge(blobs)
	}
	return blobs, nil
}
