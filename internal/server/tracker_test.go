package server

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/gimbaltrack/internal/app"
	"github.com/ayusman/gimbaltrack/internal/target"
)

// fakeTracker is a Tracker with a settable status and no mask.
type fakeTracker struct {
	mu     sync.Mutex
	status app.Status
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{status: app.Status{
		Centroid:  target.Point{X: 120, Y: 96},
		BlobCount: 2,
		Tier:      target.TierAccepted,
		Frame:     7,
		Enabled:   true,
	}}
}

func (f *fakeTracker) Status() app.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeTracker) Mask(dst *gocv.Mat) bool {
	return false
}

func (f *fakeTracker) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.Enabled = enabled
}
