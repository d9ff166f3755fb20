package target

import "github.com/ayusman/gimbaltrack/internal/blob"

// Track remembers the last accepted centroid. The zero value has no prior.
type Track struct {
	last Point
}

// Update moves the anchor to res.Centroid when the result is accepted or
// relaxed. Fallback and none results leave it untouched so a brief dropout
// keeps the continuity bias.
func (t *Track) Update(res Result) {
	if res.Tier.Valid() {
		t.last = res.Centroid
	}
}

// Last returns the current anchor, or the zero point when there is none.
func (t *Track) Last() Point {
	return t.last
}

// Reset forgets the anchor.
func (t *Track) Reset() {
	t.last = Point{}
}

// Tracker is one tracking session: a fixed configuration plus the track anchor.
// It is owned by a single frame loop and is not safe for concurrent use.
type Tracker struct {
	cfg   Config
	track Track
}

// NewTracker creates a Tracker with the given configuration.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg}
}

// Config returns the tracker's configuration.
func (t *Tracker) Config() Config {
	return t.cfg
}

// Process runs evaluate, select and update for one frame.
func (t *Tracker) Process(blobs []blob.Blob, frameW, frameH int) Result {
	bests := Evaluate(blobs, frameW, frameH, t.track.Last(), t.cfg)
	res := Select(bests, len(blobs))
	t.track.Update(res)
	return res
}

// Last returns the last accepted centroid.
func (t *Tracker) Last() Point {
	return t.track.Last()
}

// Reset forgets the last accepted centroid.
func (t *Tracker) Reset() {
	t.track.Reset()
}
