package target

import "github.com/ayusman/gimbaltrack/internal/blob"

// Candidate is a blob that survived the size gates, with its derived shape
// measures and score. Candidates only live for one frame.
type Candidate struct {
	Blob    blob.Blob
	Aspect  float64
	Density float64
	Score   float64
}

// Bests holds the running best candidate of each tier. A nil field means the
// tier is empty for this frame.
type Bests struct {
	Accepted *Candidate
	Relaxed  *Candidate
	Fallback *Candidate
}

// Evaluate scores every blob and returns the best candidate of each tier.
//
// A single score is computed per blob and reused by all tiers; tiers differ
// only in which extra gates a candidate passes. The score rewards area and
// penalises squared distance from the frame centre and, when last is set, from
// the last accepted centroid.
//
// Evaluate is a pure function of its inputs.
func Evaluate(blobs []blob.Blob, frameW, frameH int, last Point, cfg Config) Bests {
	var bests Bests

	center := Point{X: float64(frameW) / 2, Y: float64(frameH) / 2}
	maxW := float64(frameW) * cfg.MaxWidthRatio
	maxH := float64(frameH) * cfg.MaxHeightRatio
	hasPrior := !last.IsZero()

	for _, b := range blobs {
		w, h := b.Box.W, b.Box.H

		if b.Area > cfg.MaxArea {
			continue
		}
		if w < cfg.MinWidth || h < cfg.MinHeight {
			continue
		}
		if float64(w) > maxW || float64(h) > maxH {
			continue
		}

		c := &Candidate{Blob: b}
		c.Score = float64(b.Area) - cfg.CenterWeight*b.Centroid.DistSq(center)
		if hasPrior {
			c.Score -= cfg.TrackWeight * b.Centroid.DistSq(last)
		}

		keepBest(&bests.Fallback, c)

		// Degenerate boxes have no defined aspect or density.
		if w <= 0 || h <= 0 {
			continue
		}

		c.Aspect = float64(w) / float64(h)
		if c.Aspect < cfg.MinAspect || c.Aspect > cfg.MaxAspect {
			continue
		}

		c.Density = float64(b.Area) / float64(w*h)
		if c.Density < cfg.MinDensity || c.Density > cfg.RelaxedMaxDensity {
			continue
		}

		if c.Density <= cfg.MaxDensity && !nearEdge(b.Centroid, frameW, frameH, cfg.EdgeMargin) {
			keepBest(&bests.Accepted, c)
		}

		keepBest(&bests.Relaxed, c)
	}

	return bests
}

// keepBest replaces *best with c when c scores strictly higher, so the first of
// equal scores wins.
func keepBest(best **Candidate, c *Candidate) {
	if *best == nil || c.Score > (*best).Score {
		*best = c
	}
}

func nearEdge(p Point, frameW, frameH int, margin float64) bool {
	if margin <= 0 {
		return false
	}
	return p.X < margin || p.X > float64(frameW)-margin ||
		p.Y < margin || p.Y > float64(frameH)-margin
}
