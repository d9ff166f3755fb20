package target

// Result is the outcome of one frame.
type Result struct {
	Centroid  Point `json:"centroid"`
	BlobCount int   `json:"blob_count"`
	Tier      Tier  `json:"tier"`
}

// Select resolves the tiers in order strict, relaxed, fallback. When every
// tier is empty the result has tier none and a zero centroid.
func Select(b Bests, blobCount int) Result {
	res := Result{BlobCount: blobCount, Tier: TierNone}

	switch {
	case b.Accepted != nil:
		res.Centroid, res.Tier = b.Accepted.Blob.Centroid, TierAccepted
	case b.Relaxed != nil:
		res.Centroid, res.Tier = b.Relaxed.Blob.Centroid, TierRelaxed
	case b.Fallback != nil:
		res.Centroid, res.Tier = b.Fallback.Blob.Centroid, TierFallback
	}

	return res
}
