// Package blob describes connected foreground regions by area, bounding box
// and centroid. Extraction from frames lives in blob/cv.
package blob

// Point is an image-space position. Centroids may be sub-pixel.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsZero reports whether p is the origin, which the tracker treats as "no position".
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// DistSq returns the squared Euclidean distance between p and q.
func (p Point) DistSq(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Box is an axis-aligned bounding box in pixels.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Overlaps reports whether two boxes share at least one pixel.
func (b Box) Overlaps(o Box) bool {
	return b.X < o.X+o.W && o.X < b.X+b.W &&
		b.Y < o.Y+o.H && o.Y < b.Y+b.H
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	x0 := min(b.X, o.X)
	y0 := min(b.Y, o.Y)
	x1 := max(b.X+b.W, o.X+o.W)
	y1 := max(b.Y+b.H, o.Y+o.H)
	return Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Blob describes one connected region of a binary frame.
// Blobs carry no identity across frames.
type Blob struct {
	Area     int   `json:"area"`
	Box      Box   `json:"box"`
	Centroid Point `json:"centroid"`
}
