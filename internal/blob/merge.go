package blob

// Merge combines blobs whose bounding boxes overlap. The merged blob covers the
// union of the boxes, sums the areas and takes the area-weighted centroid.
// Merging repeats until no two remaining boxes overlap, so chains of
// overlapping fragments collapse into one blob.
func Merge(blobs []Blob) []Blob {
	out := make([]Blob, len(blobs))
	copy(out, blobs)

	for merged := true; merged; {
		merged = false
		for i := 0; i < len(out); i++ {
			for j := i + 1; j < len(out); j++ {
				if !out[i].Box.Overlaps(out[j].Box) {
					continue
				}
				out[i] = combine(out[i], out[j])
				out = append(out[:j], out[j+1:]...)
				merged = true
				j--
			}
		}
	}

	return out
}

func combine(a, b Blob) Blob {
	area := a.Area + b.Area
	c := a.Centroid
	if area > 0 {
		wa := float64(a.Area) / float64(area)
		wb := float64(b.Area) / float64(area)
		c = Point{
			X: a.Centroid.X*wa + b.Centroid.X*wb,
			Y: a.Centroid.Y*wa + b.Centroid.Y*wb,
		}
	}
	return Blob{
		Area:     area,
		Box:      a.Box.Union(b.Box),
		Centroid: c,
	}
}
