package link

import (
	"strconv"
	"strings"

	"github.com/ayusman/gimbaltrack/internal/target"
)

// decoderBufSize matches the controller's receive buffer. Longer lines are dropped.
const decoderBufSize = 32

// Fix is one decoded line as the gimbal controller sees it.
type Fix struct {
	X, Y  int
	Valid bool // false for the "0,0" no-target line
}

// Decoder parses the wire format byte by byte the way the gimbal controller
// does: only digits and commas are buffered, CR or LF ends a line, anything
// else is ignored and an overflowing line is discarded.
type Decoder struct {
	frameW, frameH int
	buf            []byte
	last           Fix
}

// NewDecoder creates a Decoder that clamps coordinates to a frameW x frameH image.
func NewDecoder(frameW, frameH int) *Decoder {
	return &Decoder{
		frameW: frameW,
		frameH: frameH,
		buf:    make([]byte, 0, decoderBufSize),
	}
}

// Feed consumes bytes and returns the fixes completed by them.
func (d *Decoder) Feed(data []byte) []Fix {
	var fixes []Fix
	for _, c := range data {
		switch {
		case c == '\n' || c == '\r':
			if len(d.buf) > 0 {
				if fix, ok := d.parse(string(d.buf)); ok {
					d.last = fix
					fixes = append(fixes, fix)
				}
			}
			d.buf = d.buf[:0]
		case (c >= '0' && c <= '9') || c == ',':
			d.buf = append(d.buf, c)
			if len(d.buf) >= decoderBufSize-1 {
				d.buf = d.buf[:0]
			}
		}
	}
	return fixes
}

func (d *Decoder) parse(line string) (Fix, bool) {
	xs, ys, ok := strings.Cut(line, ",")
	if !ok {
		return Fix{}, false
	}
	x := atoi(xs)
	y := atoi(ys)

	if x == 0 && y == 0 {
		return Fix{}, true
	}

	return Fix{
		X:     clamp(x, 0, d.frameW),
		Y:     clamp(y, 0, d.frameH),
		Valid: true,
	}, true
}

// Last returns the most recently decoded fix.
func (d *Decoder) Last() Fix {
	return d.last
}

// Delta returns the offset of f from the frame centre, the error signal the
// gimbal loop drives to zero. ok is false for a no-target fix.
func (d *Decoder) Delta(f Fix) (dx, dy int, ok bool) {
	if !f.Valid {
		return 0, 0, false
	}
	return f.X - d.frameW/2, f.Y - d.frameH/2, true
}

// Point converts a fix back to image space.
func (f Fix) Point() target.Point {
	return target.Point{X: float64(f.X), Y: float64(f.Y)}
}

// atoi parses the leading digits of s, stopping at the first non-digit.
// An empty or non-numeric field reads as 0.
func atoi(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
