package server

import (
	"fmt"
	"image"
	"image/color"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/gimbaltrack/internal/app"
	"github.com/ayusman/gimbaltrack/internal/target"
)

// StreamInterval is the frame period of /api/stream (~15 FPS).
const StreamInterval = 66 * time.Millisecond

// crossSize is the half length of the target marker arms.
const crossSize = 8

var (
	markerColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	labelColor  = color.RGBA{R: 0, G: 200, B: 0, A: 0}
)

// StreamHandler serves MJPEG frames of the binary mask with the selected
// target drawn on top.
type StreamHandler struct {
	tracker Tracker
}

// NewStreamHandler creates a new StreamHandler for the given tracker.
func NewStreamHandler(t Tracker) *StreamHandler {
	return &StreamHandler{tracker: t}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	mask := gocv.NewMat()
	defer mask.Close()
	canvas := gocv.NewMat()
	defer canvas.Close()

	ticker := time.NewTicker(StreamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		if !h.tracker.Mask(&mask) {
			continue
		}

		buf, err := RenderFrame(mask, h.tracker.Status(), &canvas)
		if err != nil {
			continue
		}

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		_, werr := w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()
		if werr != nil {
			return
		}

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

// RenderFrame draws the status overlay on a colour copy of mask and returns
// the JPEG encoding. canvas is reused scratch space. The caller closes the
// returned buffer.
func RenderFrame(mask gocv.Mat, st app.Status, canvas *gocv.Mat) (*gocv.NativeByteBuffer, error) {
	if mask.Channels() == 1 {
		gocv.CvtColor(mask, canvas, gocv.ColorGrayToBGR)
	} else {
		mask.CopyTo(canvas)
	}

	if st.Tier != target.TierNone {
		c := image.Pt(int(st.Centroid.X+0.5), int(st.Centroid.Y+0.5))
		gocv.Line(canvas, image.Pt(c.X-crossSize, c.Y), image.Pt(c.X+crossSize, c.Y), markerColor, 2)
		gocv.Line(canvas, image.Pt(c.X, c.Y-crossSize), image.Pt(c.X, c.Y+crossSize), markerColor, 2)
	}

	label := fmt.Sprintf("%s (%.0f,%.0f) n=%d", st.Tier, st.Centroid.X, st.Centroid.Y, st.BlobCount)
	gocv.PutText(canvas, label, image.Pt(4, 14), gocv.FontHersheySimplex, 0.4, labelColor, 1)

	return gocv.IMEncode(".jpg", *canvas)
}
