package app

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/gimbaltrack/internal/blob"
	blobcv "github.com/ayusman/gimbaltrack/internal/blob/cv"
	"github.com/ayusman/gimbaltrack/internal/monitoring"
	"github.com/ayusman/gimbaltrack/internal/store"
	"github.com/ayusman/gimbaltrack/internal/target"
)

// readRetryDelay paces the loop while the camera is returning errors.
const readRetryDelay = 20 * time.Millisecond

// fpsSmoothing is the weight of the newest frame in the FPS estimate.
const fpsSmoothing = 0.1

// Run opens the camera and processes frames until ctx is cancelled. It returns
// nil on cancellation and an error wrapping ErrCameraFailed when the camera
// cannot be opened or fails Camera.MaxReadFailures times in a row.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("%w: open: %v", ErrCameraFailed, err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			monitoring.Logf("app: close camera: %v", err)
		}
	}()

	if err := a.BeginSession(); err != nil {
		monitoring.Logf("app: recording disabled: %v", err)
	}
	defer a.EndSession()

	w, h := a.camera.Size()
	monitoring.Logf("app: tracking %dx%d, sending to %s", w, h, a.link.Path())

	maxFailures := a.settings.Camera.MaxReadFailures
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			failures++
			if failures == 1 {
				monitoring.Logf("app: read frame: %v", err)
			}
			if maxFailures > 0 && failures >= maxFailures {
				return fmt.Errorf("%w: %d consecutive reads failed: %v", ErrCameraFailed, failures, err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(readRetryDelay):
			}
			continue
		}
		if failures > 0 {
			monitoring.Logf("app: camera recovered after %d failed reads", failures)
			failures = 0
		}

		if !a.IsEnabled() {
			frame.Close()
			continue
		}

		_, err = a.Step(frame)
		frame.Close()
		if err != nil {
			monitoring.Logf("app: frame %d: %v", a.frame, err)
		}
	}
}

// Step processes one camera frame: binarize, extract blobs, select and send.
func (a *App) Step(frame *gocv.Mat) (target.Result, error) {
	if frame == nil || frame.Empty() {
		return target.Result{}, blobcv.ErrEmptyFrame
	}

	if !a.binarizer.Apply(frame, &a.mask) {
		return target.Result{}, blobcv.ErrEmptyFrame
	}

	a.maskMu.Lock()
	a.mask.CopyTo(&a.lastMask)
	a.maskMu.Unlock()

	blobs, err := a.source.Find(&a.mask)
	if err != nil {
		return target.Result{}, fmt.Errorf("find blobs: %w", err)
	}

	return a.ProcessBlobs(blobs, frame.Cols(), frame.Rows()), nil
}

// ProcessBlobs runs selection on an already extracted blob list, transmits
// the result and records it.
func (a *App) ProcessBlobs(blobs []blob.Blob, frameW, frameH int) target.Result {
	res := a.tracker.Process(blobs, frameW, frameH)
	a.frame++

	txOK := false
	if res.Tier != target.TierNone || a.settings.Link.SendOnLost {
		txOK = a.link.Transmit(res.Centroid)
	}

	a.record(res, txOK)
	a.publish(res, txOK)

	if a.settings.Log.Frames {
		monitoring.Logf("frame %d: blobs=%d tier=%s target=(%.0f,%.0f) tx=%t",
			a.frame, res.BlobCount, res.Tier, res.Centroid.X, res.Centroid.Y, txOK)
	}
	return res
}

func (a *App) record(res target.Result, txOK bool) {
	every := a.settings.Store.RecordEvery
	if a.store == nil || a.sessionID == "" || every <= 0 || a.frame%uint64(every) != 0 {
		return
	}

	err := a.store.Detections().Insert(&store.Detection{
		SessionID: a.sessionID,
		Frame:     a.frame,
		X:         res.Centroid.X,
		Y:         res.Centroid.Y,
		BlobCount: res.BlobCount,
		Tier:      res.Tier.String(),
		TxOK:      txOK,
	})
	if err != nil {
		monitoring.Logf("app: record frame %d: %v", a.frame, err)
	}
}

func (a *App) publish(res target.Result, txOK bool) {
	now := time.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.lastFrameAt.IsZero() {
		if dt := now.Sub(a.lastFrameAt).Seconds(); dt > 0 {
			inst := 1 / dt
			if a.status.FPS == 0 {
				a.status.FPS = inst
			} else {
				a.status.FPS += fpsSmoothing * (inst - a.status.FPS)
			}
		}
	}
	a.lastFrameAt = now

	a.status.Centroid = res.Centroid
	a.status.BlobCount = res.BlobCount
	a.status.Tier = res.Tier
	a.status.Last = a.tracker.Last()
	a.status.Frame = a.frame
	a.status.TxOK = txOK
	a.status.Link = a.link.Stats()
	a.status.UpdatedAt = now
}
