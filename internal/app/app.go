// Package app runs a tracking session: it reads camera frames, extracts blobs,
// picks the target and sends it to the gimbal controller.
package app

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"

	blobcv "github.com/ayusman/gimbaltrack/internal/blob/cv"
	"github.com/ayusman/gimbaltrack/internal/capture"
	"github.com/ayusman/gimbaltrack/internal/config"
	"github.com/ayusman/gimbaltrack/internal/link"
	"github.com/ayusman/gimbaltrack/internal/monitoring"
	"github.com/ayusman/gimbaltrack/internal/store"
	"github.com/ayusman/gimbaltrack/internal/target"
)

// ErrCameraFailed is returned by Run when the camera stops delivering frames.
var ErrCameraFailed = errors.New("camera failed")

// Config holds the collaborators of an App. Nil collaborators are built from
// Settings.
type Config struct {
	Settings config.Config

	Camera capture.Camera
	Source blobcv.Source
	Opener link.Opener

	// Store, when set, receives the session and sampled detections.
	Store *store.Store
}

// Status is a snapshot of the most recent frame.
type Status struct {
	Centroid  target.Point `json:"centroid"`
	BlobCount int          `json:"blob_count"`
	Tier      target.Tier  `json:"tier"`
	Last      target.Point `json:"last"`
	Frame     uint64       `json:"frame"`
	TxOK      bool         `json:"tx_ok"`
	Link      link.Stats   `json:"link"`
	Enabled   bool         `json:"enabled"`
	FPS       float64      `json:"fps"`
	SessionID string       `json:"session_id,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// App owns one tracking session. Run, Step and ProcessBlobs belong to a single
// frame loop; Status, Mask and SetEnabled may be called from any goroutine.
type App struct {
	settings config.Config

	camera    capture.Camera
	binarizer *capture.Binarizer
	source    blobcv.Source
	tracker   *target.Tracker
	link      *link.Link
	store     *store.Store

	mask     gocv.Mat
	lastMask gocv.Mat
	maskMu   sync.Mutex

	frame       uint64
	sessionID   string
	lastFrameAt time.Time

	mu      sync.RWMutex
	status  Status
	enabled bool
}

// New creates an App. Tracking starts enabled.
func New(cfg Config) *App {
	s := cfg.Settings

	camera := cfg.Camera
	if camera == nil {
		if s.Camera.DeviceID == capture.SyntheticDevice {
			camera = capture.NewSyntheticCamera(s.Camera.Width, s.Camera.Height)
		} else {
			camera = capture.NewCamera(s.Camera.DeviceID, s.Camera.Width, s.Camera.Height)
		}
		camera.SetFPS(s.Camera.FPS)
	}

	source := cfg.Source
	if source == nil {
		source = blobcv.NewComponentSource(s.Target.MinArea, s.Threshold.Merge)
	}

	a := &App{
		settings:  s,
		camera:    camera,
		binarizer: capture.NewBinarizer(s.Threshold.BlackMax),
		source:    source,
		tracker:   target.NewTracker(s.Target),
		link:      link.New(s.Link.Port, s.Link.PortOptions, cfg.Opener),
		store:     cfg.Store,
		mask:      gocv.NewMat(),
		lastMask:  gocv.NewMat(),
		enabled:   true,
	}
	a.status.Enabled = true
	return a
}

// SetEnabled pauses or resumes tracking. A paused App keeps reading frames but
// sends nothing.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	a.status.Enabled = enabled
}

// IsEnabled returns whether tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Status returns the latest snapshot.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Mask copies the most recent binary frame into dst. It returns false before
// the first frame.
func (a *App) Mask(dst *gocv.Mat) bool {
	a.maskMu.Lock()
	defer a.maskMu.Unlock()

	if a.lastMask.Empty() {
		return false
	}
	a.lastMask.CopyTo(dst)
	return true
}

// Settings returns the configuration the App was built with.
func (a *App) Settings() config.Config {
	return a.settings
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// SessionID returns the ID of the recorded session, or "" when none is open.
func (a *App) SessionID() string {
	return a.Status().SessionID
}

// BeginSession records a new session in the store. It is a no-op without a store.
func (a *App) BeginSession() error {
	if a.store == nil || a.sessionID != "" {
		return nil
	}

	settings, err := json.Marshal(a.settings)
	if err != nil {
		return err
	}

	w, h := a.camera.Size()
	sess := &store.Session{
		Port:        a.settings.Link.Port,
		Baud:        a.settings.Link.BaudRate,
		FrameWidth:  w,
		FrameHeight: h,
		Config:      settings,
	}
	if err := a.store.Sessions().Create(sess); err != nil {
		return err
	}

	a.sessionID = sess.ID
	a.mu.Lock()
	a.status.SessionID = sess.ID
	a.mu.Unlock()

	monitoring.Logf("app: session %s started", sess.ID)
	return nil
}

// EndSession marks the current session as finished.
func (a *App) EndSession() {
	if a.store == nil || a.sessionID == "" {
		return
	}
	if err := a.store.Sessions().End(a.sessionID); err != nil {
		monitoring.Logf("app: end session %s: %v", a.sessionID, err)
	}
	monitoring.Logf("app: session %s ended after %d frames", a.sessionID, a.frame)
	a.sessionID = ""

	a.mu.Lock()
	a.status.SessionID = ""
	a.mu.Unlock()
}

// Close releases the serial port and OpenCV buffers.
func (a *App) Close() error {
	err := a.link.Close()
	a.binarizer.Close()

	a.maskMu.Lock()
	a.mask.Close()
	a.lastMask.Close()
	a.maskMu.Unlock()

	return err
}
