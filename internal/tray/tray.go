// Package tray provides a system tray indicator for the tracker: the title
// shows the current tier and the menu pauses tracking or quits.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/gimbaltrack/internal/target"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	title    string
	label    string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuTarget *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
		title:   Title(target.TierNone, false),
		label:   TargetLabel(target.TierNone, target.Point{}),
	}
}

// OnToggle sets the callback function to be called when tracking is paused or resumed.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback function to be called when the status page menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called and must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	t.mu.Lock()
	systray.SetTitle(t.title)
	systray.SetTooltip("gimbaltrack target tracker")

	// Create menu items
	t.menuToggle = systray.AddMenuItem("● Tracking", "Pause or resume tracking")
	systray.AddSeparator()

	t.menuTarget = systray.AddMenuItem(t.label, "Last selected target")
	t.menuTarget.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Status Page...", "Open the status page in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit gimbaltrack")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		if enabled {
			t.menuToggle.SetTitle("● Tracking")
		} else {
			t.menuToggle.SetTitle("○ Paused")
		}
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleOpen handles the status page menu item click.
func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Update shows the latest selection. Menu items are only touched when the
// text changes.
func (t *Tray) Update(tier target.Tier, centroid target.Point, linkUp bool) {
	title := Title(tier, linkUp)
	label := TargetLabel(tier, centroid)

	t.mu.Lock()
	defer t.mu.Unlock()

	if title != t.title {
		t.title = title
		if t.menuTarget != nil {
			systray.SetTitle(title)
		}
	}
	if label != t.label {
		t.label = label
		if t.menuTarget != nil {
			t.menuTarget.SetTitle(label)
		}
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Title is the tray title for a tier. A down link is flagged with "!".
func Title(tier target.Tier, linkUp bool) string {
	title := "GT " + tier.String()
	if !linkUp {
		title += " !"
	}
	return title
}

// TargetLabel is the text of the target menu item.
func TargetLabel(tier target.Tier, centroid target.Point) string {
	if tier == target.TierNone {
		return "Target: none"
	}
	return fmt.Sprintf("Target: (%.0f,%.0f)", centroid.X, centroid.Y)
}
