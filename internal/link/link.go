// Package link sends target fixes to the gimbal controller over a serial line
// and reopens the line when it drops.
package link

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/gimbaltrack/internal/monitoring"
	"github.com/ayusman/gimbaltrack/internal/target"
)

// ErrShortWrite is reported when the port accepts fewer bytes than a full line.
var ErrShortWrite = errors.New("short write to serial port")

// Stats counts link activity since the Link was created.
type Stats struct {
	Connected  bool   `json:"connected"`
	Sent       uint64 `json:"sent"`
	Failures   uint64 `json:"failures"`
	Opens      uint64 `json:"opens"`
	LastSentOK bool   `json:"last_sent_ok"`
}

// Link is a best-effort serial writer. It holds at most one open port. Every
// Transmit either writes a full line or drops the port so the next call
// reopens it. Transmit never retries within a call.
//
// A Link is owned by one frame loop and is not safe for concurrent use.
type Link struct {
	path   string
	opts   PortOptions
	opener Opener

	port    Port
	stats   Stats
	lastErr string
}

// New creates a Link for the device at path. No port is opened until the
// first Transmit.
func New(path string, opts PortOptions, opener Opener) *Link {
	if opener == nil {
		opener = SerialOpener{}
	}
	return &Link{
		path:   path,
		opts:   opts,
		opener: opener,
	}
}

// FormatLine renders a fix in the wire format "<cx>,<cy>\n" with coordinates
// rounded to whole pixels.
func FormatLine(p target.Point) string {
	return fmt.Sprintf("%d,%d\n", int(math.Round(p.X)), int(math.Round(p.Y)))
}

// Transmit writes p to the controller. It opens the port first if none is held.
// It returns false when the port could not be opened or the write failed;
// neither case is fatal.
func (l *Link) Transmit(p target.Point) bool {
	if l.port == nil && !l.open() {
		l.stats.LastSentOK = false
		return false
	}

	line := FormatLine(p)
	n, err := l.port.Write([]byte(line))
	if err == nil && n != len(line) {
		err = ErrShortWrite
	}
	if err != nil {
		l.fail("write", err)
		l.drop()
		return false
	}

	l.stats.Sent++
	l.stats.LastSentOK = true
	l.lastErr = ""
	return true
}

// open makes one attempt to open the port.
func (l *Link) open() bool {
	port, err := l.opener.Open(l.path, l.opts)
	if err != nil {
		l.fail("open", err)
		return false
	}

	l.port = port
	l.stats.Opens++
	l.stats.Connected = true
	monitoring.Logf("link: opened %s @ %s", l.path, l.opts)
	return true
}

// fail records a failure. Repeats of the same error are counted but only
// logged once, so a missing device does not flood the log every frame.
func (l *Link) fail(op string, err error) {
	l.stats.Failures++
	l.stats.LastSentOK = false

	msg := fmt.Sprintf("%s %s: %v", op, l.path, err)
	if msg != l.lastErr {
		monitoring.Logf("link: %s", msg)
		l.lastErr = msg
	}
}

func (l *Link) drop() {
	if l.port == nil {
		return
	}
	if err := l.port.Close(); err != nil {
		monitoring.Logf("link: close %s: %v", l.path, err)
	}
	l.port = nil
	l.stats.Connected = false
}

// Connected reports whether a port is currently held.
func (l *Link) Connected() bool {
	return l.port != nil
}

// Stats returns a copy of the link counters.
func (l *Link) Stats() Stats {
	return l.stats
}

// Path returns the device path.
func (l *Link) Path() string {
	return l.path
}

// Close releases the port if one is held.
func (l *Link) Close() error {
	if l.port == nil {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	l.stats.Connected = false
	return err
}
