// Package monitoring holds the process-wide diagnostic logger used by every
// gimbaltrack package. The swappable Logf hook follows the monitoring logger
// in velocity.report; Capture is added for log assertions in tests.
package monitoring

import (
	"fmt"
	"log"
)

// Logf prints a diagnostic line. It is log.Printf until SetLogger swaps it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger installs f as Logf. A nil f discards all output.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Capture redirects Logf into the returned slice until restore is called.
// It is meant for tests that assert on emitted log lines.
func Capture() (lines *[]string, restore func()) {
	original := Logf
	captured := make([]string, 0)
	Logf = func(format string, v ...interface{}) {
		captured = append(captured, fmt.Sprintf(format, v...))
	}
	return &captured, func() { Logf = original }
}
