// Package monitoring holds the process-wide diagnostic loggers.
package monitoring

import (
	"log"
	"sync/atomic"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// can be swapped with SetLogger, for example to silence output in tests.
var Logf func(format string, v ...any) = log.Printf

var debug atomic.Bool

// SetLogger replaces Logf. A nil logger discards all output.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}

// SetDebug enables or disables Debugf output.
func SetDebug(on bool) { debug.Store(on) }

// Debugf logs through Logf only when debug output is enabled.
func Debugf(format string, v ...any) {
	if debug.Load() {
		Logf("[debug] "+format, v...)
	}
}
