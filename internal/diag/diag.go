// Package diag implements the single-slot global diagnostic buffer
// spec.md §7 describes: a failure stores one formatted message (file,
// function, line) that the host reads back after a failing operation.
// Recovery from a stored failure is only possible via a full reset.
package diag

import (
	"fmt"
	"runtime"
	"sync"
)

var (
	mu       sync.Mutex
	lastErr  string
	hasError bool
)

// SetError formats and stores a diagnostic message, replacing whatever
// was stored previously. The caller's file, function and line are
// captured automatically so call sites never need to supply them.
func SetError(format string, args ...any) {
	message := fmt.Sprintf(format, args...)

	file, line, function := "unknown", 0, "unknown"
	if pc, f, l, ok := runtime.Caller(1); ok {
		file, line = f, l
		if fn := runtime.FuncForPC(pc); fn != nil {
			function = fn.Name()
		}
	}

	mu.Lock()
	defer mu.Unlock()
	lastErr = fmt.Sprintf("%s:%d: %s: %s", file, line, function, message)
	hasError = true
}

// GetError returns the last stored diagnostic message and whether one is
// present.
func GetError() (string, bool) {
	mu.Lock()
	defer mu.Unlock()
	return lastErr, hasError
}

// Clear empties the diagnostic slot; called on a full reset (spec.md §7:
// "Recovery is possible only via a full reset").
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	lastErr = ""
	hasError = false
}
