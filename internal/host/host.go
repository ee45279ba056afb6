// Package host formalizes the host service interface the core consumes
// (spec.md §6): a window/controller/audio façade the emulation core calls
// into, never the other way around.
package host

import "github.com/majestic53/nesl-sub001/internal/input"

// PollResult is the host's report of pumped window/input events.
type PollResult int

const (
	// Continue means no host-level event requires the run loop to act.
	Continue PollResult = iota
	// Quit means the host window was closed or the user requested exit.
	Quit
	// ResetRequest means the host wants the console reset (e.g. a
	// reset hotkey), without tearing down the run loop.
	ResetRequest
)

// Host is the service surface the emulation core calls into: button
// snapshots, pixel presentation, event pumping, frame pacing, and audio
// sourcing. Implementations own the window, renderer and audio device;
// the core never holds one directly except through this interface.
type Host interface {
	// Button returns the current state of one button on a 0-indexed
	// controller (0 or 1).
	Button(controller int, button input.Button) bool

	// PresentPixel writes one pixel to the frame being assembled.
	// colorIndex is the NES palette index (0-63) before emphasis;
	// r/g/b is the resolved display colour.
	PresentPixel(colorIndex byte, r, g, b byte, x, y int)

	// Poll pumps host events (window, keyboard) and reports what, if
	// anything, the run loop should do about them.
	Poll() PollResult

	// PresentFrame blits the assembled frame and paces to 60 Hz.
	PresentFrame() error

	// SetAudioSource registers the callback the host's audio device
	// uses to drain mixed samples from the APU's output ring.
	SetAudioSource(pull func([]int16) int)
}
