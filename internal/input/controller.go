// Package input implements the shift-register controller model for the
// NES's two standard controller ports.
package input

// Button identifies one of the eight buttons on a standard NES controller.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// idlePattern is the bit-6 value every controller read OR's in (spec.md
// 4.6's "canonical 0x40 idle pattern"), reflecting the open-bus behaviour
// of the real hardware's unconnected upper data-line bits.
const idlePattern uint8 = 0x40

// Controller is a single NES controller: an 8-bit button snapshot read out
// one bit at a time through a shift register, reloaded on strobe.
type Controller struct {
	buttons       uint8
	shiftRegister uint8
	strobe        bool
	position      uint8 // shift position in [0, 8]; >=8 reads as idle
}

// New creates a controller with no buttons pressed.
func New() *Controller {
	return &Controller{}
}

// SetButton sets or clears a single button.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons sets all eight button states at once, in A/B/Select/Start/
// Up/Down/Left/Right order.
func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = 0
	order := [8]Button{ButtonA, ButtonB, ButtonSelect, ButtonStart, ButtonUp, ButtonDown, ButtonLeft, ButtonRight}
	for i, pressed := range buttons {
		if pressed {
			c.buttons |= uint8(order[i])
		}
	}
}

// IsPressed reports whether a button is currently held.
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Write handles a write to the controller's strobe line. Entering strobe
// snapshots the live button state; clearing it re-snapshots and resets
// the shift position (spec.md 4.6).
func (c *Controller) Write(value uint8) {
	wasStrobe := c.strobe
	c.strobe = value&1 != 0

	if c.strobe || wasStrobe {
		c.shiftRegister = c.buttons
		c.position = 0
	}
}

// Read returns the next bit of the latched button snapshot with the idle
// pattern OR'd in, advancing the shift position. While strobe is held
// high the snapshot is continuously reloaded, so every read reports
// button A. Position 8 and beyond always reads back a 1 bit (spec.md 4.6).
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.shiftRegister = c.buttons
		c.position = 0
		return (c.buttons & 1) | idlePattern
	}

	if c.position >= 8 {
		return 1 | idlePattern
	}

	bit := (c.shiftRegister >> c.position) & 1
	c.position++
	return bit | idlePattern
}

// Reset clears all button, shift and strobe state.
func (c *Controller) Reset() {
	c.buttons = 0
	c.shiftRegister = 0
	c.strobe = false
	c.position = 0
}

// InputState holds both controller ports.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates an input state with two idle controllers.
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

// Reset resets both controllers.
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// SetButtons1 sets all button states for controller 1.
func (is *InputState) SetButtons1(buttons [8]bool) {
	is.Controller1.SetButtons(buttons)
}

// SetButtons2 sets all button states for controller 2.
func (is *InputState) SetButtons2(buttons [8]bool) {
	is.Controller2.SetButtons(buttons)
}

// Read dispatches a CPU-bus read to the addressed controller port.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		return is.Controller2.Read()
	default:
		return 0
	}
}

// Write forwards a $4016 strobe write to both controllers; they latch
// independently but share a single strobe line on real hardware.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}
