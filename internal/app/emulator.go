// Package app provides the top-level emulator control loop.
package app

import (
	"time"

	"github.com/majestic53/nesl-sub001/internal/bus"
)

// Emulator drives the bus one video frame at a time. A video frame is the
// natural unit of pacing: the PPU reports frame completion, so the loop
// never has to reason about cycle counts directly.
type Emulator struct {
	bus    *bus.Bus
	config *Config

	targetFrameTime time.Duration
	frameBuffer     []uint32

	running       bool
	frameCount    uint64
	lastResetTime time.Time
	lastFrameTime time.Duration
}

// NewEmulator wires an Emulator to an already-constructed bus.
func NewEmulator(bus *bus.Bus, config *Config) *Emulator {
	e := &Emulator{
		bus:             bus,
		config:          config,
		targetFrameTime: time.Second / 60,
		frameBuffer:     make([]uint32, 256*240),
	}
	e.lastResetTime = time.Now()
	return e
}

// Start allows Update to advance emulation.
func (e *Emulator) Start() { e.running = true }

// Stop halts Update without tearing down any state.
func (e *Emulator) Stop() { e.running = false }

// IsRunning reports whether Update currently advances emulation.
func (e *Emulator) IsRunning() bool { return e.running }

// Reset raises the bus's reset interrupt and clears frame accounting.
func (e *Emulator) Reset() {
	e.bus.Raise(bus.InterruptReset)
	e.frameCount = 0
	e.lastResetTime = time.Now()
	for i := range e.frameBuffer {
		e.frameBuffer[i] = 0
	}
}

// Update runs exactly one video frame of emulation and copies the result
// into the emulator's own frame buffer, leaving the bus free to start
// assembling the next frame immediately.
func (e *Emulator) Update() error {
	if !e.running {
		return nil
	}

	start := time.Now()
	e.bus.RunFrame()
	e.frameCount++

	src := e.bus.GetFrameBuffer()
	if len(src) == len(e.frameBuffer) {
		copy(e.frameBuffer, src)
	}

	e.lastFrameTime = time.Since(start)
	return nil
}

// StepInstruction ticks the bus by a single CPU cycle, for single-step
// debugging from a host UI.
func (e *Emulator) StepInstruction() bool {
	return e.bus.Tick()
}

// GetFrameBuffer returns the most recently completed video frame.
func (e *Emulator) GetFrameBuffer() []uint32 { return e.frameBuffer }

// GetFrameCount returns the number of frames rendered since the last reset.
func (e *Emulator) GetFrameCount() uint64 { return e.frameCount }

// GetCycleCount returns the number of CPU cycles elapsed since the last bus reset.
func (e *Emulator) GetCycleCount() uint64 { return e.bus.GetCycleCount() }

// GetUptime returns the time elapsed since the last reset.
func (e *Emulator) GetUptime() time.Duration { return time.Since(e.lastResetTime) }

// GetLastFrameTime returns how long the most recent Update call took.
func (e *Emulator) GetLastFrameTime() time.Duration { return e.lastFrameTime }

// GetTargetFrameTime returns the 60Hz pacing target.
func (e *Emulator) GetTargetFrameTime() time.Duration { return e.targetFrameTime }

// Cleanup releases emulator-owned resources. The bus owns no resources
// that outlive the process, so this is currently a no-op kept for
// symmetry with Application.Cleanup's component-teardown chain.
func (e *Emulator) Cleanup() error { return nil }
