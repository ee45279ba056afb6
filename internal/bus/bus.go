// Package bus wires the processor, video, audio, input and cartridge
// subsystems together and drives the master clock.
package bus

import (
	"github.com/majestic53/nesl-sub001/internal/apu"
	"github.com/majestic53/nesl-sub001/internal/cartridge"
	"github.com/majestic53/nesl-sub001/internal/cpu"
	"github.com/majestic53/nesl-sub001/internal/input"
	"github.com/majestic53/nesl-sub001/internal/memory"
	"github.com/majestic53/nesl-sub001/internal/ppu"
)

// Cartridge is the subset of cartridge.Cartridge the bus needs beyond the
// CPU/PPU bus access memory.CartridgeInterface already exposes: mirroring
// (for the PPU's nametable fold) and mapper IRQ forwarding.
type Cartridge interface {
	memory.CartridgeInterface
	Mirror() cartridge.MirrorMode
	IRQPending() bool
	TickScanline()
	Reset()
}

// InterruptKind identifies which of the bus's interrupt inbox lines is
// being raised.
type InterruptKind int

const (
	InterruptReset InterruptKind = iota
	InterruptNMI
	InterruptIRQ
	InterruptMapper
)

// Bus connects the CPU, video, audio, input and cartridge subsystems and
// owns the master clock.
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState

	cart Cartridge

	globalCycle uint64
	frameCount  uint64
}

// New creates a bus with no cartridge loaded; LoadCartridge wires one in.
func New() *Bus {
	bus := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),
	}

	bus.Memory = memory.New(bus.PPU, bus.APU, nil)
	bus.Memory.SetInputSystem(bus.Input)
	bus.CPU = cpu.New(bus.Memory, bus.PPU)
	bus.Memory.SetDMACallback(bus.CPU.TriggerDMA)
	bus.PPU.SetNMICallback(bus.CPU.TriggerNMI)
	bus.APU.SetMemoryReadCallback(bus.Memory.Read)

	bus.Reset()
	return bus
}

// LoadCartridge wires a cartridge's CPU-bus, video-bus and mirroring into
// the running system and resets the processor from its reset vector.
func (b *Bus) LoadCartridge(cart Cartridge) {
	b.cart = cart
	b.Memory = memory.New(b.PPU, b.APU, cart)
	b.Memory.SetInputSystem(b.Input)
	b.Memory.SetDMACallback(b.CPU.TriggerDMA)

	ppuMemory := memory.NewPPUMemory(cart, memory.MirrorMode(cart.Mirror()))
	b.PPU.SetMemory(ppuMemory)

	b.CPU = cpu.New(b.Memory, b.PPU)
	b.Memory.SetDMACallback(b.CPU.TriggerDMA)
	b.PPU.SetNMICallback(b.CPU.TriggerNMI)
	b.PPU.SetScanlineIRQCallback(cart.TickScanline)
	b.APU.SetMemoryReadCallback(b.Memory.Read)

	b.Raise(InterruptReset)
}

// Reset re-initialises every subsystem and reloads the CPU's PC from the
// reset vector. Re-entrant: calling it mid-frame aborts the frame in
// progress.
func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	if b.cart != nil {
		b.cart.Reset()
	}
	b.globalCycle = 0
	b.frameCount = 0
}

// Raise dispatches one of the bus's four interrupt-inbox lines. Reset
// re-initialises all subsystems; non-maskable/maskable set CPU latches;
// mapper does nothing here: the cartridge's IRQ line is polled on every
// Tick by forwardMapperIRQ, which sets the CPU's maskable latch from it.
func (b *Bus) Raise(kind InterruptKind) {
	switch kind {
	case InterruptReset:
		b.Reset()
	case InterruptNMI:
		b.CPU.TriggerNMI()
	case InterruptIRQ:
		b.CPU.SetIRQ(true)
	case InterruptMapper:
		// Mapper IRQ state is polled every Tick (see forwardMapperIRQ);
		// nothing to latch here beyond what the cartridge already tracks.
	}
}

// Tick advances the system by one CPU cycle: one CPU tick, one audio
// tick, the global cycle count, and three video dots. Returns true when
// the video signals frame completion.
func (b *Bus) Tick() bool {
	b.forwardMapperIRQ()

	b.CPU.Tick()
	b.APU.Step()
	b.globalCycle++

	frameComplete := false
	for i := 0; i < 3; i++ {
		b.PPU.Step()
		if b.PPU.GetFrameCount() != b.frameCount {
			b.frameCount = b.PPU.GetFrameCount()
			frameComplete = true
		}
	}
	return frameComplete
}

// forwardMapperIRQ ORs the APU's frame/DMC IRQ lines with the cartridge's
// mapper IRQ (if any) into the CPU's maskable latch.
func (b *Bus) forwardMapperIRQ() {
	level := b.APU.GetFrameIRQ() || b.APU.GetDMCIRQ()
	if b.cart != nil && b.cart.IRQPending() {
		level = true
	}
	b.CPU.SetIRQ(level)
}

// RunFrame ticks the bus until one full video frame completes.
func (b *Bus) RunFrame() {
	for !b.Tick() {
	}
}

// GetFrameBuffer returns the current PPU frame buffer.
func (b *Bus) GetFrameBuffer() []uint32 {
	frameBuffer := b.PPU.GetFrameBuffer()
	return frameBuffer[:]
}

// ReadAudioSamples drains up to len(dst) mixed samples from the APU's
// output ring into dst, returning the count copied. Safe to call from the
// host's audio thread while the emulation thread keeps ticking.
func (b *Bus) ReadAudioSamples(dst []int16) int {
	return b.APU.ReadSamples(dst)
}

// AudioReadable returns the number of samples currently buffered and ready
// to drain from the APU's output ring.
func (b *Bus) AudioReadable() int {
	return b.APU.Readable()
}

// SetAudioSampleRate sets the target audio sample rate for the APU.
func (b *Bus) SetAudioSampleRate(rate int) {
	b.APU.SetSampleRate(rate)
}

// GetCycleCount returns the number of CPU cycles elapsed since the last reset.
func (b *Bus) GetCycleCount() uint64 {
	return b.globalCycle
}

// GetFrameCount returns the current frame count.
func (b *Bus) GetFrameCount() uint64 {
	return b.frameCount
}

// SetControllerButton sets the state of a single controller button on a
// 0-indexed controller (0 or 1).
func (b *Bus) SetControllerButton(controller int, button input.Button, pressed bool) {
	switch controller {
	case 0:
		b.Input.Controller1.SetButton(button, pressed)
	case 1:
		b.Input.Controller2.SetButton(button, pressed)
	}
}

// SetControllerButtons sets every button state for a 0-indexed controller
// (0 or 1) at once.
func (b *Bus) SetControllerButtons(controller int, buttons [8]bool) {
	switch controller {
	case 0:
		b.Input.SetButtons1(buttons)
	case 1:
		b.Input.SetButtons2(buttons)
	}
}

// GetInputState returns the input state for direct access.
func (b *Bus) GetInputState() *input.InputState {
	return b.Input
}
