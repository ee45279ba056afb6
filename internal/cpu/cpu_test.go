package cpu

import "testing"

// MockMemory implements MemoryInterface for testing.
type MockMemory struct {
	data       [0x10000]uint8
	readCount  map[uint16]int
	writeCount map[uint16]int
}

func NewMockMemory() *MockMemory {
	return &MockMemory{
		readCount:  make(map[uint16]int),
		writeCount: make(map[uint16]int),
	}
}

func (m *MockMemory) Read(address uint16) uint8 {
	m.readCount[address]++
	return m.data[address]
}

func (m *MockMemory) Write(address uint16, value uint8) {
	m.writeCount[address]++
	m.data[address] = value
}

func (m *MockMemory) SetByte(address uint16, value uint8) {
	m.data[address] = value
}

func (m *MockMemory) SetBytes(address uint16, values ...uint8) {
	for i, value := range values {
		m.data[address+uint16(i)] = value
	}
}

// fakeOAM records every DMA destination/value pair the CPU delivers.
type fakeOAM struct {
	writes [256]uint8
	count  int
}

func (o *fakeOAM) WriteOAM(index uint8, value uint8) {
	o.writes[index] = value
	o.count++
}

// CPUTestHelper wires a CPU to mock memory and an OAM sink, and drives it
// one instruction at a time via Tick() for tests that don't care about
// per-cycle granularity.
type CPUTestHelper struct {
	CPU    *CPU
	Memory *MockMemory
	OAM    *fakeOAM
}

func NewCPUTestHelper() *CPUTestHelper {
	memory := NewMockMemory()
	oam := &fakeOAM{}
	return &CPUTestHelper{
		CPU:    New(memory, oam),
		Memory: memory,
		OAM:    oam,
	}
}

func (h *CPUTestHelper) SetupResetVector(address uint16) {
	h.Memory.SetBytes(0xFFFC, uint8(address&0xFF), uint8(address>>8))
	h.CPU.Reset()
}

func (h *CPUTestHelper) LoadProgram(address uint16, program ...uint8) {
	h.Memory.SetBytes(address, program...)
}

// Step runs the CPU from a debt-zero boundary through dispatch and drains
// the resulting cycle debt, returning the instruction's total cycle cost.
func (h *CPUTestHelper) Step() uint64 {
	start := h.CPU.totalTicks
	h.CPU.Tick()
	for h.CPU.cycleDebt > 0 {
		h.CPU.Tick()
	}
	return h.CPU.totalTicks - start
}

func TestCPUInitialization(t *testing.T) {
	helper := NewCPUTestHelper()

	if helper.CPU.A != 0 || helper.CPU.X != 0 || helper.CPU.Y != 0 {
		t.Fatalf("expected A=X=Y=0 at construction, got A=%d X=%d Y=%d", helper.CPU.A, helper.CPU.X, helper.CPU.Y)
	}
	if helper.CPU.SP != 0xFD {
		t.Errorf("expected SP=0xFD, got 0x%02X", helper.CPU.SP)
	}
}

func TestCPUReset(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.Memory.SetBytes(0xFFFC, 0x00, 0x80)

	helper.CPU.A, helper.CPU.X, helper.CPU.Y = 0x55, 0xAA, 0xFF
	helper.CPU.SP, helper.CPU.PC = 0x00, 0x1234
	helper.CPU.I = false

	helper.CPU.Reset()

	if helper.CPU.A != 0 || helper.CPU.X != 0 || helper.CPU.Y != 0 {
		t.Errorf("expected registers cleared after reset, got A=%d X=%d Y=%d", helper.CPU.A, helper.CPU.X, helper.CPU.Y)
	}
	if helper.CPU.SP != 0xFD {
		t.Errorf("expected SP=0xFD after reset, got 0x%02X", helper.CPU.SP)
	}
	if helper.CPU.PC != 0x8000 {
		t.Errorf("expected PC loaded from reset vector, got 0x%04X", helper.CPU.PC)
	}
	if !helper.CPU.I {
		t.Error("expected interrupt-disable flag set after reset")
	}
}

func TestStatusRegisterRoundtrip(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.CPU.N, helper.CPU.V, helper.CPU.B = true, false, true
	helper.CPU.D, helper.CPU.I, helper.CPU.Z, helper.CPU.C = false, true, false, true

	if got, want := helper.CPU.GetStatusByte(), uint8(0xB5); got != want {
		t.Fatalf("expected status byte 0x%02X, got 0x%02X", want, got)
	}

	helper.CPU.SetStatusByte(0x42) // V and Z set, everything else clear
	if !helper.CPU.V || !helper.CPU.Z {
		t.Error("expected V and Z set after SetStatusByte(0x42)")
	}
	if helper.CPU.N || helper.CPU.B || helper.CPU.D || helper.CPU.I || helper.CPU.C {
		t.Error("expected all other flags clear after SetStatusByte(0x42)")
	}
}

func TestStep_NOPTakesTwoCycles(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.SetupResetVector(0x8000)
	helper.LoadProgram(0x8000, 0xEA) // NOP

	cycles := helper.Step()
	if cycles != 2 {
		t.Fatalf("expected NOP to take 2 cycles, got %d", cycles)
	}
	if helper.CPU.PC != 0x8001 {
		t.Fatalf("expected PC to advance to 0x8001, got 0x%04X", helper.CPU.PC)
	}
}
