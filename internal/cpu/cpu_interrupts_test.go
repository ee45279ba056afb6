package cpu

import "testing"

func TestNMI_FiresAtDebtZeroBoundaryAndClearsLatch(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.SetupResetVector(0x8000)
	helper.Memory.SetBytes(0xFFFA, 0x00, 0x90) // NMI vector -> 0x9000
	helper.LoadProgram(0x8000, 0xEA)           // NOP, instruction before the interrupt boundary

	helper.Step() // run the NOP to reach a fresh debt-zero boundary
	helper.CPU.SetNMI(true)
	helper.CPU.SetNMI(false) // falling edge latches nmiPending

	cycles := helper.Step()
	if cycles != 7 {
		t.Fatalf("expected NMI acknowledgement to cost 7 cycles, got %d", cycles)
	}
	if helper.CPU.PC != 0x9000 {
		t.Fatalf("expected PC loaded from NMI vector, got 0x%04X", helper.CPU.PC)
	}
	if helper.CPU.nmiPending {
		t.Error("expected nmiPending cleared after acknowledgement")
	}
}

func TestIRQ_IgnoredWhileInterruptDisableSet(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.SetupResetVector(0x8000)
	helper.CPU.I = true
	helper.LoadProgram(0x8000, 0xEA, 0xEA)

	helper.CPU.SetIRQ(true)
	cycles := helper.Step()
	if cycles != 2 {
		t.Fatalf("expected IRQ to be ignored and NOP to run, got %d cycles", cycles)
	}
	if helper.CPU.PC != 0x8001 {
		t.Fatalf("expected ordinary NOP execution, PC=0x%04X", helper.CPU.PC)
	}
}

func TestIRQ_AcknowledgedWhenInterruptDisableClear(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.SetupResetVector(0x8000)
	helper.Memory.SetBytes(0xFFFE, 0x00, 0xA0) // IRQ vector -> 0xA000
	helper.CPU.I = false
	helper.LoadProgram(0x8000, 0xEA)

	helper.Step() // NOP, land on a fresh debt-zero boundary
	helper.CPU.SetIRQ(true)

	cycles := helper.Step()
	if cycles != 7 {
		t.Fatalf("expected IRQ acknowledgement to cost 7 cycles, got %d", cycles)
	}
	if helper.CPU.PC != 0xA000 {
		t.Fatalf("expected PC loaded from IRQ vector, got 0x%04X", helper.CPU.PC)
	}
}

func TestNMI_TakesPrecedenceOverIRQ(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.SetupResetVector(0x8000)
	helper.Memory.SetBytes(0xFFFA, 0x00, 0x90) // NMI vector
	helper.Memory.SetBytes(0xFFFE, 0x00, 0xA0) // IRQ vector
	helper.LoadProgram(0x8000, 0xEA)

	helper.Step()
	helper.CPU.SetIRQ(true)
	helper.CPU.TriggerNMI()

	helper.Step()
	if helper.CPU.PC != 0x9000 {
		t.Fatalf("expected NMI to win over a simultaneously pending IRQ, got PC=0x%04X", helper.CPU.PC)
	}
}

func TestDMA_TakesPrecedenceOverPendingInterrupt(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.SetupResetVector(0x8000)
	helper.LoadProgram(0x8000, 0xEA)

	helper.Step() // reach a debt-zero boundary
	helper.CPU.TriggerNMI()
	helper.CPU.TriggerDMA(0x02)

	// The very next tick must be DMA work, not the NMI acknowledgement:
	// PC should still be unmoved from where the NOP left it.
	pcBefore := helper.CPU.PC
	helper.CPU.Tick()
	if helper.CPU.PC != pcBefore {
		t.Fatalf("expected DMA to run before NMI, but PC moved to 0x%04X", helper.CPU.PC)
	}
	if !helper.CPU.nmiPending {
		t.Error("expected NMI to remain latched while DMA is in progress")
	}
}
