package cpu

import "testing"

// ticksUntilDMADone drives raw Ticks (bypassing the instruction-step
// helper) and counts how many elapse before the DMA engine finishes,
// including the write cycle of the final byte pair.
func ticksUntilDMADone(cpu *CPU) uint64 {
	var ticks uint64
	for cpu.dmaActive || cpu.cycleDebt > 0 {
		cpu.Tick()
		ticks++
	}
	return ticks
}

func TestDMA_CostsFiveHundredThirteenCyclesOnEvenAlignment(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.SetupResetVector(0x8000)
	// Reset leaves totalTicks at 7 (odd); a 3-cycle LDA $00 brings it to
	// 10 so the next DMA trigger lands on an even total tick count.
	helper.LoadProgram(0x8000, 0xA5, 0x00)
	helper.Step()

	if helper.CPU.totalTicks%2 != 0 {
		t.Fatalf("test setup expected an even tick count, got %d", helper.CPU.totalTicks)
	}

	helper.CPU.TriggerDMA(0x02)
	ticks := ticksUntilDMADone(helper.CPU)
	if ticks != 513 {
		t.Fatalf("expected 513 cycles for even-aligned DMA, got %d", ticks)
	}
}

func TestDMA_CostsFiveHundredFourteenCyclesOnOddAlignment(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.SetupResetVector(0x8000) // totalTicks == 7 after reset, odd

	helper.CPU.TriggerDMA(0x02)
	ticks := ticksUntilDMADone(helper.CPU)
	if ticks != 514 {
		t.Fatalf("expected 514 cycles for odd-aligned DMA, got %d", ticks)
	}
}

func TestDMA_CopiesPageIntoOAMInOrder(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.SetupResetVector(0x8000)
	for i := 0; i < 256; i++ {
		helper.Memory.SetByte(0x0200+uint16(i), uint8(i))
	}

	helper.CPU.TriggerDMA(0x02)
	ticksUntilDMADone(helper.CPU)

	for i := 0; i < 256; i++ {
		if helper.OAM.writes[i] != uint8(i) {
			t.Fatalf("expected OAM[%d]=%d, got %d", i, i, helper.OAM.writes[i])
		}
	}
	if helper.OAM.count != 256 {
		t.Fatalf("expected exactly 256 OAM writes, got %d", helper.OAM.count)
	}
}
