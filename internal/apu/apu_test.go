package apu

import "testing"

func TestRingBuffer_ReadableAndWritableTrackFullState(t *testing.T) {
	var r sampleRing
	if r.readable() != 0 || r.writable() != sampleRingCapacity {
		t.Fatalf("expected empty ring, got readable=%d writable=%d", r.readable(), r.writable())
	}

	r.writeSamples(make([]int16, sampleRingCapacity))
	if r.readable() != sampleRingCapacity || r.writable() != 0 {
		t.Fatalf("expected full ring, got readable=%d writable=%d", r.readable(), r.writable())
	}

	dst := make([]int16, 10)
	n := r.readSamples(dst)
	if n != 10 {
		t.Fatalf("expected to read 10 samples, got %d", n)
	}
	if r.writable() != 10 {
		t.Fatalf("expected 10 free slots after draining, got %d", r.writable())
	}
}

func TestRingBuffer_ReadPreservesWriteOrder(t *testing.T) {
	var r sampleRing
	r.writeSamples([]int16{1, 2, 3})

	dst := make([]int16, 3)
	r.readSamples(dst)
	if dst[0] != 1 || dst[1] != 2 || dst[2] != 3 {
		t.Fatalf("expected samples in FIFO order, got %v", dst)
	}
}

func TestRingBuffer_ResetEmptiesBuffer(t *testing.T) {
	var r sampleRing
	r.writeSamples([]int16{1, 2, 3})
	r.reset()
	if r.readable() != 0 {
		t.Fatalf("expected empty ring after reset, got readable=%d", r.readable())
	}
}

func TestWriteChannelEnable_ClearsLengthCounterWhenDisabled(t *testing.T) {
	a := New()
	a.pulse1.lengthCounter = 10
	a.WriteRegister(0x4015, 0x00)
	if a.pulse1.lengthCounter != 0 {
		t.Fatalf("expected length counter cleared when channel disabled, got %d", a.pulse1.lengthCounter)
	}
}

func TestWriteChannelEnable_StartsDMCFromSampleRegisters(t *testing.T) {
	a := New()
	a.WriteRegister(0x4012, 0x10) // sample address = 0xC000 + 0x10*64
	a.WriteRegister(0x4013, 0x01) // sample length = 0x01*16 + 1
	a.WriteRegister(0x4015, 0x10) // enable DMC

	if a.dmc.bytesRemaining != 17 {
		t.Fatalf("expected DMC to load its sample length, got %d", a.dmc.bytesRemaining)
	}
}

func TestReadStatus_ClearsFrameIRQFlag(t *testing.T) {
	a := New()
	a.frameIRQFlag = true
	status := a.ReadStatus()
	if status&0x40 == 0 {
		t.Fatal("expected status to report the frame IRQ flag before clearing")
	}
	if a.frameIRQFlag {
		t.Fatal("expected reading $4015 to clear the frame IRQ flag")
	}
}

func TestDMCTimer_FetchesSampleBytesViaMemoryCallback(t *testing.T) {
	a := New()
	fetched := make([]uint16, 0)
	a.SetMemoryReadCallback(func(addr uint16) uint8 {
		fetched = append(fetched, addr)
		return 0xFF
	})

	a.WriteRegister(0x4012, 0x00) // sample address 0xC000
	a.WriteRegister(0x4013, 0x00) // sample length 1
	a.WriteRegister(0x4015, 0x10) // enable DMC
	a.dmc.rateIndex = 0
	a.dmc.timerCounter = 0
	a.dmc.sampleBufferEmpty = true

	a.stepDMCTimer(&a.dmc)

	if len(fetched) != 1 || fetched[0] != 0xC000 {
		t.Fatalf("expected a fetch at 0xC000, got %v", fetched)
	}
}

func TestPulseOutput_SilentWhenLengthCounterZero(t *testing.T) {
	a := New()
	a.pulse1.lengthCounter = 0
	a.pulse1.timer = 100
	a.pulse1.dutyCycle = 2
	a.pulse1.sequencerPos = 2
	if out := a.getPulseOutput(&a.pulse1); out != 0 {
		t.Fatalf("expected silence with zero length counter, got %d", out)
	}
}

func TestGenerateSample_WritesIntoOutputRing(t *testing.T) {
	a := New()
	a.SetSampleRate(1789773) // 1:1 with CPU frequency so every cycle emits
	a.Step()
	if a.Readable() == 0 {
		t.Fatal("expected Step to produce at least one buffered sample")
	}
}
