package cartridge

import (
	"bytes"
	"errors"
	"testing"

	"github.com/majestic53/nesl-sub001/internal/cartridge/testutil"
)

func TestLoadFromReader_RejectsBadMagic(t *testing.T) {
	data := make([]byte, 16+16384)
	copy(data, "BAD\x1A")
	data[4] = 1

	_, err := LoadFromReader(bytes.NewReader(data))
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestLoadFromReader_RejectsZeroPRG(t *testing.T) {
	data := make([]byte, 16)
	copy(data, "NES\x1A")

	_, err := LoadFromReader(bytes.NewReader(data))
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestLoadFromReader_UnsupportedMapper(t *testing.T) {
	cart, err := testutil.NewTestROMBuilder().WithMapper(99).BuildCartridge()
	if cart != nil {
		t.Fatal("expected nil cartridge for unsupported mapper")
	}
	var target *UnsupportedMapperError
	if !errors.As(err, &target) || target.ID != 99 {
		t.Fatalf("expected UnsupportedMapperError{99}, got %v", err)
	}
}

func TestLoadFromReader_CHRRAMWhenHeaderDeclaresZero(t *testing.T) {
	cart, err := testutil.NewTestROMBuilder().WithCHRSize(0).BuildCartridge()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart.WritePPU(0x0000, 0x42)
	if got := cart.ReadPPU(0x0000); got != 0x42 {
		t.Fatalf("expected CHR-RAM roundtrip, got %#x", got)
	}
}

func TestNROM_16KiBMirrorsAcrossBothWindows(t *testing.T) {
	cart, err := testutil.NewTestROMBuilder().
		WithPRGSize(1).
		WithResetVector(0x8000).
		WithData(0x0000, []byte{0xA9, 0x42}).
		BuildCartridge()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	low := cart.ReadCPU(0x8000)
	high := cart.ReadCPU(0xC000)
	if low != 0xA9 || high != 0xA9 {
		t.Fatalf("expected 16 KiB mirror, got low=%#x high=%#x", low, high)
	}
}

func TestNROM_ProgramRAMRoundtrip(t *testing.T) {
	cart, err := testutil.NewTestROMBuilder().BuildCartridge()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart.WriteCPU(0x6123, 0x55)
	if got := cart.ReadCPU(0x6123); got != 0x55 {
		t.Fatalf("expected program-RAM roundtrip, got %#x", got)
	}
}

func TestUxROM_BankSwitch(t *testing.T) {
	cart, err := testutil.NewTestROMBuilder().
		WithPRGSize(4). // 4 * 16 KiB == 64 KiB, 4 banks
		WithMapper(2).
		BuildCartridge()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart.WriteCPU(0x8000, 0x02) // select bank 2 for the low window

	got := cart.ReadCPU(0x8000)
	want := cart.readProgramROM(2 * 0x4000)
	if got != want {
		t.Fatalf("expected bank 2 offset 0, got %#x want %#x", got, want)
	}

	// The high window is always the last bank regardless of the latch.
	lastBankFirstByte := cart.readProgramROM(3 * 0x4000)
	if got := cart.ReadCPU(0xC000); got != lastBankFirstByte {
		t.Fatalf("expected fixed last bank at $C000, got %#x want %#x", got, lastBankFirstByte)
	}
}

func TestCNROM_CharacterBankSwitch(t *testing.T) {
	cart, err := testutil.NewTestROMBuilder().
		WithMapper(3).
		WithCHRSize(4). // 4 * 8 KiB
		BuildCartridge()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart.WriteCPU(0x8000, 0x02)
	got := cart.ReadPPU(0x0000)
	want := cart.readCharacter(2 * 0x2000)
	if got != want {
		t.Fatalf("expected CHR bank 2, got %#x want %#x", got, want)
	}
}

func TestGxROM_PackedLatch(t *testing.T) {
	cart, err := testutil.NewTestROMBuilder().
		WithMapper(66).
		WithPRGSize(8). // 8 * 16 KiB == 128 KiB, 4 * 32 KiB banks
		WithCHRSize(4).
		BuildCartridge()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart.WriteCPU(0x8000, 0x31) // prg bank 1, chr bank 3
	if got, want := cart.ReadCPU(0x8000), cart.readProgramROM(0x8000); got != want {
		t.Fatalf("prg bank mismatch: got %#x want %#x", got, want)
	}
	if got, want := cart.ReadPPU(0x0000), cart.readCharacter(3*0x2000); got != want {
		t.Fatalf("chr bank mismatch: got %#x want %#x", got, want)
	}
}

func TestMMC1_ControlRegisterCommitsAfterFiveWrites(t *testing.T) {
	cart, err := testutil.NewTestROMBuilder().WithMapper(1).WithPRGSize(4).BuildCartridge()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Serial-write 0b00010 (vertical mirroring, control register).
	writeMMC1Serial(cart, 0x8000, 0b00010)

	if got := cart.Mirror(); got != MirrorVertical {
		t.Fatalf("expected vertical mirroring after control commit, got %v", got)
	}
}

func TestMMC1_ResetBitForcesProgramMode3(t *testing.T) {
	cart, err := testutil.NewTestROMBuilder().WithMapper(1).WithPRGSize(4).BuildCartridge()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart.WriteCPU(0x8000, 0x80) // bit 7 set: reset shift register
	m := cart.mapper.(*mmc1)
	if m.prgMode() != 3 {
		t.Fatalf("expected program-mode 3 after reset write, got %d", m.prgMode())
	}
}

// writeMMC1Serial performs the 5 serial bit-0 writes MMC1 requires to
// commit a value to the register selected by addr's bits 13-14.
func writeMMC1Serial(cart *Cartridge, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		cart.WriteCPU(addr, (value>>i)&1)
	}
}

func TestMMC3_IRQFiresAfterLatchDecrementsToZero(t *testing.T) {
	cart, err := testutil.NewTestROMBuilder().WithMapper(4).WithPRGSize(8).BuildCartridge()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart.WriteCPU(0xC000, 4) // IRQ latch = 4
	cart.WriteCPU(0xC001, 0) // force reload on next edge
	cart.WriteCPU(0xE001, 0) // IRQ enable

	for i := 0; i < 4; i++ {
		cart.TickScanline()
		if cart.IRQPending() {
			t.Fatalf("IRQ fired early at edge %d", i)
		}
	}
	cart.TickScanline()
	if !cart.IRQPending() {
		t.Fatal("expected IRQ pending after latch decremented to zero")
	}
}

func TestMMC3_PRGBankWindows(t *testing.T) {
	cart, err := testutil.NewTestROMBuilder().WithMapper(4).WithPRGSize(8).BuildCartridge()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart.WriteCPU(0x8000, 6) // bank-select targets R6, prgMode 0
	cart.WriteCPU(0x8001, 1) // R6 = bank 1 (8 KiB)

	got := cart.ReadCPU(0x8000)
	want := cart.readProgramROM(1 * 0x2000)
	if got != want {
		t.Fatalf("expected R6 mapped at $8000 in prgMode 0, got %#x want %#x", got, want)
	}
}
