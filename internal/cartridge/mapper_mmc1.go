package cartridge

// mmc1 implements mapper 1 (MMC1/SxROM). All control writes go through a
// serial 5-bit shift register; the fifth write commits to one of four
// internal registers selected by address bits 13-14. A write with bit 7
// set resets the shift register and forces program-mode 3 (fix last bank).
type mmc1 struct {
	cart     *Cartridge
	prgBanks uint

	shift      uint8
	shiftCount uint8

	control uint8 // mirroring (bits 0-1), prgMode (bits 2-3), chrMode (bit 4)
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8
}

func newMMC1(cart *Cartridge) *mmc1 {
	m := &mmc1{cart: cart, prgBanks: cart.BankCount(BankProgramROM)}
	m.control = 0x0C // power-on: program-mode 3
	m.shift = 0x10
	return m
}

func (m *mmc1) mirroring() MirrorMode {
	switch m.control & 0x03 {
	case 0:
		return MirrorSingleScreen0
	case 1:
		return MirrorSingleScreen1
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}

func (m *mmc1) prgMode() uint8 { return (m.control >> 2) & 0x03 }
func (m *mmc1) chrMode() uint8 { return (m.control >> 4) & 0x01 }

func (m *mmc1) prgOffset(address uint16) int {
	bank := m.prgBank & 0x0F
	switch m.prgMode() {
	case 0, 1:
		// 32 KiB mode: ignore bit 0.
		base := uint(bank &^ 1)
		return int(base)*0x4000 + int(address-0x8000)
	case 2:
		if address < 0xC000 {
			return int(address - 0x8000) // bank 0 fixed at $8000
		}
		return int(bank)*0x4000 + int(address-0xC000)
	default: // 3
		if address < 0xC000 {
			return int(bank)*0x4000 + int(address-0x8000)
		}
		return int(m.prgBanks-1)*0x4000 + int(address-0xC000)
	}
}

func (m *mmc1) chrOffset(address uint16) int {
	if m.chrMode() == 0 {
		// 8 KiB mode: chrBank0's low bits select the whole window.
		base := uint(m.chrBank0 &^ 1)
		return int(base)*0x1000 + int(address)
	}
	if address < 0x1000 {
		return int(m.chrBank0)*0x1000 + int(address)
	}
	return int(m.chrBank1)*0x1000 + int(address-0x1000)
}

func (m *mmc1) Read(kind BankKind, address uint16) uint8 {
	switch kind {
	case BankProgramRAM:
		return m.cart.readProgramRAM(int(address - 0x6000))
	case BankProgramROM:
		return m.cart.readProgramROM(m.prgOffset(address))
	case BankCharacter:
		return m.cart.readCharacter(m.chrOffset(address))
	}
	return 0
}

func (m *mmc1) Write(kind BankKind, address uint16, value uint8) {
	switch kind {
	case BankProgramRAM:
		m.cart.writeProgramRAM(int(address-0x6000), value)
	case BankCharacter:
		m.cart.writeCharacter(m.chrOffset(address), value)
	case BankProgramROM:
		m.writeSerial(address, value)
	}
}

func (m *mmc1) writeSerial(address uint16, value uint8) {
	if value&0x80 != 0 {
		m.shift = 0x10
		m.shiftCount = 0
		m.control |= 0x0C
		return
	}

	m.shift = (m.shift >> 1) | ((value & 1) << 4)
	m.shiftCount++
	if m.shiftCount < 5 {
		return
	}

	committed := m.shift
	switch {
	case address < 0xA000:
		m.control = committed & 0x1F
	case address < 0xC000:
		m.chrBank0 = committed & 0x1F
	case address < 0xE000:
		m.chrBank1 = committed & 0x1F
	default:
		m.prgBank = committed & 0x0F
	}
	m.shift = 0x10
	m.shiftCount = 0
}

func (m *mmc1) TickScanline() {}

func (m *mmc1) Reset() {
	m.shift = 0x10
	m.shiftCount = 0
	m.control = 0x0C
	m.chrBank0, m.chrBank1, m.prgBank = 0, 0, 0
}

func (m *mmc1) Mirror() MirrorMode { return m.mirroring() }
func (m *mmc1) IRQPending() bool   { return false }
func (m *mmc1) ClearIRQ()          {}
