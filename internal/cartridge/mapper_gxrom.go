package cartridge

// gxrom implements mapper 66 (GxROM). One latch byte selects a 32 KiB
// program bank (low 2 bits) and an 8 KiB character bank (high 2 bits).
type gxrom struct {
	cart    *Cartridge
	prgBank uint8
	chrBank uint8
}

func newGxROM(cart *Cartridge) *gxrom {
	return &gxrom{cart: cart}
}

func (m *gxrom) Read(kind BankKind, address uint16) uint8 {
	switch kind {
	case BankProgramRAM:
		return m.cart.readProgramRAM(int(address - 0x6000))
	case BankProgramROM:
		return m.cart.readProgramROM(int(m.prgBank)*0x8000 + int(address-0x8000))
	case BankCharacter:
		return m.cart.readCharacter(int(m.chrBank)*0x2000 + int(address))
	}
	return 0
}

func (m *gxrom) Write(kind BankKind, address uint16, value uint8) {
	switch kind {
	case BankProgramRAM:
		m.cart.writeProgramRAM(int(address-0x6000), value)
	case BankProgramROM:
		m.prgBank = value & 0x03
		m.chrBank = (value >> 4) & 0x03
	case BankCharacter:
		m.cart.writeCharacter(int(m.chrBank)*0x2000+int(address), value)
	}
}

func (m *gxrom) TickScanline()      {}
func (m *gxrom) Reset()             { m.prgBank, m.chrBank = 0, 0 }
func (m *gxrom) Mirror() MirrorMode { return m.cart.baseMirror }
func (m *gxrom) IRQPending() bool   { return false }
func (m *gxrom) ClearIRQ()          {}
