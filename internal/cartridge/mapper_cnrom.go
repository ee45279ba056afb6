package cartridge

// cnrom implements mapper 3 (CNROM). Program layout is fixed like NROM;
// a one-byte latch selects the 8 KiB character bank.
type cnrom struct {
	cart     *Cartridge
	prgBanks uint
	chrBank  uint8
}

func newCNROM(cart *Cartridge) *cnrom {
	return &cnrom{cart: cart, prgBanks: cart.BankCount(BankProgramROM)}
}

func (m *cnrom) Read(kind BankKind, address uint16) uint8 {
	switch kind {
	case BankProgramRAM:
		return m.cart.readProgramRAM(int(address - 0x6000))
	case BankProgramROM:
		offset := int(address - 0x8000)
		if m.prgBanks == 1 {
			offset &= 0x3FFF
		}
		return m.cart.readProgramROM(offset)
	case BankCharacter:
		return m.cart.readCharacter(int(m.chrBank)*0x2000 + int(address))
	}
	return 0
}

func (m *cnrom) Write(kind BankKind, address uint16, value uint8) {
	switch kind {
	case BankProgramRAM:
		m.cart.writeProgramRAM(int(address-0x6000), value)
	case BankProgramROM:
		m.chrBank = value & 0x03
	case BankCharacter:
		m.cart.writeCharacter(int(m.chrBank)*0x2000+int(address), value)
	}
}

func (m *cnrom) TickScanline()      {}
func (m *cnrom) Reset()             { m.chrBank = 0 }
func (m *cnrom) Mirror() MirrorMode { return m.cart.baseMirror }
func (m *cnrom) IRQPending() bool   { return false }
func (m *cnrom) ClearIRQ()          {}
