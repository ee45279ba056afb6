package cartridge

// mmc3 implements mapper 4 (MMC3/TxROM). A bank-select latch chooses which
// of eight bank-index registers the next data write targets; $C000-$DFFF
// configure the scanline IRQ latch/reload, $E000-$FFFF toggle IRQ
// enable/disable. TickScanline implements the A12-edge IRQ counter: if a
// reload was requested or the counter is already zero it reloads the
// counter from the latch, otherwise it decrements it; it then raises an IRQ
// when the counter is zero and IRQs are enabled.
type mmc3 struct {
	cart     *Cartridge
	prgBanks uint

	bankSelect uint8
	prgMode    uint8 // bit 6 of bank-select write
	chrMode    uint8 // bit 7 of bank-select write
	registers  [8]uint8
	mirror     MirrorMode

	irqLatch   uint8
	irqCounter uint8
	irqReload  bool
	irqEnabled bool
	irqPending bool
}

func newMMC3(cart *Cartridge) *mmc3 {
	return &mmc3{cart: cart, prgBanks: cart.BankCount(BankProgramROM) * 2, mirror: cart.baseMirror}
}

func (m *mmc3) prgOffset(address uint16) int {
	banks8k := m.prgBanks
	switch {
	case address < 0xA000:
		var bank uint8
		if m.prgMode == 0 {
			bank = m.registers[6]
		} else {
			bank = uint8(banks8k - 2)
		}
		return int(bank)*0x2000 + int(address-0x8000)
	case address < 0xC000:
		return int(m.registers[7])*0x2000 + int(address-0xA000)
	case address < 0xE000:
		var bank uint8
		if m.prgMode == 0 {
			bank = uint8(banks8k - 2)
		} else {
			bank = m.registers[6]
		}
		return int(bank)*0x2000 + int(address-0xC000)
	default:
		return int(banks8k-1)*0x2000 + int(address-0xE000)
	}
}

func (m *mmc3) chrOffset(address uint16) int {
	if m.chrMode == 0 {
		switch {
		case address < 0x0800:
			return int(m.registers[0]&0xFE)*0x400 + int(address)
		case address < 0x1000:
			return int(m.registers[1]&0xFE)*0x400 + int(address-0x0800)
		case address < 0x1400:
			return int(m.registers[2])*0x400 + int(address-0x1000)
		case address < 0x1800:
			return int(m.registers[3])*0x400 + int(address-0x1400)
		case address < 0x1C00:
			return int(m.registers[4])*0x400 + int(address-0x1800)
		default:
			return int(m.registers[5])*0x400 + int(address-0x1C00)
		}
	}
	switch {
	case address < 0x0400:
		return int(m.registers[2])*0x400 + int(address)
	case address < 0x0800:
		return int(m.registers[3])*0x400 + int(address-0x0400)
	case address < 0x0C00:
		return int(m.registers[4])*0x400 + int(address-0x0800)
	case address < 0x1000:
		return int(m.registers[5])*0x400 + int(address-0x0C00)
	case address < 0x1800:
		return int(m.registers[0]&0xFE)*0x400 + int(address-0x1000)
	default:
		return int(m.registers[1]&0xFE)*0x400 + int(address-0x1800)
	}
}

func (m *mmc3) Read(kind BankKind, address uint16) uint8 {
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

func (m *mmc3) Write(kind BankKind, address uint16, value uint8) {
	switch kind {
	case BankProgramRAM:
		m.cart.writeProgramRAM(int(address-0x6000), value)
	case BankCharacter:
		m.cart.writeCharacter(m.chrOffset(address), value)
	case BankProgramROM:
		m.writeRegister(address, value)
	}
}

func (m *mmc3) writeRegister(address uint16, value uint8) {
	even := address&1 == 0
	switch {
	case address < 0xA000:
		if even {
			m.bankSelect = value & 0x07
			m.prgMode = (value >> 6) & 0x01
			m.chrMode = (value >> 7) & 0x01
		} else {
			m.registers[m.bankSelect] = value
		}
	case address < 0xC000:
		if even {
			if value&1 == 0 {
				m.mirror = MirrorVertical
			} else {
				m.mirror = MirrorHorizontal
			}
		}
		// PRG-RAM write-protect (odd) is not modeled: always enabled.
	case address < 0xE000:
		if even {
			m.irqLatch = value
		} else {
			m.irqCounter = 0
			m.irqReload = true
		}
	default:
		if even {
			m.irqEnabled = false
			m.irqPending = false
		} else {
			m.irqEnabled = true
		}
	}
}

// TickScanline implements the MMC3 A12-edge IRQ counter.
func (m *mmc3) TickScanline() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}

func (m *mmc3) Reset() {
	m.bankSelect, m.prgMode, m.chrMode = 0, 0, 0
	m.registers = [8]uint8{}
	m.irqLatch, m.irqCounter = 0, 0
	m.irqReload, m.irqEnabled, m.irqPending = false, false, false
	m.mirror = m.cart.baseMirror
}

func (m *mmc3) Mirror() MirrorMode { return m.mirror }
func (m *mmc3) IRQPending() bool   { return m.irqPending }
func (m *mmc3) ClearIRQ()          { m.irqPending = false }
