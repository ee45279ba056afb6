// Package memory implements the processor RAM and PPU-side memory map:
// the 2 KiB mirrored RAM region (spec.md data model, "Processor RAM"),
// and the PPU's nametable/palette address space, each exposed as the
// Bus's address-decoded read/write surface for its own bus domain.
package memory

// Memory is the CPU-bus address decoder: 2 KiB internal RAM plus
// dispatch to the PPU register port, APU/input registers, and cartridge.
type Memory struct {
	ram [0x800]uint8

	ppuRegisters PPUInterface
	apuRegisters APUInterface
	inputSystem  InputInterface
	cartridge    CartridgeInterface

	dmaCallback func(uint8)

	// openBusValue is the last value observed on the bus, returned for
	// reads of write-only or unmapped registers.
	openBusValue uint8
}

// PPUMemory is the PPU-bus address decoder: pattern tables (delegated to
// the cartridge/mapper), 2x 1 KiB nametables folded by mirroring mode,
// and 32-byte palette RAM.
type PPUMemory struct {
	vram       [0x1000]uint8
	paletteRAM [32]uint8
	cartridge  CartridgeInterface
	mirroring  MirrorMode
}

// MirrorMode mirrors cartridge.MirrorMode without importing the cartridge
// package (memory must not depend on cartridge; the Bus translates).
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// PPUInterface is the Bus's video port, mirrored every 8 bytes at $2000-$3FFF.
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface is the Bus's audio register surface, $4000-$4013/$4015/$4017.
type APUInterface interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputInterface is the Bus's controller port, $4016/$4017.
type InputInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CartridgeInterface is the subset of cartridge.Cartridge the memory
// package needs: CPU-bus ($6000-$FFFF) and PPU-bus ($0000-$1FFF) access.
type CartridgeInterface interface {
	ReadCPU(address uint16) uint8
	WriteCPU(address uint16, value uint8)
	ReadPPU(address uint16) uint8
	WritePPU(address uint16, value uint8)
}

// New creates a Memory wired to the given register ports and cartridge.
func New(ppu PPUInterface, apu APUInterface, cart CartridgeInterface) *Memory {
	return &Memory{
		ppuRegisters: ppu,
		apuRegisters: apu,
		cartridge:    cart,
	}
}

// SetInputSystem wires the controller port after construction, mirroring
// the wiring-order the Bus uses for its other subsystems.
func (m *Memory) SetInputSystem(input InputInterface) {
	m.inputSystem = input
}

// SetDMACallback registers the Bus's OAM-DMA trigger, invoked on writes to $4014.
func (m *Memory) SetDMACallback(callback func(uint8)) {
	m.dmaCallback = callback
}

// Read reads a byte from the CPU address space.
func (m *Memory) Read(address uint16) uint8 {
	var value uint8

	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]

	case address < 0x4000:
		value = m.ppuRegisters.ReadRegister(0x2000 + (address & 0x0007))

	case address < 0x4020:
		switch {
		case address == 0x4015:
			value = m.apuRegisters.ReadStatus()
		case address == 0x4016 || address == 0x4017:
			if m.inputSystem != nil {
				value = m.inputSystem.Read(address)
			}
		default:
			value = m.openBusValue
		}

	case address >= 0x6000:
		if m.cartridge != nil {
			value = m.cartridge.ReadCPU(address)
		} else {
			value = m.openBusValue
		}

	default:
		// $4020-$5FFF: cartridge expansion area, unmapped.
		value = m.openBusValue
	}

	m.openBusValue = value
	return value
}

// Write writes a byte to the CPU address space.
func (m *Memory) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value

	case address < 0x4000:
		m.ppuRegisters.WriteRegister(0x2000+(address&0x0007), value)

	case address < 0x4020:
		switch {
		case address == 0x4014:
			if m.dmaCallback != nil {
				m.dmaCallback(value)
			}
		case address == 0x4016:
			if m.inputSystem != nil {
				m.inputSystem.Write(address, value)
			}
		case address <= 0x4013, address == 0x4015, address == 0x4017:
			m.apuRegisters.WriteRegister(address, value)
		}
		// $4018-$401F (test mode registers) are ignored.

	case address >= 0x6000:
		if m.cartridge != nil {
			m.cartridge.WriteCPU(address, value)
		}

		// $4020-$5FFF: cartridge expansion area, unmapped writes ignored.
	}
}

// NewPPUMemory creates a PPU memory instance backed by the given cartridge
// and nametable mirroring mode.
func NewPPUMemory(cart CartridgeInterface, mirroring MirrorMode) *PPUMemory {
	pm := &PPUMemory{cartridge: cart, mirroring: mirroring}
	for i := 0; i < 32; i += 4 {
		pm.paletteRAM[i] = 0x0F // universal background defaults to black
	}
	return pm
}

// SetMirroring updates the nametable fold, called when a mapper write
// changes mirroring mode mid-session (e.g. MMC1, MMC3).
func (pm *PPUMemory) SetMirroring(mode MirrorMode) { pm.mirroring = mode }

// Read reads from the 14-bit PPU address space ($0000-$3FFF).
func (pm *PPUMemory) Read(address uint16) uint8 {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		return pm.cartridge.ReadPPU(address)
	case address < 0x3000:
		return pm.readNametable(address)
	case address < 0x3F00:
		return pm.readNametable(address - 0x1000)
	default:
		return pm.readPalette(address)
	}
}

// Write writes to the 14-bit PPU address space ($0000-$3FFF).
func (pm *PPUMemory) Write(address uint16, value uint8) {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		pm.cartridge.WritePPU(address, value)
	case address < 0x3000:
		pm.writeNametable(address, value)
	case address < 0x3F00:
		pm.writeNametable(address-0x1000, value)
	default:
		pm.writePalette(address, value)
	}
}

func (pm *PPUMemory) readNametable(address uint16) uint8 {
	return pm.vram[pm.nametableIndex(address)]
}

func (pm *PPUMemory) writeNametable(address uint16, value uint8) {
	pm.vram[pm.nametableIndex(address)] = value
}

// nametableIndex folds a $2000-$2FFF address into the two physical 1 KiB
// pages according to the cartridge's mirroring mode.
func (pm *PPUMemory) nametableIndex(address uint16) uint16 {
	address &= 0x0FFF
	nametable := (address >> 10) & 3
	offset := address & 0x3FF

	switch pm.mirroring {
	case MirrorHorizontal:
		if nametable >= 2 {
			return 0x400 + offset
		}
		return offset
	case MirrorVertical:
		if nametable == 1 || nametable == 3 {
			return 0x400 + offset
		}
		return offset
	case MirrorSingleScreen0:
		return offset
	case MirrorSingleScreen1:
		return 0x400 + offset
	case MirrorFourScreen:
		return nametable*0x400 + offset
	default:
		return offset
	}
}

// readPalette reads palette RAM, mirroring every 32 bytes with the
// $10/$14/$18/$1C aliases folded to $00/$04/$08/$0C.
func (pm *PPUMemory) readPalette(address uint16) uint8 {
	index := (address - 0x3F00) & 0x1F
	if index&0x13 == 0x10 {
		index &= 0x0F
	}
	return pm.paletteRAM[index]
}

func (pm *PPUMemory) writePalette(address uint16, value uint8) {
	index := (address - 0x3F00) & 0x1F
	if index&0x13 == 0x10 {
		index &= 0x0F
	}
	pm.paletteRAM[index] = value
}
