// Package cartridge implements ROM loading and the mapper family that
// virtualises cartridge address space for the CPU and PPU buses.
package cartridge

import (
	"encoding/binary"
	"io"
	"os"
)

// MirrorMode represents nametable mirroring mode.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// BankKind selects which cartridge-side storage a Mapper operation targets.
type BankKind uint8

const (
	BankProgramRAM BankKind = iota
	BankProgramROM
	BankCharacter
)

// Mapper is the polymorphic overlay over a Cartridge that translates
// CPU/PPU addresses into cartridge offsets and owns bank registers,
// mirroring mode, and (for some kinds) a scanline IRQ.
type Mapper interface {
	Read(kind BankKind, address uint16) uint8
	Write(kind BankKind, address uint16, value uint8)
	// TickScanline is invoked by the PPU on the A12-rising edge observed
	// during background/sprite fetches. Only MMC3 acts on it.
	TickScanline()
	Reset()
	Mirror() MirrorMode
	IRQPending() bool
	ClearIRQ()
}

// Cartridge owns the ROM image and the cartridge RAM; all banked access
// is exposed through its Mapper.
type Cartridge struct {
	prgROM []uint8
	chrROM []uint8 // ROM or RAM depending on hasCHRRAM
	prgRAM [0x2000]uint8

	mapperID   uint8
	mapper     Mapper
	baseMirror MirrorMode
	hasBattery bool
	hasCHRRAM  bool
}

// iNESHeader is the 16-byte iNES file header.
type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // 16 KiB units
	CHRROMSize uint8 // 8 KiB units
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8
	TVSystem1  uint8
	TVSystem2  uint8
	Padding    [5]uint8
}

// LoadFromFile loads a cartridge from an iNES file on disk.
func LoadFromFile(filename string) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadFromReader(file)
}

// LoadFromReader loads and validates a cartridge from an iNES image.
func LoadFromReader(r io.Reader) (*Cartridge, error) {
	var header iNESHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, ErrInvalidImage
	}

	if string(header.Magic[:]) != "NES\x1A" {
		return nil, ErrInvalidImage
	}
	if header.PRGROMSize == 0 {
		return nil, ErrInvalidImage
	}

	cart := &Cartridge{
		mapperID:   (header.Flags6 >> 4) | (header.Flags7 & 0xF0),
		hasBattery: (header.Flags6 & 0x02) != 0,
	}

	if (header.Flags6 & 0x08) != 0 {
		cart.baseMirror = MirrorFourScreen
	} else if (header.Flags6 & 0x01) != 0 {
		cart.baseMirror = MirrorVertical
	} else {
		cart.baseMirror = MirrorHorizontal
	}

	if (header.Flags6 & 0x04) != 0 {
		trainer := make([]uint8, 512)
		if _, err := io.ReadFull(r, trainer); err != nil {
			return nil, ErrInvalidImage
		}
	}

	prgSize := int(header.PRGROMSize) * 16384
	cart.prgROM = make([]uint8, prgSize)
	if _, err := io.ReadFull(r, cart.prgROM); err != nil {
		return nil, ErrInvalidImage
	}

	chrSize := int(header.CHRROMSize) * 8192
	if chrSize > 0 {
		cart.chrROM = make([]uint8, chrSize)
		if _, err := io.ReadFull(r, cart.chrROM); err != nil {
			return nil, ErrInvalidImage
		}
	} else {
		// Character RAM: header declares zero CHR-ROM banks.
		cart.chrROM = make([]uint8, 8192)
		cart.hasCHRRAM = true
	}

	mapper, err := newMapper(header.Flags7&0xF0|header.Flags6>>4, cart)
	if err != nil {
		return nil, err
	}
	cart.mapper = mapper

	return cart, nil
}

// ReadCPU reads a CPU-bus address in $6000-$FFFF, dispatching to the
// mapper as program-RAM or program-ROM bank kind.
func (c *Cartridge) ReadCPU(address uint16) uint8 {
	if address >= 0x6000 && address < 0x8000 {
		return c.mapper.Read(BankProgramRAM, address)
	}
	return c.mapper.Read(BankProgramROM, address)
}

// WriteCPU writes a CPU-bus address in $6000-$FFFF.
func (c *Cartridge) WriteCPU(address uint16, value uint8) {
	if address >= 0x6000 && address < 0x8000 {
		c.mapper.Write(BankProgramRAM, address, value)
		return
	}
	c.mapper.Write(BankProgramROM, address, value)
}

// ReadPPU reads a PPU-bus address in $0000-$1FFF (pattern tables).
func (c *Cartridge) ReadPPU(address uint16) uint8 {
	return c.mapper.Read(BankCharacter, address)
}

// WritePPU writes a PPU-bus address in $0000-$1FFF. Only effective when
// the cartridge is character-RAM-backed.
func (c *Cartridge) WritePPU(address uint16, value uint8) {
	c.mapper.Write(BankCharacter, address, value)
}

// TickScanline forwards the PPU's A12-rising-edge signal to the mapper.
func (c *Cartridge) TickScanline() { c.mapper.TickScanline() }

// Reset reinitialises mapper bank state (not the ROM/RAM contents).
func (c *Cartridge) Reset() { c.mapper.Reset() }

// Mirror returns the mapper's current nametable mirroring mode.
func (c *Cartridge) Mirror() MirrorMode { return c.mapper.Mirror() }

// MapperID returns the iNES mapper number.
func (c *Cartridge) MapperID() uint8 { return c.mapperID }

// IRQPending reports whether the mapper has an unacknowledged scanline IRQ.
func (c *Cartridge) IRQPending() bool { return c.mapper.IRQPending() }

// ClearIRQ acknowledges the mapper's scanline IRQ.
func (c *Cartridge) ClearIRQ() { c.mapper.ClearIRQ() }

// BankCount reports the number of fixed-size banks of the given kind
// present in the cartridge image (program-ROM in 16 KiB units,
// character in 8 KiB units; program-RAM is always exactly one 8 KiB bank).
func (c *Cartridge) BankCount(kind BankKind) uint {
	switch kind {
	case BankProgramROM:
		return uint(len(c.prgROM) / 0x4000)
	case BankCharacter:
		return uint(len(c.chrROM) / 0x2000)
	default:
		return 1
	}
}

// readProgramROM reads a raw offset into the program-ROM byte array,
// wrapping modulo its length so mapper bank math never indexes out of range.
func (c *Cartridge) readProgramROM(offset int) uint8 {
	if len(c.prgROM) == 0 {
		return 0
	}
	return c.prgROM[offset%len(c.prgROM)]
}

func (c *Cartridge) readCharacter(offset int) uint8 {
	if len(c.chrROM) == 0 {
		return 0
	}
	return c.chrROM[offset%len(c.chrROM)]
}

func (c *Cartridge) writeCharacter(offset int, value uint8) {
	if !c.hasCHRRAM || len(c.chrROM) == 0 {
		return
	}
	c.chrROM[offset%len(c.chrROM)] = value
}

func (c *Cartridge) readProgramRAM(offset int) uint8 {
	return c.prgRAM[offset%len(c.prgRAM)]
}

func (c *Cartridge) writeProgramRAM(offset int, value uint8) {
	c.prgRAM[offset%len(c.prgRAM)] = value
}

// newMapper constructs the concrete Mapper for the given iNES mapper number.
func newMapper(id uint8, cart *Cartridge) (Mapper, error) {
	switch id {
	case 0:
		return newNROM(cart), nil
	case 1:
		return newMMC1(cart), nil
	case 2:
		return newUxROM(cart), nil
	case 3:
		return newCNROM(cart), nil
	case 4:
		return newMMC3(cart), nil
	case 30:
		return newUNROM30(cart), nil
	case 66:
		return newGxROM(cart), nil
	default:
		return nil, &UnsupportedMapperError{ID: id}
	}
}
