// Package testutil builds synthetic iNES images for exercising the
// cartridge, mapper, and bus packages without shipping real ROM data.
package testutil

import (
	"bytes"
	"fmt"

	"github.com/majestic53/nesl-sub001/internal/cartridge"
)

// romConfig describes the iNES image a TestROMBuilder assembles.
type romConfig struct {
	PRGSize      uint8
	CHRSize      uint8
	MapperID     uint8
	Mirroring    cartridge.MirrorMode
	HasBattery   bool
	HasTrainer   bool
	Instructions []uint8
	InitialData  map[uint16]uint8
	ResetVector  uint16
	IRQVector    uint16
	NMIVector    uint16
	CHRData      []uint8
	TrainerData  []uint8
}

// TestROMBuilder provides a fluent interface for building test ROMs.
type TestROMBuilder struct {
	config romConfig
}

// NewTestROMBuilder creates a new test ROM builder with default configuration.
func NewTestROMBuilder() *TestROMBuilder {
	return &TestROMBuilder{
		config: romConfig{
			PRGSize:     1,
			CHRSize:     1,
			MapperID:    0,
			Mirroring:   cartridge.MirrorHorizontal,
			InitialData: make(map[uint16]uint8),
			ResetVector: 0x8000,
			IRQVector:   0x8000,
			NMIVector:   0x8000,
		},
	}
}

// WithPRGSize sets the PRG ROM size in 16KB units.
func (b *TestROMBuilder) WithPRGSize(size uint8) *TestROMBuilder {
	b.config.PRGSize = size
	return b
}

// WithCHRSize sets the CHR ROM size in 8KB units (0 = CHR RAM).
func (b *TestROMBuilder) WithCHRSize(size uint8) *TestROMBuilder {
	b.config.CHRSize = size
	return b
}

// WithCHRRAM configures the ROM to use CHR RAM instead of CHR ROM.
func (b *TestROMBuilder) WithCHRRAM() *TestROMBuilder {
	b.config.CHRSize = 0
	return b
}

// WithMapper sets the mapper ID.
func (b *TestROMBuilder) WithMapper(mapperID uint8) *TestROMBuilder {
	b.config.MapperID = mapperID
	return b
}

// WithMirroring sets the nametable mirroring mode.
func (b *TestROMBuilder) WithMirroring(mirroring cartridge.MirrorMode) *TestROMBuilder {
	b.config.Mirroring = mirroring
	return b
}

// WithBattery enables battery-backed SRAM.
func (b *TestROMBuilder) WithBattery() *TestROMBuilder {
	b.config.HasBattery = true
	return b
}

// WithTrainer adds a 512-byte trainer.
func (b *TestROMBuilder) WithTrainer(data []uint8) *TestROMBuilder {
	b.config.HasTrainer = true
	if len(data) > 512 {
		data = data[:512]
	}
	b.config.TrainerData = make([]uint8, 512)
	copy(b.config.TrainerData, data)
	return b
}

// WithInstructions sets the 6502 assembly instructions at the start of PRG ROM.
func (b *TestROMBuilder) WithInstructions(instructions []uint8) *TestROMBuilder {
	b.config.Instructions = make([]uint8, len(instructions))
	copy(b.config.Instructions, instructions)
	return b
}

// WithData sets initial data at specific ROM addresses.
func (b *TestROMBuilder) WithData(address uint16, data []uint8) *TestROMBuilder {
	for i, value := range data {
		b.config.InitialData[address+uint16(i)] = value
	}
	return b
}

// WithResetVector sets the reset vector.
func (b *TestROMBuilder) WithResetVector(address uint16) *TestROMBuilder {
	b.config.ResetVector = address
	return b
}

// WithIRQVector sets the IRQ vector.
func (b *TestROMBuilder) WithIRQVector(address uint16) *TestROMBuilder {
	b.config.IRQVector = address
	return b
}

// WithNMIVector sets the NMI vector.
func (b *TestROMBuilder) WithNMIVector(address uint16) *TestROMBuilder {
	b.config.NMIVector = address
	return b
}

// WithCHRData sets the CHR ROM/RAM data.
func (b *TestROMBuilder) WithCHRData(data []uint8) *TestROMBuilder {
	b.config.CHRData = make([]uint8, len(data))
	copy(b.config.CHRData, data)
	return b
}

// Build generates the iNES ROM bytes based on the current configuration.
func (b *TestROMBuilder) Build() ([]byte, error) {
	return generateROM(b.config)
}

// BuildCartridge generates and loads the ROM as a Cartridge.
func (b *TestROMBuilder) BuildCartridge() (*cartridge.Cartridge, error) {
	romData, err := b.Build()
	if err != nil {
		return nil, err
	}
	return cartridge.LoadFromReader(bytes.NewReader(romData))
}

func generateROM(config romConfig) ([]byte, error) {
	header, err := createINESHeader(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create iNES header: %w", err)
	}

	result := append([]byte{}, header...)

	if config.HasTrainer {
		trainer := make([]uint8, 512)
		if len(config.TrainerData) > 0 {
			copy(trainer, config.TrainerData)
		}
		result = append(result, trainer...)
	}

	prgROM, err := createPRGROM(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create PRG ROM: %w", err)
	}
	result = append(result, prgROM...)

	if config.CHRSize > 0 {
		result = append(result, createCHRROM(config)...)
	}

	return result, nil
}

func createINESHeader(config romConfig) ([]byte, error) {
	if config.PRGSize == 0 {
		return nil, fmt.Errorf("PRG ROM size cannot be zero")
	}

	header := make([]byte, 16)
	copy(header[0:4], "NES\x1A")
	header[4] = config.PRGSize
	header[5] = config.CHRSize

	flags6 := uint8(0)
	if config.Mirroring == cartridge.MirrorVertical {
		flags6 |= 0x01
	}
	if config.HasBattery {
		flags6 |= 0x02
	}
	if config.HasTrainer {
		flags6 |= 0x04
	}
	if config.Mirroring == cartridge.MirrorFourScreen {
		flags6 |= 0x08
	}
	flags6 |= (config.MapperID & 0x0F) << 4
	header[6] = flags6
	header[7] = config.MapperID & 0xF0

	return header, nil
}

func createPRGROM(config romConfig) ([]byte, error) {
	size := int(config.PRGSize) * 16384
	prgROM := make([]byte, size)

	if len(config.Instructions) > 0 {
		if len(config.Instructions) > size {
			return nil, fmt.Errorf("instructions too large for PRG ROM")
		}
		copy(prgROM, config.Instructions)
	}

	for address, value := range config.InitialData {
		if int(address) < size {
			prgROM[address] = value
		}
	}

	vectorOffset := size - 6
	prgROM[vectorOffset] = uint8(config.NMIVector & 0xFF)
	prgROM[vectorOffset+1] = uint8(config.NMIVector >> 8)
	prgROM[vectorOffset+2] = uint8(config.ResetVector & 0xFF)
	prgROM[vectorOffset+3] = uint8(config.ResetVector >> 8)
	prgROM[vectorOffset+4] = uint8(config.IRQVector & 0xFF)
	prgROM[vectorOffset+5] = uint8(config.IRQVector >> 8)

	return prgROM, nil
}

func createCHRROM(config romConfig) []byte {
	size := int(config.CHRSize) * 8192
	chrROM := make([]byte, size)

	if len(config.CHRData) > 0 {
		copySize := len(config.CHRData)
		if copySize > size {
			copySize = size
		}
		copy(chrROM, config.CHRData[:copySize])
	}

	return chrROM
}
