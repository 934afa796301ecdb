package types

import "strings"

type Model int // The Model used in emulation.

const (
	Unset  Model = iota // Unset - Model hasn't been set - behaves as DMGABC
	DMG0                // DMG0 - early Game Boy, only released in Japan
	DMGABC              // DMGABC - Standard Game Boy
	MGB                 // MGB - Pocket Game Boy
	SGB                 // SGB - Super Game Boy
	SGB2                // SGB2 - Super Game Boy 2
	CGBABC              // CGBABC - Standard Game Boy Colour
)

var ModelNames = map[Model]string{
	Unset:  "Unset",
	DMG0:   "DMG0",
	DMGABC: "DMG",
	MGB:    "MGB",
	SGB:    "SGB",
	SGB2:   "SGB2",
	CGBABC: "CGB",
}

// StringToModel converts a string to a Model, returning Unset
// if the name isn't recognised.
func StringToModel(s string) Model {
	for m, n := range ModelNames {
		if n == strings.ToUpper(s) {
			return m
		}
	}

	return Unset
}

func (m Model) String() string {
	return ModelNames[m]
}

// IsCGB returns true if the model has the colour hardware.
func (m Model) IsCGB() bool {
	return m == CGBABC
}

// ModelRegisters holds the CPU registers left behind by each
// model's boot ROM, in the order A F B C D E H L.
var ModelRegisters = map[Model][8]uint8{
	Unset:  {0x01, 0xB0, 0x00, 0x13, 0x00, 0xD8, 0x01, 0x4D},
	DMG0:   {0x01, 0x00, 0xFF, 0x13, 0x00, 0xC1, 0x84, 0x03},
	DMGABC: {0x01, 0xB0, 0x00, 0x13, 0x00, 0xD8, 0x01, 0x4D},
	MGB:    {0xFF, 0xB0, 0x00, 0x13, 0x00, 0xD8, 0x01, 0x4D},
	SGB:    {0x01, 0x00, 0x00, 0x14, 0x00, 0x00, 0xC0, 0x60},
	SGB2:   {0xFF, 0x00, 0x00, 0x14, 0x00, 0x00, 0xC0, 0x60},
	CGBABC: {0x11, 0x80, 0x00, 0x00, 0xFF, 0x56, 0x00, 0x0D},
}

// ModelCounter holds the system counter (DIV being its upper byte)
// at the moment each model's boot ROM hands over to the cartridge.
var ModelCounter = map[Model]uint16{
	Unset:  0xABC9,
	DMG0:   0x182F,
	DMGABC: 0xABC9,
	MGB:    0xABC9,
	SGB:    0xD85F,
	SGB2:   0xD84F,
	CGBABC: 0x2675,
}

// CommonIO holds the I/O registers every model leaves behind once
// the boot ROM has finished.
var CommonIO = map[HardwareAddress]uint8{
	P1:   0xCF,
	SC:   0x7E,
	TAC:  0xF8,
	IF:   0xE1,
	LCDC: 0x91,
	STAT: 0x85,
	BGP:  0xFC,
	BDIS: 0x01,
}

// ModelIO holds the I/O registers left behind by a model's boot ROM
// on top of CommonIO.
var ModelIO = map[Model]map[HardwareAddress]uint8{
	CGBABC: {BCPS: 0xC8, OCPS: 0xD0},
}
