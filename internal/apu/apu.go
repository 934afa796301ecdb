// Package apu provides the register interface of the Game Boy's audio
// processing unit. No sound is synthesised, the registers only latch
// the values written to them, so that software polling them reads back
// what the hardware would return.
package apu

import (
	"github.com/thelolagemann/dmgcore/internal/types"
)

// readMasks holds the bits of NR10 - NR52 that always read as 1,
// either because they are unused or write only.
var readMasks = [...]uint8{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10 - NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // unused, NR21 - NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30 - NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // unused, NR41 - NR44
	0x00, 0x00, 0x70, // NR50 - NR52
}

// APU holds the sound registers (types.NR10 - types.NR52) and the
// wave pattern RAM (types.WaveRAM).
type APU struct {
	registers [len(readMasks)]uint8
	waveRAM   [16]uint8
	enabled   bool // NR52.7
}

// New returns a new APU, registering the sound registers in regs.
func New(regs *types.HardwareRegisters) *APU {
	a := &APU{}
	nr52 := types.NR10 + uint16(len(readMasks)) - 1

	for i := range readMasks {
		i := i
		address := types.NR10 + uint16(i)
		if readMasks[i] == 0xFF {
			continue // unused, left unregistered
		}

		if address == nr52 {
			regs.RegisterHardware(
				address,
				func(v uint8) {
					a.setEnabled(v&types.Bit7 != 0)
				}, func() uint8 {
					if a.enabled {
						return types.Bit7 | readMasks[i]
					}
					return readMasks[i]
				},
			)
			continue
		}

		regs.RegisterHardware(
			address,
			func(v uint8) {
				// the registers can't be written while powered off
				if a.enabled {
					a.registers[i] = v
				}
			}, func() uint8 {
				return a.registers[i] | readMasks[i]
			},
		)
	}

	for i := range a.waveRAM {
		i := i
		regs.RegisterHardware(
			types.WaveRAM+uint16(i),
			func(v uint8) {
				a.waveRAM[i] = v
			}, func() uint8 {
				return a.waveRAM[i]
			},
		)
	}

	return a
}

// setEnabled powers the APU on or off. Powering off clears every
// register, but leaves wave RAM intact.
func (a *APU) setEnabled(enabled bool) {
	if !enabled {
		a.registers = [len(readMasks)]uint8{}
	}
	a.enabled = enabled
}

// Reset returns the APU to its power on state.
func (a *APU) Reset() {
	a.registers = [len(readMasks)]uint8{}
	a.waveRAM = [16]uint8{}
	a.enabled = false
}

var _ types.Stater = (*APU)(nil)

// Load implements the types.Stater interface.
func (a *APU) Load(s *types.State) {
	s.ReadData(a.registers[:])
	s.ReadData(a.waveRAM[:])
	a.enabled = s.ReadBool()
}

// Save implements the types.Stater interface.
func (a *APU) Save(s *types.State) {
	s.WriteData(a.registers[:])
	s.WriteData(a.waveRAM[:])
	s.WriteBool(a.enabled)
}
