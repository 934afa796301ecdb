package mmu

import (
	"github.com/thelolagemann/dmgcore/internal/types"
)

// hdmaBlockCycles is the number of cycles the CPU is halted for while
// a block of 16 bytes is copied at single speed. At double speed the
// copy takes the same time, so twice as many CPU cycles.
const hdmaBlockCycles = 32

// lcdStatus is implemented by video components that report the
// state of the LCD, which decides when an HBlank transfer starts.
type lcdStatus interface {
	Enabled() bool
	Mode() uint8
}

// hdma is the VRAM DMA controller of the CGB. It copies blocks of 16
// bytes from ROM, external RAM or WRAM into the selected VRAM bank,
// either all at once (general purpose) or a block at the start of
// every HBlank.
type hdma struct {
	source      uint16
	destination uint16 // offset within the VRAM bank
	blocks      uint8  // blocks left to copy
	hblank      bool   // an HBlank transfer is in progress

	// stall is the number of cycles the CPU is owed for the
	// blocks copied since it was last taken
	stall int

	m *MMU
}

func (h *hdma) init(m *MMU) {
	h.m = m

	m.registers.RegisterHardware(
		types.HDMA1,
		func(v uint8) {
			h.source = h.source&0x00F0 | uint16(v)<<8
		}, nil,
	)
	m.registers.RegisterHardware(
		types.HDMA2,
		func(v uint8) {
			h.source = h.source&0xFF00 | uint16(v&0xF0)
		}, nil,
	)
	m.registers.RegisterHardware(
		types.HDMA3,
		func(v uint8) {
			h.destination = h.destination&0x00F0 | uint16(v&0x1F)<<8
		}, nil,
	)
	m.registers.RegisterHardware(
		types.HDMA4,
		func(v uint8) {
			h.destination = h.destination&0x1F00 | uint16(v&0xF0)
		}, nil,
	)
	m.registers.RegisterHardware(
		types.HDMA5,
		h.start,
		func() uint8 {
			v := (h.blocks - 1) & 0x7F
			if !h.hblank {
				v |= types.Bit7
			}
			return v
		},
	)
}

func (h *hdma) reset() {
	h.source, h.destination = 0, 0
	h.blocks = 0
	h.hblank = false
	h.stall = 0
}

// start handles a write to types.HDMA5.
func (h *hdma) start(v uint8) {
	// clearing bit 7 during an HBlank transfer stops it, leaving
	// the remaining length readable
	if h.hblank && v&types.Bit7 == 0 {
		h.hblank = false
		return
	}

	h.blocks = v&0x7F + 1
	if v&types.Bit7 == 0 {
		for h.blocks > 0 {
			h.copyBlock()
		}
		return
	}

	h.hblank = true
	// the first block is copied straight away if the PPU won't
	// reach the start of an HBlank on its own
	if lcd, ok := h.m.video.(lcdStatus); ok && (!lcd.Enabled() || lcd.Mode() == 0) {
		h.copyBlock()
	}
}

// copyBlock copies the next 16 bytes of the transfer.
func (h *hdma) copyBlock() {
	for i := 0; i < 16; i++ {
		h.m.vRAM[h.m.vRAMBank+h.destination&0x1FFF] = h.m.dmaRead(h.source)
		h.source++
		h.destination++
	}

	h.stall += hdmaBlockCycles
	if h.m.DoubleSpeed() {
		h.stall += hdmaBlockCycles
	}

	if h.blocks--; h.blocks == 0 {
		h.hblank = false
	}
}

// HBlank copies the next block of an HBlank transfer. It's called
// by the PPU when it enters HBlank on a visible line.
func (m *MMU) HBlank() {
	if m.hdma.hblank {
		m.hdma.copyBlock()
	}
}

// HDMAStall returns the number of cycles the CPU has been halted for
// by VRAM DMA transfers since the last call.
func (m *MMU) HDMAStall() int {
	stall := m.hdma.stall
	m.hdma.stall = 0
	return stall
}

func (h *hdma) load(s *types.State) {
	h.source = s.Read16()
	h.destination = s.Read16()
	h.blocks = s.Read8()
	h.hblank = s.ReadBool()
	h.stall = int(s.Read16())
}

func (h *hdma) save(s *types.State) {
	s.Write16(h.source)
	s.Write16(h.destination)
	s.Write8(h.blocks)
	s.WriteBool(h.hblank)
	s.Write16(uint16(h.stall))
}
