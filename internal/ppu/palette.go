package ppu

import (
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/utils"
)

// colourPalettes is a palette RAM of the CGB, holding 8 palettes of 4
// little endian RGB555 colours. It's accessed a byte at a time, through
// an index register (types.BCPS, types.OCPS) and a data register
// (types.BCPD, types.OCPD).
type colourPalettes struct {
	ram       [64]uint8
	index     uint8 // byte selected by the index register
	increment bool  // index moves on after each data write
}

func (c *colourPalettes) reset() {
	// white until the game (or the boot ROM) says otherwise
	for i := range c.ram {
		c.ram[i] = 0xFF
	}
	c.index, c.increment = 0, false
}

func (c *colourPalettes) setIndex(v uint8) {
	c.index = v & 0x3F
	c.increment = v&types.Bit7 != 0
}

func (c *colourPalettes) readIndex() uint8 {
	v := c.index | types.Bit6
	if c.increment {
		v |= types.Bit7
	}
	return v
}

// write writes the selected byte, unless locked by pixel transfer.
// The index moves on either way.
func (c *colourPalettes) write(v uint8, locked bool) {
	if !locked {
		c.ram[c.index] = v
	}
	if c.increment {
		c.index = (c.index + 1) & 0x3F
	}
}

// colour returns the RGB555 value of colour index of a palette.
func (c *colourPalettes) colour(palette, index uint8) uint16 {
	i := palette&7*8 + index*2
	return utils.BytesToUint16(c.ram[i+1], c.ram[i]) & 0x7FFF
}

func (c *colourPalettes) load(s *types.State) {
	s.ReadData(c.ram[:])
	c.setIndex(s.Read8())
}

func (c *colourPalettes) save(s *types.State) {
	s.WriteData(c.ram[:])
	s.Write8(c.readIndex())
}
