package cartridge

import "github.com/thelolagemann/dmgcore/pkg/utils"

// writeMBC2 handles a write to the registers of an MBC2. Both
// registers share 0x0000-0x3FFF, with bit 8 of the address
// selecting between them.
//
//	bit 8 clear - RAM Enable (0x0A in the lower nibble enables)
//	bit 8 set   - ROM bank number (4 bits, 0 selects 1)
func (c *Cartridge) writeMBC2(address uint16, value uint8) {
	if address >= 0x4000 {
		return
	}

	if address&0x0100 == 0x0100 {
		c.romBank = uint16(utils.ZeroAdjust8(value & 0x0F))
	} else {
		c.ramEnabled = value&0x0F == 0x0A
	}
}
