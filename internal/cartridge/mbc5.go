package cartridge

import "github.com/thelolagemann/dmgcore/internal/types"

// mbc5State is the state of an MBC5 controller.
type mbc5State struct {
	rumble bool
}

// writeMBC5 handles a write to the registers of an MBC5. Unlike the
// other controllers, bank 0 can be mapped to 0x4000-0x7FFF.
//
//	0000-1FFF - RAM Enable (0x0A enables)
//	2000-2FFF - lower 8 bits of the ROM bank number
//	3000-3FFF - bit 8 of the ROM bank number
//	4000-5FFF - RAM bank number, bit 3 drives the motor on rumble carts
func (c *Cartridge) writeMBC5(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		// MBC5 compares all 8 bits
		c.ramEnabled = value == 0x0A
	case address < 0x3000:
		c.romBank = c.romBank&0x100 | uint16(value)
	case address < 0x4000:
		c.romBank = c.romBank&0x0FF | uint16(value&0x01)<<8
	case address < 0x6000:
		if c.Type.Rumble() {
			c.mbc5.rumble = value&types.Bit3 != 0
			if c.RumbleCallback != nil {
				c.RumbleCallback(c.mbc5.rumble)
			}
			c.ramBank = value & 0x07
		} else {
			c.ramBank = value & 0x0F
		}
	}
}
