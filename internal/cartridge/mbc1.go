package cartridge

import "github.com/thelolagemann/dmgcore/pkg/utils"

// mbc1State is the state of an MBC1 controller.
type mbc1State struct {
	bank1     uint8 // 5-bit BANK1 register, never 0
	bank2     uint8 // 2-bit BANK2 register
	mode      bool  // banking mode, BANK2 also applies to 0x0000-0x3FFF & RAM when set
	multicart bool  // BANK1 is wired as 4 bits on multicarts
}

// writeMBC1 handles a write to the registers of an MBC1.
//
//	0000-1FFF - RAM Enable (0x0A in the lower nibble enables)
//	2000-3FFF - BANK1, lower 5 bits of the ROM bank number
//	4000-5FFF - BANK2, upper 2 bits of the ROM bank, or RAM bank
//	6000-7FFF - Banking mode select
func (c *Cartridge) writeMBC1(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		// the zero check happens on all 5 bits, so on multicarts
		// 0x10 still maps to bank 0 of the selected game
		value = utils.ZeroAdjust8(value & 0x1F)
		if c.mbc1.multicart {
			value &= 0x0F
		}
		c.mbc1.bank1 = value
	case address < 0x6000:
		c.mbc1.bank2 = value & 0x03
	default:
		c.mbc1.mode = value&0x01 == 0x01
	}

	c.updateMBC1Banks()
}

func (c *Cartridge) updateMBC1Banks() {
	shift := 5
	if c.mbc1.multicart {
		shift = 4
	}

	upper := uint16(c.mbc1.bank2) << shift
	c.romBank = upper | uint16(c.mbc1.bank1)
	if c.mbc1.mode {
		c.romBank0 = upper
		c.ramBank = c.mbc1.bank2
	} else {
		c.romBank0 = 0
		c.ramBank = 0
	}
}
