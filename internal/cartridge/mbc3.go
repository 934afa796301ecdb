package cartridge

import "github.com/thelolagemann/dmgcore/pkg/utils"

// mbc3State is the state of an MBC3 controller.
type mbc3State struct {
	// selected is the RTC register (0x08-0x0C) mapped to
	// 0xA000-0xBFFF, or 0 if a RAM bank is mapped instead.
	selected uint8
	// latch is the last value written to 0x6000-0x7FFF.
	latch uint8

	rtc rtc
}

// writeMBC3 handles a write to the registers of an MBC3.
//
//	0000-1FFF - RAM and RTC Enable (0x0A in the lower nibble enables)
//	2000-3FFF - ROM bank number (7 bits, 0 selects 1)
//	4000-5FFF - RAM bank number (0x00-0x03) or RTC register (0x08-0x0C)
//	6000-7FFF - Latch clock data, by writing 0x00 then 0x01
func (c *Cartridge) writeMBC3(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		c.romBank = uint16(utils.ZeroAdjust8(value & 0x7F))
	case address < 0x6000:
		switch {
		case value <= 0x03:
			c.ramBank = value
			c.mbc3.selected = 0
		case value >= 0x08 && value <= 0x0C && c.Type.Timer():
			c.mbc3.selected = value
		}
	default:
		if c.mbc3.latch == 0x00 && value == 0x01 {
			c.mbc3.rtc.latchRegisters()
		}
		c.mbc3.latch = value
	}
}
