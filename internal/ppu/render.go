package ppu

import "github.com/thelolagemann/dmgcore/internal/types"

// tilePixel returns the colour index (0-3) of the pixel at (x, y) of the
// tile whose 16 bytes of data start at address, 0x2000 and up being the
// second VRAM bank.
func (p *PPU) tilePixel(address uint16, x, y uint8) uint8 {
	low := p.vRAM[address+uint16(y)*2]
	high := p.vRAM[address+uint16(y)*2+1]

	bit := 7 - x
	return (high>>bit&1)<<1 | low>>bit&1
}

// tileAddress returns the address of a background or window tile,
// following the addressing mode selected by LCDC.4.
func (p *PPU) tileAddress(id uint8) uint16 {
	if p.addressMode {
		return uint16(id) * 16
	}
	// 0x8800 mode, with 0x9000 as the base for signed tile ids
	return uint16(0x1000 + int(int8(id))*16)
}

// backgroundPixel returns the colour index of the background, or
// window, at x on the current line, along with the attributes of its
// tile. Attributes are only used in CGB mode, and are 0 otherwise.
//
//	Bit 7   - BG-to-OBJ priority (1=BG colours 1-3 above objects)
//	Bit 6   - Y flip
//	Bit 5   - X flip
//	Bit 3   - Tile VRAM bank
//	Bit 2-0 - Palette number
func (p *PPU) backgroundPixel(x uint8) (uint8, uint8) {
	var tileMap uint16
	var px, py uint8

	if p.winOnLine && int(x)+7 >= int(p.wx) {
		tileMap = p.winTileMap
		px, py = x+7-p.wx, p.wly
	} else {
		tileMap = p.bgTileMap
		px, py = x+p.scx, p.ly+p.scy
	}

	entry := tileMap + uint16(py/8)*32 + uint16(px/8)
	address := p.tileAddress(p.vRAM[entry])
	px, py = px%8, py%8

	var attr uint8
	if p.cgb {
		// attributes sit in the second bank, at the same address
		attr = p.vRAM[0x2000+entry]
		if attr&types.Bit3 != 0 {
			address += 0x2000
		}
		if attr&types.Bit5 != 0 {
			px = 7 - px
		}
		if attr&types.Bit6 != 0 {
			py = 7 - py
		}
	}
	return p.tilePixel(address, px, py), attr
}

// objectPixel returns the colour index of obj at screen position x on
// the current line, or 0 if it doesn't cover x.
func (p *PPU) objectPixel(obj Object, x uint8) uint8 {
	col := int(x) + 8 - int(obj.x)
	if col < 0 || col >= 8 {
		return 0
	}
	row := p.ly + 16 - obj.y
	if obj.flipY() {
		row = p.objSize - 1 - row
	}
	if obj.flipX() {
		col = 7 - col
	}

	id := obj.id
	if p.objSize == 16 {
		id &= 0xFE
	}
	// 8x16 objects span two consecutive tiles
	address := uint16(id)*16 + uint16(row/8)*16
	if p.cgb && obj.attr&types.Bit3 != 0 {
		address += 0x2000
	}
	return p.tilePixel(address, uint8(col), row%8)
}

// renderLine draws the current line into the frame.
func (p *PPU) renderLine() {
	line, colours := &p.frame[p.ly], &p.colour[p.ly]

	var bgIndex, bgAttr [ScreenWidth]uint8
	for x := uint8(0); x < ScreenWidth; x++ {
		// with LCDC.0 off, both background and window are blank,
		// unless in CGB mode where it only drops their priority
		if p.bgEnabled || p.cgb {
			bgIndex[x], bgAttr[x] = p.backgroundPixel(x)
		}
		if p.cgb {
			line[x] = bgIndex[x]
			colours[x] = p.bgPalettes.colour(bgAttr[x], bgIndex[x])
		} else {
			line[x] = shade(p.bgp, bgIndex[x])
			colours[x] = dmgColours[line[x]]
		}
	}

	if p.objEnabled {
		for x := uint8(0); x < ScreenWidth; x++ {
			// the first opaque object in priority order decides the
			// pixel, even if it ends up hidden behind the background
			for _, obj := range p.objects {
				colour := p.objectPixel(obj, x)
				if colour == 0 {
					continue
				}
				if p.objectAbove(obj, bgIndex[x], bgAttr[x]) {
					p.drawObjectPixel(obj, x, colour)
				}
				break
			}
		}
	}

	if p.winOnLine {
		p.wly++
	}
}

// objectAbove returns true if an object is drawn over a background
// pixel of the given colour index and tile attributes.
func (p *PPU) objectAbove(obj Object, bgIndex, bgAttr uint8) bool {
	if bgIndex == 0 {
		return true
	}
	if p.cgb && !p.bgEnabled {
		return true
	}
	return !obj.behindBG() && bgAttr&types.Bit7 == 0
}

func (p *PPU) drawObjectPixel(obj Object, x, colour uint8) {
	if p.cgb {
		p.frame[p.ly][x] = colour
		p.colour[p.ly][x] = p.objPalettes.colour(obj.attr, colour)
		return
	}

	palette := p.obp0
	if obj.attr&types.Bit4 != 0 {
		palette = p.obp1
	}
	p.frame[p.ly][x] = shade(palette, colour)
	p.colour[p.ly][x] = dmgColours[p.frame[p.ly][x]]
}

// shade maps a colour index through a palette register.
func shade(palette, index uint8) uint8 {
	return palette >> (index * 2) & 0x03
}
