package ppu

import (
	"sort"

	"github.com/thelolagemann/dmgcore/internal/types"
)

// maxObjectsPerLine is the number of objects the OAM scan can select
// for a single line.
const maxObjectsPerLine = 10

// Object is an entry of the sprite attribute table (OAM).
type Object struct {
	y     uint8 // Y position + 16
	x     uint8 // X position + 8
	id    uint8 // tile index, always addressed from 0x8000
	attr  uint8 // attributes, see below
	index uint8 // index in OAM, lower wins ties
}

// attributes
//
//	Bit 7 - OBJ-to-BG priority (0=OBJ Above BG, 1=OBJ Behind BG color 1-3)
//	Bit 6 - Y flip             (0=Normal, 1=Vertically mirrored)
//	Bit 5 - X flip             (0=Normal, 1=Horizontally mirrored)
//	Bit 4 - Palette number     (0=OBP0, 1=OBP1), DMG only
//	Bit 3 - Tile VRAM bank, CGB only
//	Bit 2-0 - Palette number, CGB only
func (o Object) behindBG() bool { return o.attr&types.Bit7 != 0 }
func (o Object) flipY() bool    { return o.attr&types.Bit6 != 0 }
func (o Object) flipX() bool    { return o.attr&types.Bit5 != 0 }

// penalty returns the number of dots the object stalls pixel transfer
// for, which depends on its alignment with the background tiles.
func (o Object) penalty(scx uint8) uint16 {
	if o.x >= ScreenWidth+8 {
		return 0
	}
	stall := 5 - int((o.x+scx)&7)
	if stall < 0 {
		stall = 0
	}
	return 6 + uint16(stall)
}

// scanOAM selects the (up to 10) objects that overlap the current line,
// in OAM order. Outside of CGB mode they're then sorted by X so that
// the object with the lowest X coordinate is drawn on top. The sort is
// stable, so the object that comes first in OAM wins a tie. In CGB
// mode OAM order alone decides.
func (p *PPU) scanOAM() {
	p.objects = p.objects[:0]

	for i := 0; i < 0xA0 && len(p.objects) < maxObjectsPerLine; i += 4 {
		y := p.oam[i]
		if p.ly+16 >= y && p.ly+16 < y+p.objSize {
			p.objects = append(p.objects, Object{
				y:     y,
				x:     p.oam[i+1],
				id:    p.oam[i+2],
				attr:  p.oam[i+3],
				index: uint8(i >> 2),
			})
		}
	}

	if p.cgb {
		return
	}
	sort.SliceStable(p.objects, func(i, j int) bool {
		return p.objects[i].x < p.objects[j].x
	})
}
