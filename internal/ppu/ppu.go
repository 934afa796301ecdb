// Package ppu implements the Game Boy's (P)ixel (P)rocessing (U)nit.
package ppu

import (
	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/utils"
)

const (
	// ScreenWidth is the width of the screen in pixels.
	ScreenWidth = 160
	// ScreenHeight is the height of the screen in pixels.
	ScreenHeight = 144

	// DotsPerLine is the number of dots it takes to draw a scanline.
	DotsPerLine = 456
	// LinesPerFrame is the number of scanlines in a frame, including
	// the 10 lines of VBlank.
	LinesPerFrame = 154
	// DotsPerFrame is the number of dots it takes to draw a frame.
	DotsPerFrame = DotsPerLine * LinesPerFrame

	oamScanDots   = 80
	minPixelDots  = 172
	maxPixelDots  = 289
	windowPenalty = 6
)

const (
	// ModeHBlank (Mode 0) - Horizontal Blanking Period
	//
	// 	Duration 87 - 204 dots (variable per line)
	//	- Allows CPU access to VRAM/OAM
	// 	- STAT interrupt available if enabled via STAT.3
	ModeHBlank = iota

	// ModeVBlank (Mode 1) - Vertical Blanking Period
	//
	//	Duration 4560 dots (10 lines)
	//	- Allows full CPU access to VRAM/OAM
	//	- VBlank interrupt requested on entry
	//	- STAT interrupt available if enabled via STAT.4
	//	- Active during LY 144-153
	ModeVBlank

	// ModeOAM (Mode 2) - OAM Scan
	//
	//	Duration: 80 dots (fixed)
	//	- Locks OAM bus
	//	- STAT interrupt available if enabled via STAT.5
	//	- PPU searches OAM for visible sprites
	//	- Occurs at start of each line
	ModeOAM

	// ModeVRAM (Mode 3) - Pixel Transfer
	//
	//	Duration: 172-289 dots (variable depending on objects and window)
	//	- Locks both OAM and VRAM buses
	//	- No STAT interrupts available
	//	- Active during visible pixel rendering
	ModeVRAM
)

// PPU is a dot based state machine, advanced by Tick. Timing is exact
// to the dot, whereas each line is rendered in one go at the end of
// pixel transfer, from the register values at that point.
//
// References:
//   - [Pan Docs](https://gbdev.io/pandocs/Graphics.html)
//   - [Hacktix GBEDG](https://hacktix.github.io/GBEDG/ppu/)
type PPU struct {
	// LCDC register
	lcdc        uint8
	enabled     bool   // LCDC.7 - LCD Enable
	winTileMap  uint16 // LCDC.6 - Window Tile Map Select (0=9800-9BFF, 1=9C00-9FFF)
	winEnabled  bool   // LCDC.5 - Window Enable
	addressMode bool   // LCDC.4 - BG/Win Tile Data Select (0=8800-97FF, 1=8000-8FFF)
	bgTileMap   uint16 // LCDC.3 - BG Tile Map Select
	objSize     uint8  // LCDC.2 - OBJ Size (0=8x8, 1=8x16)
	objEnabled  bool   // LCDC.1 - OBJ Enable
	bgEnabled   bool   // LCDC.0 - BG & Window Display

	// Rendering state
	mode   uint8  // Mode reported to STAT register
	ly     uint8  // Current line (0-153)
	dot    uint16 // Current dot within line (0-455)
	status uint8  // STAT bits 2-6

	// pixelDots is the length of pixel transfer on the current line
	pixelDots uint16

	// Window rendering state
	wly          uint8 // Window line counter
	winTriggerWy bool  // WY == LY was seen this frame
	winOnLine    bool  // Window is drawn on the current line

	// Scroll registers
	scy, scx uint8 // Background viewport position
	wy, wx   uint8 // Window Position

	lyCompare uint8 // LYC register value

	// Palettes
	bgp, obp0, obp1 uint8

	// statInt is the current state of the STAT interrupt line
	statInt bool

	objects []Object // Objects found by the OAM scan of the current line

	frame           Frame // Frame being drawn
	completed       Frame // Last frame completed
	colour          ColourFrame
	completedColour ColourFrame
	frameReady      bool

	// CGB mode
	cgb         bool
	bgPalettes  colourPalettes
	objPalettes colourPalettes

	// hblank is called on entering HBlank on a visible line
	hblank func()

	vRAM *[0x4000]uint8 // both banks, the second is only used in CGB mode
	oam  *[0xA0]uint8
	irq  *interrupts.Service
}

// New returns a new PPU rendering from vRAM and oam, and registers
// its hardware registers in regs.
func New(regs *types.HardwareRegisters, irq *interrupts.Service, vRAM *[0x4000]uint8, oam *[0xA0]uint8) *PPU {
	p := &PPU{
		vRAM:    vRAM,
		oam:     oam,
		irq:     irq,
		objects: make([]Object, 0, maxObjectsPerLine),
	}
	p.Reset()

	regs.RegisterHardware(
		types.LCDC,
		func(v uint8) {
			p.writeLCDC(v)
		}, func() uint8 {
			return p.lcdc
		},
	)
	regs.RegisterHardware(
		types.STAT,
		func(v uint8) {
			// on DMG, writing STAT behaves as if 0xFF was written for
			// a cycle, which can raise a spurious interrupt
			old := p.status
			if !p.cgb {
				p.status = 0xFF
				p.statUpdate()
			}

			// only the interrupt selects are writable
			p.status = old&0b0000_0111 | v&0b0111_1000
			p.statUpdate()
		}, func() uint8 {
			return types.Bit7 | p.status | p.mode
		},
	)
	regs.RegisterHardware(
		types.SCY,
		func(v uint8) {
			p.scy = v
		}, func() uint8 {
			return p.scy
		},
	)
	regs.RegisterHardware(
		types.SCX,
		func(v uint8) {
			p.scx = v
		}, func() uint8 {
			return p.scx
		},
	)
	regs.RegisterHardware(
		types.LY,
		types.NoWrite,
		func() uint8 {
			return p.ly
		},
	)
	regs.RegisterHardware(
		types.LYC,
		func(v uint8) {
			p.lyCompare = v
			p.statUpdate()
		}, func() uint8 {
			return p.lyCompare
		},
	)
	regs.RegisterHardware(
		types.BGP,
		func(v uint8) {
			p.bgp = v
		}, func() uint8 {
			return p.bgp
		},
	)
	regs.RegisterHardware(
		types.OBP0,
		func(v uint8) {
			p.obp0 = v
		}, func() uint8 {
			return p.obp0
		},
	)
	regs.RegisterHardware(
		types.OBP1,
		func(v uint8) {
			p.obp1 = v
		}, func() uint8 {
			return p.obp1
		},
	)
	regs.RegisterHardware(
		types.WY,
		func(v uint8) {
			p.wy = v
		}, func() uint8 {
			return p.wy
		},
	)
	regs.RegisterHardware(
		types.WX,
		func(v uint8) {
			p.wx = v
		}, func() uint8 {
			return p.wx
		},
	)

	return p
}

// EnableCGB switches the PPU to CGB rendering, registering the
// palette RAM registers in regs.
//
// In CGB mode colours come from palette RAM rather than BGP, OBP0 and
// OBP1. Background tiles also take attributes from the second VRAM
// bank.
func (p *PPU) EnableCGB(regs *types.HardwareRegisters) {
	p.cgb = true

	for _, r := range []struct {
		index, data types.HardwareAddress
		palettes    *colourPalettes
	}{
		{types.BCPS, types.BCPD, &p.bgPalettes},
		{types.OCPS, types.OCPD, &p.objPalettes},
	} {
		palettes := r.palettes
		regs.RegisterHardware(r.index, palettes.setIndex, palettes.readIndex)
		regs.RegisterHardware(
			r.data,
			func(v uint8) {
				palettes.write(v, p.paletteLocked())
			}, func() uint8 {
				if p.paletteLocked() {
					return 0xFF
				}
				return palettes.ram[palettes.index]
			},
		)
	}
}

// AttachHBlank sets a function to be called every time the PPU
// enters HBlank on a visible line.
func (p *PPU) AttachHBlank(fn func()) {
	p.hblank = fn
}

// paletteLocked returns true while palette RAM is being read by
// pixel transfer.
func (p *PPU) paletteLocked() bool {
	return p.enabled && p.mode == ModeVRAM
}

// Reset returns the PPU to its power on state, with the LCD off.
func (p *PPU) Reset() {
	p.decodeLCDC(0)
	p.enabled = false
	p.mode, p.ly, p.dot, p.status = ModeHBlank, 0, 0, 0
	p.pixelDots = minPixelDots
	p.wly, p.winTriggerWy, p.winOnLine = 0, false, false
	p.scy, p.scx, p.wy, p.wx = 0, 0, 0, 0
	p.lyCompare = 0
	p.bgp, p.obp0, p.obp1 = 0, 0, 0
	p.statInt = false
	p.objects = p.objects[:0]
	p.frame = Frame{}
	p.completed = Frame{}
	p.colour = ColourFrame{}
	p.completedColour = ColourFrame{}
	p.frameReady = false
	p.bgPalettes.reset()
	p.objPalettes.reset()
}

func (p *PPU) decodeLCDC(v uint8) {
	p.lcdc = v
	p.winTileMap = 0x1800 + uint16(v>>6&1)*0x400
	p.winEnabled = v&types.Bit5 != 0
	p.addressMode = v&types.Bit4 != 0
	p.bgTileMap = 0x1800 + uint16(v>>3&1)*0x400
	p.objSize = 8 + (v & types.Bit2 << 1)
	p.objEnabled = v&types.Bit1 != 0
	p.bgEnabled = v&types.Bit0 != 0
}

func (p *PPU) writeLCDC(v uint8) {
	p.decodeLCDC(v)

	switch {
	case p.enabled && v&types.Bit7 == 0:
		// when the LCD is off, LY reads 0, and STAT mode reads 0 (HBlank)
		p.enabled = false
		p.ly, p.dot, p.mode = 0, 0, ModeHBlank
		p.statInt = false
		p.frame = Frame{}
		p.completed = Frame{}
		p.colour = ColourFrame{}
		p.completedColour = ColourFrame{}
	case !p.enabled && v&types.Bit7 != 0:
		// the first line starts fresh
		p.enabled = true
		p.ly, p.dot = 0, 0
		p.wly, p.winTriggerWy = 0, false
		p.startOAMScan()
	}
}

// Enabled returns true if the LCD is on.
func (p *PPU) Enabled() bool {
	return p.enabled
}

// Mode returns the current mode of the PPU.
func (p *PPU) Mode() uint8 {
	return p.mode
}

// LY returns the current scanline.
func (p *PPU) LY() uint8 {
	return p.ly
}

// Dot returns the current dot within the scanline.
func (p *PPU) Dot() uint16 {
	return p.dot
}

// VRAMAccessible returns true if the CPU can access VRAM.
func (p *PPU) VRAMAccessible() bool {
	return !p.enabled || p.mode != ModeVRAM
}

// OAMAccessible returns true if the CPU can access OAM.
func (p *PPU) OAMAccessible() bool {
	return !p.enabled || p.mode == ModeHBlank || p.mode == ModeVBlank
}

// Tick advances the PPU by the given number of dots.
func (p *PPU) Tick(cycles int) {
	if !p.enabled {
		return
	}

	for i := 0; i < cycles; i++ {
		p.dot++

		switch p.mode {
		case ModeOAM:
			if p.dot == oamScanDots {
				p.startPixelTransfer()
			}
		case ModeVRAM:
			if p.dot == oamScanDots+p.pixelDots {
				p.renderLine()
				p.setMode(ModeHBlank)
				if p.hblank != nil {
					p.hblank()
				}
			}
		case ModeHBlank, ModeVBlank:
			if p.dot == DotsPerLine {
				p.nextLine()
			}
		}
	}
}

// nextLine moves on to the next scanline, wrapping around after
// the last line of VBlank.
func (p *PPU) nextLine() {
	p.dot = 0
	p.ly++

	switch {
	case p.ly == ScreenHeight:
		p.completed = p.frame
		p.completedColour = p.colour
		p.frameReady = true

		p.irq.Request(interrupts.VBlankFlag)
		p.setMode(ModeVBlank)
	case p.ly == LinesPerFrame:
		p.ly = 0
		p.wly, p.winTriggerWy = 0, false
		p.startOAMScan()
	case p.ly < ScreenHeight:
		p.startOAMScan()
	default:
		// LY changed, which may change the LYC flag
		p.statUpdate()
	}
}

func (p *PPU) startOAMScan() {
	// the window is active for the rest of the frame once
	// LY == WY has been seen with the window enabled
	if p.winEnabled && p.wy == p.ly {
		p.winTriggerWy = true
	}

	p.scanOAM()
	p.setMode(ModeOAM)
}

func (p *PPU) startPixelTransfer() {
	// on the CGB, LCDC.0 doesn't hide the window
	p.winOnLine = (p.bgEnabled || p.cgb) && p.winEnabled && p.winTriggerWy && p.wx <= 166

	dots := uint16(minPixelDots) + uint16(p.scx&7)
	if p.winOnLine {
		dots += windowPenalty
	}
	if p.objEnabled {
		for _, obj := range p.objects {
			dots += obj.penalty(p.scx)
		}
	}
	p.pixelDots = utils.Clamp(minPixelDots, dots, maxPixelDots)

	p.setMode(ModeVRAM)
}

func (p *PPU) setMode(mode uint8) {
	p.mode = mode
	p.statUpdate()
}

// statUpdate updates the LYC flag and the STAT interrupt line, which
// requests an interrupt when it goes from low to high. It has to be
// called whenever one of the conditions of the line changes.
func (p *PPU) statUpdate() {
	if !p.enabled {
		return
	}

	if p.ly == p.lyCompare {
		p.status |= types.Bit2
	} else {
		p.status &^= types.Bit2
	}

	// line 144 starts with the OAM scan signal raised, as on every
	// other line, so the mode 2 select also fires on entering VBlank
	oam := p.mode == ModeOAM || p.mode == ModeVBlank && p.ly == ScreenHeight && p.dot == 0

	statInt := (p.mode == ModeHBlank && p.status&types.Bit3 != 0) ||
		(p.mode == ModeVBlank && p.status&types.Bit4 != 0) ||
		(oam && p.status&types.Bit5 != 0) ||
		(p.status&types.Bit2 != 0 && p.status&types.Bit6 != 0)

	// did STAT go low -> high
	if !p.statInt && statInt {
		p.irq.Request(interrupts.LCDFlag)
	}
	p.statInt = statInt
}

// HasFrame returns true if a frame has been completed since the last
// call to Frame.
func (p *PPU) HasFrame() bool {
	return p.frameReady
}

// Frame returns the last completed frame.
func (p *PPU) Frame() Frame {
	p.frameReady = false
	return p.completed
}

// ColourFrame returns the colours of the last completed frame.
func (p *PPU) ColourFrame() ColourFrame {
	return p.completedColour
}

var _ types.Stater = (*PPU)(nil)

// Load loads the state of the PPU.
func (p *PPU) Load(s *types.State) {
	p.decodeLCDC(s.Read8())
	p.enabled = p.lcdc&types.Bit7 != 0
	p.mode = s.Read8()
	p.ly = s.Read8()
	p.dot = s.Read16()
	p.status = s.Read8()
	p.pixelDots = s.Read16()
	p.wly = s.Read8()
	p.winTriggerWy = s.ReadBool()
	p.winOnLine = s.ReadBool()
	p.scy, p.scx = s.Read8(), s.Read8()
	p.wy, p.wx = s.Read8(), s.Read8()
	p.lyCompare = s.Read8()
	p.bgp, p.obp0, p.obp1 = s.Read8(), s.Read8(), s.Read8()
	p.statInt = s.ReadBool()
	for y := range p.frame {
		s.ReadData(p.frame[y][:])
	}
	for y := range p.colour {
		for x := range p.colour[y] {
			p.colour[y][x] = s.Read16()
		}
	}
	p.bgPalettes.load(s)
	p.objPalettes.load(s)

	// objects are rescanned rather than saved
	if p.enabled && p.ly < ScreenHeight {
		p.scanOAM()
	}
}

// Save saves the state of the PPU.
func (p *PPU) Save(s *types.State) {
	s.Write8(p.lcdc)
	s.Write8(p.mode)
	s.Write8(p.ly)
	s.Write16(p.dot)
	s.Write8(p.status)
	s.Write16(p.pixelDots)
	s.Write8(p.wly)
	s.WriteBool(p.winTriggerWy)
	s.WriteBool(p.winOnLine)
	s.Write8(p.scy)
	s.Write8(p.scx)
	s.Write8(p.wy)
	s.Write8(p.wx)
	s.Write8(p.lyCompare)
	s.Write8(p.bgp)
	s.Write8(p.obp0)
	s.Write8(p.obp1)
	s.WriteBool(p.statInt)
	for y := range p.frame {
		s.WriteData(p.frame[y][:])
	}
	for y := range p.colour {
		for _, c := range p.colour[y] {
			s.Write16(c)
		}
	}
	p.bgPalettes.save(s)
	p.objPalettes.save(s)
}
