package ppu

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/types"
	"golang.org/x/image/bmp"
)

type testPPU struct {
	*PPU
	regs *types.HardwareRegisters
	irq  *interrupts.Service
	vram *[0x4000]uint8
	oam  *[0xA0]uint8
}

func newTestPPU() *testPPU {
	regs := &types.HardwareRegisters{}
	irq := interrupts.NewService(regs)
	vram, oam := &[0x4000]uint8{}, &[0xA0]uint8{}
	return &testPPU{
		PPU:  New(regs, irq, vram, oam),
		regs: regs,
		irq:  irq,
		vram: vram,
		oam:  oam,
	}
}

func newTestCGBPPU() *testPPU {
	p := newTestPPU()
	p.EnableCGB(p.regs)
	return p
}

// setColour writes an RGB555 colour to palette RAM through the
// given data register.
func (p *testPPU) setColour(index, data types.HardwareAddress, palette, colour uint8, rgb uint16) {
	p.regs.Write(index, palette*8+colour*2)
	p.regs.Write(data, uint8(rgb))
	p.regs.Write(index, palette*8+colour*2+1)
	p.regs.Write(data, uint8(rgb>>8))
}

// fillTile sets every pixel of tile id (0x8000 addressing) to colour.
func (p *testPPU) fillTile(id int, colour uint8) {
	for row := 0; row < 8; row++ {
		var low, high uint8
		if colour&1 != 0 {
			low = 0xFF
		}
		if colour&2 != 0 {
			high = 0xFF
		}
		p.vram[id*16+row*2] = low
		p.vram[id*16+row*2+1] = high
	}
}

func (p *testPPU) setObject(index int, y, x, id, attr uint8) {
	copy(p.oam[index*4:], []uint8{y, x, id, attr})
}

func TestPPU_FrameTiming(t *testing.T) {
	p := newTestPPU()
	p.regs.Write(types.LCDC, 0x91)

	// VBlank begins on line 144
	p.Tick(ScreenHeight*DotsPerLine - 1)
	if p.HasFrame() || p.irq.Flag&interrupts.VBlankFlag != 0 {
		t.Fatalf("expected no frame before line 144")
	}
	p.Tick(1)
	if !p.HasFrame() || p.irq.Flag&interrupts.VBlankFlag == 0 {
		t.Fatalf("expected frame & VBlank interrupt on line 144")
	}
	p.Frame()
	p.irq.Flag = 0

	// and exactly every 70224 dots after that
	p.Tick(DotsPerFrame - 1)
	if p.HasFrame() {
		t.Errorf("expected no frame before %d dots", DotsPerFrame)
	}
	p.Tick(1)
	if !p.HasFrame() {
		t.Errorf("expected frame after %d dots", DotsPerFrame)
	}
}

func TestPPU_VBlankOncePerFrame(t *testing.T) {
	p := newTestPPU()
	p.regs.Write(types.LCDC, 0x91)

	count := 0
	for dot := 0; dot < DotsPerFrame*3; dot++ {
		p.Tick(1)
		if p.irq.Flag&interrupts.VBlankFlag != 0 {
			if p.LY() != ScreenHeight {
				t.Errorf("expected VBlank on line 144, got %d", p.LY())
			}
			count++
			p.irq.Flag = 0
		}
	}
	if count != 3 {
		t.Errorf("expected 3 VBlank interrupts, got %d", count)
	}
}

func TestPPU_LY(t *testing.T) {
	p := newTestPPU()
	p.regs.Write(types.LCDC, 0x91)

	for line := 0; line < LinesPerFrame; line++ {
		if got := p.regs.Read(types.LY); int(got) != line {
			t.Fatalf("expected LY %d, got %d", line, got)
		}
		p.Tick(DotsPerLine)
	}
	if got := p.regs.Read(types.LY); got != 0 {
		t.Errorf("expected LY to wrap to 0, got %d", got)
	}
}

func TestPPU_Modes(t *testing.T) {
	p := newTestPPU()
	p.regs.Write(types.LCDC, 0x91)

	expect := func(mode uint8) {
		t.Helper()
		if got := p.regs.Read(types.STAT) & 0x03; got != mode {
			t.Errorf("dot %d: expected mode %d, got %d", p.Dot(), mode, got)
		}
	}

	expect(ModeOAM)
	if p.OAMAccessible() || !p.VRAMAccessible() {
		t.Errorf("expected only OAM to be locked during OAM scan")
	}
	p.Tick(79)
	expect(ModeOAM)
	p.Tick(1)
	expect(ModeVRAM)
	if p.OAMAccessible() || p.VRAMAccessible() {
		t.Errorf("expected OAM & VRAM to be locked during pixel transfer")
	}
	p.Tick(171)
	expect(ModeVRAM)
	p.Tick(1)
	expect(ModeHBlank)
	if !p.OAMAccessible() || !p.VRAMAccessible() {
		t.Errorf("expected OAM & VRAM to be accessible during HBlank")
	}
	p.Tick(DotsPerLine - 80 - 172)
	expect(ModeOAM)
	if p.LY() != 1 {
		t.Errorf("expected line 1, got %d", p.LY())
	}

	p.Tick(143 * DotsPerLine)
	expect(ModeVBlank)
}

// pixelTransferLength returns the length of mode 3 on the next line.
func pixelTransferLength(p *testPPU) int {
	p.Tick(DotsPerLine - int(p.Dot()))
	p.Tick(oamScanDots)
	n := 0
	for p.Mode() == ModeVRAM {
		p.Tick(1)
		n++
	}
	return n
}

func TestPPU_PixelTransferLength(t *testing.T) {
	t.Run("SCX", func(t *testing.T) {
		p := newTestPPU()
		p.regs.Write(types.SCX, 0x03)
		p.regs.Write(types.LCDC, 0x91)
		if got := pixelTransferLength(p); got != 175 {
			t.Errorf("expected 175 dots, got %d", got)
		}
	})
	t.Run("window", func(t *testing.T) {
		p := newTestPPU()
		p.regs.Write(types.WY, 0)
		p.regs.Write(types.WX, 7)
		p.regs.Write(types.LCDC, 0xB1)
		if got := pixelTransferLength(p); got != 178 {
			t.Errorf("expected 178 dots, got %d", got)
		}
	})
	t.Run("object", func(t *testing.T) {
		p := newTestPPU()
		// on line 1, aligned with the tile grid
		p.setObject(0, 16, 8, 0, 0)
		p.regs.Write(types.LCDC, 0x93)
		if got := pixelTransferLength(p); got != 172+11 {
			t.Errorf("expected 183 dots, got %d", got)
		}
	})
	t.Run("clamped", func(t *testing.T) {
		p := newTestPPU()
		for i := 0; i < 10; i++ {
			p.setObject(i, 16, 4, 0, 0)
		}
		p.regs.Write(types.SCX, 0x04)
		p.regs.Write(types.WY, 0)
		p.regs.Write(types.WX, 7)
		p.regs.Write(types.LCDC, 0xB3)
		if got := pixelTransferLength(p); got != maxPixelDots {
			t.Errorf("expected %d dots, got %d", maxPixelDots, got)
		}
	})
}

func TestPPU_STAT(t *testing.T) {
	t.Run("HBlank", func(t *testing.T) {
		p := newTestPPU()
		p.regs.Write(types.STAT, types.Bit3)
		p.regs.Write(types.LCDC, 0x91)

		p.Tick(80 + 171)
		if p.irq.Flag&interrupts.LCDFlag != 0 {
			t.Fatalf("expected no interrupt before HBlank")
		}
		p.Tick(1)
		if p.irq.Flag&interrupts.LCDFlag == 0 {
			t.Fatalf("expected interrupt on entering HBlank")
		}
		p.irq.Flag = 0
		p.Tick(100)
		if p.irq.Flag&interrupts.LCDFlag != 0 {
			t.Errorf("expected a single interrupt while the line stays high")
		}
	})
	t.Run("LYC", func(t *testing.T) {
		p := newTestPPU()
		p.regs.Write(types.LYC, 5)
		p.regs.Write(types.STAT, types.Bit6)
		p.regs.Write(types.LCDC, 0x91)

		p.Tick(5*DotsPerLine - 1)
		if p.irq.Flag&interrupts.LCDFlag != 0 {
			t.Fatalf("expected no interrupt before line 5")
		}
		if p.regs.Read(types.STAT)&types.Bit2 != 0 {
			t.Errorf("expected LYC flag to be clear")
		}
		p.Tick(1)
		if p.irq.Flag&interrupts.LCDFlag == 0 {
			t.Errorf("expected interrupt on line 5")
		}
		if p.regs.Read(types.STAT)&types.Bit2 == 0 {
			t.Errorf("expected LYC flag to be set")
		}
	})
	t.Run("blocking", func(t *testing.T) {
		p := newTestPPU()
		p.regs.Write(types.LYC, 0)
		p.regs.Write(types.STAT, types.Bit6|types.Bit5)
		p.regs.Write(types.LCDC, 0x91)
		if p.irq.Flag&interrupts.LCDFlag == 0 {
			t.Fatalf("expected interrupt on line 0")
		}
		p.irq.Flag = 0

		// LYC=LY holds the line high until mode 2 of line 1 takes
		// over, so no new edge is seen
		p.Tick(DotsPerLine)
		if p.irq.Flag&interrupts.LCDFlag != 0 {
			t.Errorf("expected no interrupt on line 1")
		}

		// HBlank of line 1 drops the line, so line 2 raises it again
		p.Tick(DotsPerLine)
		if p.irq.Flag&interrupts.LCDFlag == 0 {
			t.Errorf("expected interrupt on line 2")
		}
	})
	t.Run("mode 2 select on entering VBlank", func(t *testing.T) {
		p := newTestPPU()
		p.regs.Write(types.STAT, types.Bit5)
		p.regs.Write(types.LCDC, 0x91)

		p.Tick(ScreenHeight*DotsPerLine - 1)
		p.irq.Flag = 0
		p.Tick(1)
		if p.LY() != ScreenHeight || p.irq.Flag&interrupts.LCDFlag == 0 {
			t.Fatalf("expected interrupt on line 144, got LY %d IF 0x%02X", p.LY(), p.irq.Flag)
		}
		p.irq.Flag = 0

		// the rest of VBlank doesn't raise it again
		p.Tick(9 * DotsPerLine)
		if p.irq.Flag&interrupts.LCDFlag != 0 {
			t.Errorf("expected no interrupt on lines 145-153")
		}
	})
	t.Run("write on CGB", func(t *testing.T) {
		p := newTestCGBPPU()
		p.regs.Write(types.LCDC, 0x91)
		p.Tick(80 + 172 + 10) // HBlank
		p.irq.Flag = 0

		p.regs.Write(types.STAT, 0x00)
		if p.irq.Flag&interrupts.LCDFlag != 0 {
			t.Errorf("expected no spurious interrupt on CGB")
		}
	})
	t.Run("read", func(t *testing.T) {
		p := newTestPPU()
		p.regs.Write(types.STAT, 0xFF)
		if got := p.regs.Read(types.STAT); got != 0xF8 {
			t.Errorf("expected 0xF8, got 0x%02X", got)
		}
	})
}

func TestPPU_LCDOff(t *testing.T) {
	p := newTestPPU()
	p.fillTile(0, 3)
	p.regs.Write(types.BGP, 0xE4)
	p.regs.Write(types.LCDC, 0x91)
	p.Tick(DotsPerFrame + 1000)

	p.regs.Write(types.LCDC, 0x11)
	if p.LY() != 0 || p.Mode() != ModeHBlank || p.Dot() != 0 {
		t.Errorf("expected LY 0, mode 0, dot 0, got %d %d %d", p.LY(), p.Mode(), p.Dot())
	}
	if f := p.Frame(); f[10][10] != 0 {
		t.Errorf("expected blank frame, got shade %d", f[10][10])
	}

	// the PPU doesn't advance while off
	p.Tick(DotsPerFrame)
	if p.HasFrame() || p.LY() != 0 {
		t.Errorf("expected PPU to stay idle while the LCD is off")
	}

	// and starts fresh when turned back on
	p.regs.Write(types.LCDC, 0x91)
	if p.Mode() != ModeOAM || p.LY() != 0 || p.Dot() != 0 {
		t.Errorf("expected the first line to start at dot 0")
	}
}

// renderFrame enables the LCD and returns the first frame.
func renderFrame(p *testPPU, lcdc uint8) Frame {
	p.regs.Write(types.LCDC, lcdc)
	p.Tick(ScreenHeight * DotsPerLine)
	return p.Frame()
}

func TestPPU_Background(t *testing.T) {
	p := newTestPPU()
	p.fillTile(1, 3)
	p.vram[0x1800] = 1    // tile (0, 0)
	p.vram[0x1800+33] = 1 // tile (1, 1)
	p.regs.Write(types.BGP, 0xE4)

	f := renderFrame(p, 0x91)
	if f[0][0] != 3 || f[7][7] != 3 || f[8][8] != 3 {
		t.Errorf("expected tiles to be drawn")
	}
	if f[0][8] != 0 || f[8][0] != 0 {
		t.Errorf("expected empty tiles to be blank")
	}

	t.Run("palette", func(t *testing.T) {
		p := newTestPPU()
		p.fillTile(1, 3)
		p.vram[0x1800] = 1
		// colour 3 -> shade 1, colour 0 -> shade 2
		p.regs.Write(types.BGP, 0b01_00_00_10)
		f := renderFrame(p, 0x91)
		if f[0][0] != 1 || f[0][8] != 2 {
			t.Errorf("expected shades 1 & 2, got %d & %d", f[0][0], f[0][8])
		}
	})
	t.Run("scroll", func(t *testing.T) {
		p := newTestPPU()
		p.fillTile(1, 3)
		p.vram[0x1800] = 1
		p.regs.Write(types.BGP, 0xE4)
		p.regs.Write(types.SCX, 4)
		p.regs.Write(types.SCY, 4)
		f := renderFrame(p, 0x91)
		if f[0][3] != 3 || f[0][4] != 0 || f[3][0] != 3 || f[4][0] != 0 {
			t.Errorf("expected tile to be scrolled by 4 pixels")
		}
	})
	t.Run("signed addressing", func(t *testing.T) {
		p := newTestPPU()
		// tile 0xFF at 0x8FF0 in 0x8800 mode
		for row := 0; row < 8; row++ {
			p.vram[0x0FF0+row*2] = 0xFF
		}
		p.vram[0x1800] = 0xFF
		p.regs.Write(types.BGP, 0xE4)
		f := renderFrame(p, 0x81)
		if f[0][0] != 1 {
			t.Errorf("expected signed tile to be drawn, got shade %d", f[0][0])
		}
	})
	t.Run("disabled", func(t *testing.T) {
		p := newTestPPU()
		p.fillTile(0, 3)
		p.regs.Write(types.BGP, 0xE4)
		f := renderFrame(p, 0x90)
		if f[0][0] != 0 {
			t.Errorf("expected blank background, got shade %d", f[0][0])
		}
	})
}

func TestPPU_Window(t *testing.T) {
	p := newTestPPU()
	p.fillTile(1, 3)
	// window map at 0x9C00 filled with tile 1
	for i := 0; i < 0x400; i++ {
		p.vram[0x1C00+i] = 1
	}
	p.regs.Write(types.BGP, 0xE4)
	p.regs.Write(types.WY, 100)
	p.regs.Write(types.WX, 87)

	f := renderFrame(p, 0xF1)
	if f[99][100] != 0 {
		t.Errorf("expected no window above WY")
	}
	if f[100][79] != 0 || f[100][80] != 3 || f[143][159] != 3 {
		t.Errorf("expected window from (80, 100)")
	}
	if p.wly != 44 {
		t.Errorf("expected window line counter 44, got %d", p.wly)
	}
}

func TestPPU_Objects(t *testing.T) {
	setup := func() *testPPU {
		p := newTestPPU()
		p.fillTile(2, 1)
		p.fillTile(3, 2)
		p.regs.Write(types.BGP, 0xE4)
		p.regs.Write(types.OBP0, 0xE4)
		p.regs.Write(types.OBP1, 0x1B)
		return p
	}

	t.Run("lower X wins", func(t *testing.T) {
		p := setup()
		p.setObject(0, 16, 12, 2, 0) // x 4-11
		p.setObject(1, 16, 10, 3, 0) // x 2-9
		f := renderFrame(p, 0x93)
		if f[0][5] != 2 {
			t.Errorf("expected lower X object on top, got shade %d", f[0][5])
		}
		if f[0][10] != 1 {
			t.Errorf("expected other object to be visible, got shade %d", f[0][10])
		}
	})
	t.Run("lower index wins ties", func(t *testing.T) {
		p := setup()
		p.setObject(0, 16, 30, 3, 0)
		p.setObject(1, 16, 30, 2, 0)
		f := renderFrame(p, 0x93)
		if f[0][22] != 2 {
			t.Errorf("expected first object on top, got shade %d", f[0][22])
		}
	})
	t.Run("behind background", func(t *testing.T) {
		p := setup()
		p.fillTile(1, 3)
		p.vram[0x1800] = 1
		p.setObject(0, 16, 12, 2, types.Bit7) // x 4-11
		f := renderFrame(p, 0x93)
		if f[0][5] != 3 {
			t.Errorf("expected background over object, got shade %d", f[0][5])
		}
		if f[0][9] != 1 {
			t.Errorf("expected object over background colour 0, got shade %d", f[0][9])
		}
	})
	t.Run("palette & flip", func(t *testing.T) {
		p := setup()
		// left half colour 1, right half colour 0
		for row := 0; row < 8; row++ {
			p.vram[4*16+row*2] = 0xF0
		}
		p.setObject(0, 16, 8, 4, types.Bit4|types.Bit5)
		f := renderFrame(p, 0x93)
		// OBP1 maps colour 1 to shade 2
		if f[0][0] != 0 || f[0][7] != 2 {
			t.Errorf("expected flipped object in OBP1, got %d & %d", f[0][0], f[0][7])
		}
	})
	t.Run("10 per line", func(t *testing.T) {
		p := setup()
		for i := 0; i < 11; i++ {
			p.setObject(i, 16, uint8(8+8*i), 2, 0)
		}
		f := renderFrame(p, 0x93)
		if f[0][72] != 1 {
			t.Errorf("expected 10th object to be drawn")
		}
		if f[0][80] != 0 {
			t.Errorf("expected 11th object to be dropped")
		}
	})
	t.Run("8x16", func(t *testing.T) {
		p := setup()
		p.setObject(0, 16, 8, 3, 0) // tiles 2 & 3
		f := renderFrame(p, 0x97)
		if f[0][0] != 1 || f[8][0] != 2 || f[16][0] != 0 {
			t.Errorf("expected 8x16 object, got %d %d %d", f[0][0], f[8][0], f[16][0])
		}
	})
	t.Run("disabled", func(t *testing.T) {
		p := setup()
		p.setObject(0, 16, 8, 2, 0)
		f := renderFrame(p, 0x91)
		if f[0][0] != 0 {
			t.Errorf("expected objects to be hidden")
		}
	})
}

func TestPPU_PaletteRAM(t *testing.T) {
	t.Run("unmapped on DMG", func(t *testing.T) {
		p := newTestPPU()
		p.regs.Write(types.BCPS, 0x80)
		if got := p.regs.Read(types.BCPS); got != 0xFF {
			t.Errorf("expected BCPS to read 0xFF, got 0x%02X", got)
		}
	})
	t.Run("auto increment", func(t *testing.T) {
		p := newTestCGBPPU()
		p.regs.Write(types.BCPS, 0x80|0x3E)
		if got := p.regs.Read(types.BCPS); got != 0xFE {
			t.Errorf("expected BCPS to read 0xFE, got 0x%02X", got)
		}
		p.regs.Write(types.BCPD, 0x11)
		p.regs.Write(types.BCPD, 0x22)
		p.regs.Write(types.BCPD, 0x33) // wraps around to 0
		if got := p.regs.Read(types.BCPS); got != 0xC1 {
			t.Errorf("expected index to wrap around to 1, got 0x%02X", got)
		}
		if p.bgPalettes.ram[0x3E] != 0x11 || p.bgPalettes.ram[0x3F] != 0x22 || p.bgPalettes.ram[0] != 0x33 {
			t.Errorf("expected palette RAM to be written in order")
		}

		// no increment without bit 7
		p.regs.Write(types.OCPS, 0x05)
		p.regs.Write(types.OCPD, 0x44)
		p.regs.Write(types.OCPD, 0x55)
		if got := p.regs.Read(types.OCPD); got != 0x55 || p.regs.Read(types.OCPS) != 0x45 {
			t.Errorf("expected OCPD 0x55 at index 5, got 0x%02X", got)
		}
	})
	t.Run("locked during pixel transfer", func(t *testing.T) {
		p := newTestCGBPPU()
		p.regs.Write(types.BCPS, 0x80)
		p.regs.Write(types.LCDC, 0x91)
		p.Tick(oamScanDots + 1)
		if p.Mode() != ModeVRAM {
			t.Fatalf("expected pixel transfer, got mode %d", p.Mode())
		}
		p.regs.Write(types.BCPD, 0x12)
		if got := p.regs.Read(types.BCPD); got != 0xFF {
			t.Errorf("expected BCPD to read 0xFF, got 0x%02X", got)
		}
		if p.bgPalettes.ram[0] != 0xFF || p.regs.Read(types.BCPS) != 0xC1 {
			t.Errorf("expected write to be dropped, with the index moving on")
		}
	})
}

func TestPPU_CGBBackground(t *testing.T) {
	p := newTestCGBPPU()
	// tile 1 colour 1 in bank 0, colour 2 in bank 1
	for row := 0; row < 8; row++ {
		p.vram[16+row*2] = 0xFF
		p.vram[0x2000+16+row*2+1] = 0xFF
	}
	// left half colour 3 in tile 2
	for row := 0; row < 8; row++ {
		p.vram[32+row*2], p.vram[32+row*2+1] = 0xF0, 0xF0
	}
	p.vram[0x1800] = 1
	p.vram[0x1801] = 1
	p.vram[0x3801] = types.Bit3 | 0x05 // bank 1, palette 5
	p.vram[0x1802] = 2
	p.vram[0x3802] = types.Bit5 // X flip

	p.setColour(types.BCPS, types.BCPD, 0, 1, 0x001F) // red
	p.setColour(types.BCPS, types.BCPD, 5, 2, 0x03E0) // green
	p.setColour(types.BCPS, types.BCPD, 0, 3, 0x7C00) // blue

	// LCDC.0 doesn't blank the background
	f := renderFrame(p, 0x90)
	c := p.ColourFrame()
	if f[0][0] != 1 || c[0][0] != 0x001F {
		t.Errorf("expected colour 1 red, got %d 0x%04X", f[0][0], c[0][0])
	}
	if f[0][8] != 2 || c[0][8] != 0x03E0 {
		t.Errorf("expected colour 2 green from bank 1, got %d 0x%04X", f[0][8], c[0][8])
	}
	if f[0][16] != 0 || f[0][23] != 3 || c[0][23] != 0x7C00 {
		t.Errorf("expected flipped tile, got %d & %d", f[0][16], f[0][23])
	}
}

func TestPPU_CGBObjects(t *testing.T) {
	setup := func() *testPPU {
		p := newTestCGBPPU()
		p.fillTile(2, 1)
		p.fillTile(3, 2)
		p.setColour(types.OCPS, types.OCPD, 3, 1, 0x1234)
		return p
	}

	t.Run("OAM order wins", func(t *testing.T) {
		p := setup()
		p.setObject(0, 16, 12, 2, 0) // x 4-11
		p.setObject(1, 16, 10, 3, 0) // x 2-9
		f := renderFrame(p, 0x93)
		if f[0][5] != 1 {
			t.Errorf("expected first object on top, got colour %d", f[0][5])
		}
	})
	t.Run("palette & bank", func(t *testing.T) {
		p := setup()
		for row := 0; row < 8; row++ {
			p.vram[0x2000+5*16+row*2] = 0xFF // tile 5 colour 1 in bank 1
		}
		p.setObject(0, 16, 8, 5, types.Bit3|0x03)
		renderFrame(p, 0x93)
		if c := p.ColourFrame(); c[0][0] != 0x1234 {
			t.Errorf("expected 0x1234, got 0x%04X", c[0][0])
		}
	})
	t.Run("background priority", func(t *testing.T) {
		p := setup()
		p.fillTile(1, 3)
		p.vram[0x1800] = 1
		p.vram[0x3800] = types.Bit7
		p.setObject(0, 16, 8, 2, 0)
		if f := renderFrame(p, 0x93); f[0][0] != 3 {
			t.Errorf("expected tile priority to hide the object, got %d", f[0][0])
		}

		// LCDC.0 clear puts objects on top regardless
		p = setup()
		p.fillTile(1, 3)
		p.vram[0x1800] = 1
		p.vram[0x3800] = types.Bit7
		p.setObject(0, 16, 8, 2, types.Bit7)
		if f := renderFrame(p, 0x92); f[0][0] != 1 {
			t.Errorf("expected object on top, got %d", f[0][0])
		}
	})
}

func TestPPU_HBlankHook(t *testing.T) {
	p := newTestPPU()
	var lines int
	p.AttachHBlank(func() { lines++ })
	p.regs.Write(types.LCDC, 0x91)

	p.Tick(DotsPerFrame)
	if lines != ScreenHeight {
		t.Errorf("expected %d calls, got %d", ScreenHeight, lines)
	}
}

func TestColourFrame(t *testing.T) {
	p := newTestPPU()
	p.fillTile(0, 3)
	p.regs.Write(types.BGP, 0xE4)
	renderFrame(p, 0x91)

	c := p.ColourFrame()
	img := c.Image()
	if got := img.RGBAAt(0, 0); got != (color.RGBA{A: 0xFF}) {
		t.Errorf("expected black, got %v", got)
	}

	var white ColourFrame
	white[0][0] = 0x7FFF
	if got := white.Image().RGBAAt(0, 0); got != (color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}) {
		t.Errorf("expected white, got %v", got)
	}
	var buf bytes.Buffer
	if err := white.WriteBMP(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFrame(t *testing.T) {
	var a, b Frame
	if a.Hash() != b.Hash() {
		t.Errorf("expected identical frames to hash the same")
	}
	b[10][10] = 3
	if a.Hash() == b.Hash() {
		t.Errorf("expected different frames to hash differently")
	}

	img := b.Image(Greyscale)
	if img.RGBAAt(10, 10) != Greyscale[3] || img.RGBAAt(0, 0) != Greyscale[0] {
		t.Errorf("expected pixels to be coloured by the palette")
	}

	var buf bytes.Buffer
	if err := b.WriteBMP(&buf, Green); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := bmp.Decode(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bounds := decoded.Bounds(); bounds.Dx() != ScreenWidth || bounds.Dy() != ScreenHeight {
		t.Errorf("expected %dx%d image, got %v", ScreenWidth, ScreenHeight, bounds)
	}
}

func TestPPU_State(t *testing.T) {
	p := newTestPPU()
	p.regs.Write(types.SCX, 0x12)
	p.regs.Write(types.LCDC, 0x91)
	p.Tick(12345)

	s := types.NewState()
	p.Save(s)

	q := newTestPPU()
	q.Load(types.StateFromBytes(s.Bytes()))
	if q.LY() != p.LY() || q.Dot() != p.Dot() || q.Mode() != p.Mode() {
		t.Errorf("expected LY %d dot %d mode %d, got %d %d %d", p.LY(), p.Dot(), p.Mode(), q.LY(), q.Dot(), q.Mode())
	}
	if q.regs.Read(types.SCX) != 0x12 {
		t.Errorf("expected SCX 0x12")
	}
}

func BenchmarkPPU_Frame(b *testing.B) {
	p := newTestPPU()
	p.regs.Write(types.LCDC, 0x93)
	for i := 0; i < b.N; i++ {
		p.Tick(DotsPerFrame)
	}
}
