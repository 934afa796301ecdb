package ppu

import (
	"image"
	"image/color"
	"io"

	"github.com/cespare/xxhash"
	"golang.org/x/image/bmp"
)

// Frame is a completed frame, holding the shade (0-3, after palette
// lookup) of every pixel, indexed [y][x]. In CGB mode it holds the
// colour index of every pixel instead, see ColourFrame.
type Frame [ScreenHeight][ScreenWidth]uint8

// Hash returns a hash of the frame, which lets tests compare frames
// without storing them.
func (f *Frame) Hash() uint64 {
	d := xxhash.New()
	for y := range f {
		_, _ = d.Write(f[y][:])
	}
	return d.Sum64()
}

// Image returns the frame as an image, coloured with the given palette.
func (f *Frame) Image(p Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	for y := range f {
		for x, s := range f[y] {
			img.SetRGBA(x, y, p[s&3])
		}
	}
	return img
}

// WriteBMP encodes the frame as a BMP image to w.
func (f *Frame) WriteBMP(w io.Writer, p Palette) error {
	return bmp.Encode(w, f.Image(p))
}

// Palette maps the 4 shades of the screen to colours.
type Palette [4]color.RGBA

var (
	// Greyscale is the default greyscale palette.
	Greyscale = Palette{
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0xCC, 0xCC, 0xCC, 0xFF},
		{0x77, 0x77, 0x77, 0xFF},
		{0x00, 0x00, 0x00, 0xFF},
	}
	// Green attempts to emulate the colours of the original screen.
	Green = Palette{
		{0x9B, 0xBC, 0x0F, 0xFF},
		{0x8B, 0xAC, 0x0F, 0xFF},
		{0x30, 0x62, 0x30, 0xFF},
		{0x0F, 0x38, 0x0F, 0xFF},
	}
)

// dmgColours maps the 4 shades to greys, for the ColourFrame of a DMG.
var dmgColours = [4]uint16{0x7FFF, 0x6739, 0x39CE, 0x0000}

// ColourFrame is a completed frame, holding the RGB555 colour of every
// pixel, indexed [y][x]. Outside of CGB mode shades are drawn as greys.
type ColourFrame [ScreenHeight][ScreenWidth]uint16

// Image returns the frame as an image, scaling every 5 bit channel
// to 8 bits.
func (f *ColourFrame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	for y := range f {
		for x, c := range f[y] {
			img.SetRGBA(x, y, color.RGBA{
				R: scale5(c),
				G: scale5(c >> 5),
				B: scale5(c >> 10),
				A: 0xFF,
			})
		}
	}
	return img
}

// WriteBMP encodes the frame as a BMP image to w.
func (f *ColourFrame) WriteBMP(w io.Writer) error {
	return bmp.Encode(w, f.Image())
}

func scale5(c uint16) uint8 {
	v := uint8(c & 0x1F)
	return v<<3 | v>>2
}
