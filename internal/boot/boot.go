// Package boot provides the boot ROM of the Game Boy. Whilst a boot ROM
// is not required for the emulator to function, one can be supplied to
// emulate the boot process rather than starting from post-boot state.
package boot

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/pkg/errors"
	"github.com/thelolagemann/dmgcore/internal/types"
)

// Size is the size of the DMG/MGB/SGB boot ROMs.
const Size = 256

// ErrInvalidLength is returned when a boot ROM isn't Size bytes long.
var ErrInvalidLength = errors.New("boot: invalid boot rom length")

// ROM represents a boot ROM for the Game Boy. When the Game Boy first
// powers on, the boot ROM is mapped to memory addresses 0x0000 - 0x00FF.
//
// The boot ROM performs a series of tasks, such as initializing the
// hardware, setting the stack pointer, scrolling the Nintendo logo, etc.
//
// Once the boot ROM has completed its tasks, it is unmapped from memory
// (by writing to the types.BDIS register), and the cartridge is mapped
// over the boot ROM, thus starting the cartridge execution, and preventing
// the boot ROM from being executed again.
type ROM struct {
	raw      [Size]byte
	checksum string // the MD5 checksum of the boot rom
}

// New copies b into a new ROM, after ensuring it has the length of
// a DMG boot ROM.
func New(b []byte) (*ROM, error) {
	if len(b) != Size {
		return nil, errors.Wrapf(ErrInvalidLength, "got %d bytes, expected %d", len(b), Size)
	}

	r := &ROM{}
	copy(r.raw[:], b)
	sum := md5.Sum(b)
	r.checksum = hex.EncodeToString(sum[:])

	return r, nil
}

// Read returns the byte at the given address.
func (r *ROM) Read(addr uint16) byte {
	return r.raw[addr&0xFF]
}

// Checksum returns the MD5 checksum of the boot rom.
func (r *ROM) Checksum() string {
	if r == nil {
		return ""
	}
	return r.checksum
}

// Model returns the model the boot ROM was dumped from, as
// determined by its checksum, or types.Unset if it isn't known.
func (r *ROM) Model() types.Model {
	if r == nil {
		return types.Unset
	}
	return knownBootROMChecksums[r.checksum]
}

// knownBootROMChecksums is a map of known boot rom checksums,
// with the key being the checksum, and the value being the
// model of the boot rom.
var knownBootROMChecksums = map[string]types.Model{
	DMG0: types.DMG0,
	DMG:  types.DMGABC,
	MGB:  types.MGB,
	SGB:  types.SGB,
	SGB2: types.SGB2,
}

const (
	// DMG0 is the checksum of the DMG early boot ROM, found in
	// very early DMG units only ever sold in Japan. On a boot
	// failure it flashes the screen, rather than hanging after
	// the Nintendo logo.
	DMG0 = "a8f84a0ac44da5d3f0ee19f9cea80a8c"
	// DMG is the checksum of the DMG boot rom, the most common
	// boot ROM found in the original DMG-01 models.
	DMG = "32fbbd84168d3482956eb3c5051637f5"
	// MGB is the checksum of the MGB boot ROM, which differs only
	// by loading 0xFF into A rather than 0x01, letting games
	// detect they are running on a Game Boy Pocket.
	MGB = "71a378e71ff30b2d8a1f02bf5c7896aa"
	// SGB is the checksum of the SGB boot ROM, which sends the
	// cartridge header to the SNES instead of showing the logo.
	SGB = "d574d4f9c12f305074798f54c091a8b4"
	// SGB2 is the checksum of the SGB2 boot ROM, which is to the
	// SGB boot ROM what the MGB boot ROM is to the DMG one.
	SGB2 = "e0430bca9925fb9882148fd2dc2418c1"
)
