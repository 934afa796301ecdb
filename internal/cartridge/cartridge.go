// Package cartridge implements the Game Boy cartridge, and the memory
// bank controllers that map its ROM and RAM into the address space.
package cartridge

import (
	"bytes"

	"github.com/cespare/xxhash"
	"github.com/pkg/errors"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

// Cartridge is a ROM image along with its external RAM and memory bank
// controller. The controller is a tagged variant: kind selects which of
// the per-controller states is in use, and Read and Write switch on it.
//
// The switchable ROM window (0x4000-0x7FFF) maps to physical offset
// (romBank * 0x4000 + (addr - 0x4000)) mod len(ROM), the fixed window
// to (romBank0 * 0x4000 + addr) mod len(ROM), and external RAM to
// (ramBank * 0x2000 + (addr - 0xA000)) mod len(RAM), so bank numbers
// larger than the image simply wrap around.
type Cartridge struct {
	Header

	rom []byte
	ram []byte

	kind Kind

	romBank    uint16
	romBank0   uint16
	ramBank    uint8
	ramEnabled bool

	mbc1 mbc1State
	mbc3 mbc3State
	mbc5 mbc5State

	// RumbleCallback is called with the state of the motor
	// whenever a rumble cartridge writes its RAM bank register.
	RumbleCallback func(on bool)

	log log.Logger
}

// New creates a new cartridge from the provided ROM image, validating
// its header.
func New(rom []byte, l log.Logger) (*Cartridge, error) {
	if l == nil {
		l = log.NewNullLogger()
	}
	if len(rom) < 0x150 {
		return nil, errors.Wrapf(ErrInvalidImage, "image is %d bytes, too short to hold a header", len(rom))
	}

	c := &Cartridge{
		Header: parseHeader(rom),
		rom:    rom,
		log:    l,
	}
	if err := c.Header.validate(rom); err != nil {
		return nil, errors.Wrapf(ErrInvalidImage, "%v", err)
	}

	c.kind = c.Type.Kind()
	if c.kind == KindUnsupported {
		return nil, errors.Wrapf(ErrUnsupportedMapper, "%s", c.Type)
	}

	if sum := GlobalChecksum(rom); sum != c.GlobalChecksum {
		c.log.Warnf("cartridge %s global checksum 0x%04X, computed 0x%04X", c.Title, c.GlobalChecksum, sum)
	}

	// MBC2 has 512x4 bits of RAM built into the controller
	if c.kind == KindMBC2 {
		c.RAMSize = 512
	}
	c.ram = make([]byte, c.RAMSize)

	if c.kind == KindMBC1 {
		c.mbc1.multicart = detectMultiCart(rom)
	}

	c.Reset()
	c.log.Infof("cartridge %s loaded", c.Header.String())

	return c, nil
}

// Reset returns the controller to its power on state. The contents
// of RAM and the clock are kept.
func (c *Cartridge) Reset() {
	c.romBank = 1
	c.romBank0 = 0
	c.ramBank = 0
	// RAM without a controller is always accessible
	c.ramEnabled = c.kind == KindROM

	c.mbc1 = mbc1State{bank1: 1, multicart: c.mbc1.multicart}
	c.mbc3.selected = 0
	c.mbc3.latch = 0xFF
	c.mbc5 = mbc5State{}
}

// Kind returns the controller family of the cartridge.
func (c *Cartridge) Kind() Kind {
	return c.kind
}

// ROMBank returns the bank mapped to 0x4000-0x7FFF.
func (c *Cartridge) ROMBank() int {
	return int(c.romBank) % (len(c.rom) / 0x4000)
}

// Fingerprint returns a hash of the ROM image, which identifies the
// game regardless of what its header says.
func (c *Cartridge) Fingerprint() uint64 {
	return xxhash.Sum64(c.rom)
}

// HasBattery returns true if the host should persist the contents
// of RAM (and the clock) between sessions.
func (c *Cartridge) HasBattery() bool {
	return c.Type.Battery()
}

// Read returns the value at the given address, which must be in
// 0x0000-0x7FFF or 0xA000-0xBFFF.
func (c *Cartridge) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return c.rom[(int(c.romBank0)*0x4000+int(address))%len(c.rom)]
	case address < 0x8000:
		return c.rom[(int(c.romBank)*0x4000+int(address-0x4000))%len(c.rom)]
	case address >= 0xA000 && address < 0xC000:
		if !c.ramEnabled {
			return 0xFF
		}
		switch c.kind {
		case KindMBC2:
			// only the lower nibble exists, mirrored through 0xBFFF
			return c.ram[address&0x01FF] | 0xF0
		case KindMBC3:
			if c.mbc3.selected != 0 {
				return c.mbc3.rtc.read(c.mbc3.selected)
			}
		}
		if len(c.ram) == 0 {
			return 0xFF
		}
		return c.ram[c.ramOffset(address)]
	}
	return 0xFF
}

// Write handles a write to the given address, either to one of the
// controller's registers (0x0000-0x7FFF) or to external RAM.
func (c *Cartridge) Write(address uint16, value uint8) {
	if address < 0x8000 {
		switch c.kind {
		case KindMBC1:
			c.writeMBC1(address, value)
		case KindMBC2:
			c.writeMBC2(address, value)
		case KindMBC3:
			c.writeMBC3(address, value)
		case KindMBC5:
			c.writeMBC5(address, value)
		}
		// ROM is (R)ead-(O)nly (M)emory
		return
	}

	if address < 0xA000 || address >= 0xC000 || !c.ramEnabled {
		return
	}
	switch c.kind {
	case KindMBC2:
		c.ram[address&0x01FF] = value & 0x0F
		return
	case KindMBC3:
		if c.mbc3.selected != 0 {
			c.mbc3.rtc.write(c.mbc3.selected, value)
			return
		}
	}
	if len(c.ram) == 0 {
		return
	}
	c.ram[c.ramOffset(address)] = value
}

func (c *Cartridge) ramOffset(address uint16) int {
	return (int(c.ramBank)*0x2000 + int(address-0xA000)) % len(c.ram)
}

// Tick advances the real time clock, if the cartridge has one, by the
// given number of cycles.
func (c *Cartridge) Tick(cycles int) {
	if c.Type.Timer() {
		c.mbc3.rtc.tick(cycles)
	}
}

// RAM returns the contents of external RAM, for the host to persist.
// The slice is shared with the cartridge.
func (c *Cartridge) RAM() []byte {
	return c.ram
}

// LoadRAM replaces the contents of external RAM.
func (c *Cartridge) LoadRAM(data []byte) error {
	if len(data) != len(c.ram) {
		return errors.Wrapf(ErrInvalidSave, "RAM is %d bytes, got %d", len(c.ram), len(data))
	}
	copy(c.ram, data)
	return nil
}

// RTC returns the clock registers, for the host to persist. It
// returns nil if the cartridge has no clock.
func (c *Cartridge) RTC() []byte {
	if !c.Type.Timer() {
		return nil
	}
	return c.mbc3.rtc.bytes()
}

// LoadRTC restores the clock registers from data, as returned by RTC.
func (c *Cartridge) LoadRTC(data []byte) error {
	if !c.Type.Timer() {
		return errors.Wrapf(ErrInvalidSave, "%s has no clock", c.Type)
	}
	if len(data) != rtcStateSize {
		return errors.Wrapf(ErrInvalidSave, "clock state is %d bytes, got %d", rtcStateSize, len(data))
	}
	c.mbc3.rtc.load(data)
	return nil
}

// nintendoLogo is the logo every cartridge carries at 0x0104, which
// the boot ROM compares before starting the game.
var nintendoLogo = []byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// detectMultiCart uses heuristics to detect if the cartridge is an MBC1
// multicart, where each game occupies 16 banks with its own header.
func detectMultiCart(rom []byte) bool {
	if len(rom) != 1024*1024 {
		return false
	}

	logos := 0
	for game := 0; game < 4; game++ {
		offset := game*0x40000 + 0x0104
		if bytes.Equal(rom[offset:offset+len(nintendoLogo)], nintendoLogo) {
			logos++
		}
	}

	// more than 1 logo is likely a multicart
	return logos > 1
}

var _ types.Stater = (*Cartridge)(nil)

// Load loads the controller state and the contents of RAM.
func (c *Cartridge) Load(s *types.State) {
	c.romBank = s.Read16()
	c.romBank0 = s.Read16()
	c.ramBank = s.Read8()
	c.ramEnabled = s.ReadBool()

	c.mbc1.bank1 = s.Read8()
	c.mbc1.bank2 = s.Read8()
	c.mbc1.mode = s.ReadBool()
	c.mbc3.selected = s.Read8()
	c.mbc3.latch = s.Read8()
	c.mbc5.rumble = s.ReadBool()

	s.ReadData(c.ram)
	if c.Type.Timer() {
		rtc := make([]byte, rtcStateSize)
		s.ReadData(rtc)
		c.mbc3.rtc.load(rtc)
	}
}

// Save saves the controller state and the contents of RAM.
func (c *Cartridge) Save(s *types.State) {
	s.Write16(c.romBank)
	s.Write16(c.romBank0)
	s.Write8(c.ramBank)
	s.WriteBool(c.ramEnabled)

	s.Write8(c.mbc1.bank1)
	s.Write8(c.mbc1.bank2)
	s.WriteBool(c.mbc1.mode)
	s.Write8(c.mbc3.selected)
	s.Write8(c.mbc3.latch)
	s.WriteBool(c.mbc5.rumble)

	s.WriteData(c.ram)
	if c.Type.Timer() {
		s.WriteData(c.mbc3.rtc.bytes())
	}
}
