// Package mmu provides the memory management unit of the Game Boy. It
// owns every internal memory region, and routes each CPU access to the
// owning region, the cartridge, or the handler of a hardware register.
package mmu

import (
	"github.com/pkg/errors"
	"github.com/thelolagemann/dmgcore/internal/boot"
	"github.com/thelolagemann/dmgcore/internal/cartridge"
	"github.com/thelolagemann/dmgcore/internal/scheduler"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
	"github.com/thelolagemann/dmgcore/pkg/utils"
)

// VideoGate reports whether the video memories can currently be
// accessed by the CPU, which depends on the mode of the PPU.
type VideoGate interface {
	VRAMAccessible() bool
	OAMAccessible() bool
}

// region identifies the owner of a 256 byte page of the address space.
type region uint8

const (
	regionNone  region = iota // nothing decodes the page
	regionROM                 // 0x0000 - 0x7FFF cartridge ROM
	regionVRAM                // 0x8000 - 0x9FFF video RAM
	regionERAM                // 0xA000 - 0xBFFF cartridge RAM
	regionWRAM                // 0xC000 - 0xDFFF work RAM
	regionEcho                // 0xE000 - 0xFDFF echo of work RAM
	regionOAM                 // 0xFE00 - 0xFEFF OAM and unusable memory
	regionHigh                // 0xFF00 - 0xFFFF I/O, high RAM and IE
)

// MMU is the memory management unit of the Game Boy.
type MMU struct {
	pages [0x100]region

	// 0x0000 - 0x00FF - BOOT ROM (256B)
	bootROM     *boot.ROM
	bootROMDone bool

	// 0x0000 - 0x7FFF - ROM (32kB)
	// 0xA000 - 0xBFFF - External RAM (8kB)
	cart *cartridge.Cartridge

	// 0x8000 - 0x9FFF - Video RAM (8kB, 2 banks on CGB)
	vRAM     [0x4000]uint8
	vRAMBank uint16 // offset of the bank selected by types.VBK

	// 0xC000 - 0xDFFF - Work RAM (8kB, 8 banks of 4kB on CGB)
	// 0xE000 - 0xFDFF - Echo RAM (7.5kB)
	wRAM [0x8000]uint8
	svbk uint8 // types.SVBK, bank 1 is mapped in place of bank 0

	// 0xFE00 - 0xFE9F - Sprite Attribute Table (160B)
	oam [0xA0]uint8

	// 0xFF00 - 0xFF7F - I/O Registers
	// 0xFFFF - interrupt enable register
	registers *types.HardwareRegisters

	// 0xFF80 - 0xFFFE - High RAM (127B)
	hRAM [0x7F]uint8

	video VideoGate
	dma   dma
	hdma  hdma

	cgb  bool
	key1 uint8 // speed switch armed (bit 0) and current speed (bit 7)

	err error
	log log.Logger
}

// NewMMU returns a new MMU routing to cart and the hardware registers
// in regs.
func NewMMU(cart *cartridge.Cartridge, regs *types.HardwareRegisters, s *scheduler.Scheduler, l log.Logger) *MMU {
	if l == nil {
		l = log.NewNullLogger()
	}
	m := &MMU{
		cart:      cart,
		registers: regs,
		log:       l,
	}
	m.init(s)

	return m
}

func (m *MMU) init(s *scheduler.Scheduler) {
	for page := 0x00; page < 0x100; page++ {
		switch {
		case page < 0x80:
			m.pages[page] = regionROM
		case page < 0xA0:
			m.pages[page] = regionVRAM
		case page < 0xC0:
			m.pages[page] = regionERAM
		case page < 0xE0:
			m.pages[page] = regionWRAM
		case page < 0xFE:
			m.pages[page] = regionEcho
		case page == 0xFE:
			m.pages[page] = regionOAM
		default:
			m.pages[page] = regionHigh
		}
	}

	m.registers.RegisterHardware(
		types.BDIS,
		func(v uint8) {
			// once unmapped, the boot ROM stays unmapped until reset
			if v != 0 {
				m.bootROMDone = true
			}
		}, nil,
	)
	m.dma.init(m, s)
}

// SetBootROM maps rom over 0x0000-0x00FF, until it is unmapped by
// a write to types.BDIS.
func (m *MMU) SetBootROM(rom *boot.ROM) {
	m.bootROM = rom
	m.bootROMDone = rom == nil
}

// BootROMMapped returns true while the boot ROM is mapped.
func (m *MMU) BootROMMapped() bool {
	return m.bootROM != nil && !m.bootROMDone
}

// AttachVideo attaches the video component to the MMU, which then
// restricts access to VRAM and OAM according to it.
func (m *MMU) AttachVideo(video VideoGate) {
	m.video = video
}

// EnableCGB maps the registers only found on the CGB (KEY1, VBK, SVBK
// and HDMA1-5). Until called they read 0xFF, and only the first bank
// of each memory is mapped.
func (m *MMU) EnableCGB() {
	m.cgb = true

	m.registers.RegisterHardware(
		types.KEY1,
		func(v uint8) {
			m.key1 = m.key1&types.Bit7 | v&types.Bit0
		}, func() uint8 {
			return m.key1 | 0x7E
		},
	)
	m.registers.RegisterHardware(
		types.VBK,
		func(v uint8) {
			m.vRAMBank = uint16(v&types.Bit0) * 0x2000
		}, func() uint8 {
			return 0xFE | uint8(m.vRAMBank>>13)
		},
	)
	m.registers.RegisterHardware(
		types.SVBK,
		func(v uint8) {
			m.svbk = v & 0x07
		}, func() uint8 {
			return 0xF8 | m.svbk
		},
	)
	m.hdma.init(m)
}

// SpeedSwitchArmed returns true if a speed switch has been requested
// through types.KEY1, to be performed by the next STOP.
func (m *MMU) SpeedSwitchArmed() bool {
	return m.cgb && m.key1&types.Bit0 != 0
}

// SwitchSpeed toggles between single and double speed, disarming
// the switch.
func (m *MMU) SwitchSpeed() {
	m.key1 = (m.key1 ^ types.Bit7) &^ types.Bit0
	m.log.Debugf("switched to double speed: %t", m.DoubleSpeed())
}

// DoubleSpeed returns true while the CPU runs at double speed.
func (m *MMU) DoubleSpeed() bool {
	return m.key1&types.Bit7 != 0
}

// VRAM returns both banks of video RAM, for the PPU to render from.
func (m *MMU) VRAM() *[0x4000]uint8 {
	return &m.vRAM
}

// OAM returns the sprite attribute table, for the PPU to render from.
func (m *MMU) OAM() *[0xA0]uint8 {
	return &m.oam
}

// Reset clears the internal memories and remaps the boot ROM.
func (m *MMU) Reset() {
	m.vRAM = [0x4000]uint8{}
	m.vRAMBank = 0
	m.wRAM = [0x8000]uint8{}
	m.svbk = 0
	m.key1 = 0
	m.oam = [0xA0]uint8{}
	m.hRAM = [0x7F]uint8{}
	m.bootROMDone = m.bootROM == nil
	m.dma.reset()
	m.hdma.reset()
	m.err = nil
}

// Err returns the first decode error encountered, if any.
func (m *MMU) Err() error {
	return m.err
}

// Tick advances the OAM DMA by the given number of CPU cycles.
func (m *MMU) Tick(cycles int) {
	m.dma.tick(cycles)
}

// wramIndex maps an address of work RAM, or its echo, to wRAM.
func (m *MMU) wramIndex(address uint16) uint16 {
	offset := address & 0x1FFF
	if offset < 0x1000 {
		return offset
	}
	return uint16(utils.ZeroAdjust8(m.svbk))*0x1000 + offset - 0x1000
}

func (m *MMU) vramAccessible() bool {
	return m.video == nil || m.video.VRAMAccessible()
}

func (m *MMU) oamAccessible() bool {
	return !m.dma.active && (m.video == nil || m.video.OAMAccessible())
}

// Read returns the value at the given address. It handles all the
// memory banks, mirroring, I/O, and access restrictions.
func (m *MMU) Read(address uint16) uint8 {
	switch m.pages[address>>8] {
	case regionROM:
		if address < 0x100 && m.BootROMMapped() {
			return m.bootROM.Read(address)
		}
		return m.cart.Read(address)
	case regionVRAM:
		if !m.vramAccessible() {
			return 0xFF
		}
		return m.vRAM[m.vRAMBank+address-0x8000]
	case regionERAM:
		return m.cart.Read(address)
	case regionWRAM, regionEcho:
		return m.wRAM[m.wramIndex(address)]
	case regionOAM:
		if address >= 0xFEA0 || !m.oamAccessible() {
			return 0xFF
		}
		return m.oam[address-0xFE00]
	case regionHigh:
		if address >= 0xFF80 && address < 0xFFFF {
			return m.hRAM[address-0xFF80]
		}
		return m.registers.Read(address)
	}

	m.decodeGap("read", address)
	return 0xFF
}

// Write writes the value to the given address. Writes to read only
// or restricted memory are dropped.
func (m *MMU) Write(address uint16, value uint8) {
	switch m.pages[address>>8] {
	case regionROM, regionERAM:
		// bank switching is handled by the cartridge
		m.cart.Write(address, value)
	case regionVRAM:
		if m.vramAccessible() {
			m.vRAM[m.vRAMBank+address-0x8000] = value
		}
	case regionWRAM, regionEcho:
		m.wRAM[m.wramIndex(address)] = value
	case regionOAM:
		if address < 0xFEA0 && m.oamAccessible() {
			m.oam[address-0xFE00] = value
		}
	case regionHigh:
		if address >= 0xFF80 && address < 0xFFFF {
			m.hRAM[address-0xFF80] = value
			return
		}
		m.registers.Write(address, value)
	default:
		m.decodeGap("write", address)
	}
}

func (m *MMU) decodeGap(access string, address uint16) {
	if m.err != nil {
		return
	}
	m.err = errors.Wrapf(ErrAddressDecodeGap, "%s of 0x%04X", access, address)
	m.log.Errorf("%v", m.err)
}

var _ types.Stater = (*MMU)(nil)

// Load loads the internal memories.
func (m *MMU) Load(s *types.State) {
	s.ReadData(m.vRAM[:])
	s.ReadData(m.wRAM[:])
	s.ReadData(m.oam[:])
	s.ReadData(m.hRAM[:])
	m.bootROMDone = s.ReadBool()
	m.vRAMBank = s.Read16()
	m.svbk = s.Read8()
	m.key1 = s.Read8()
	m.dma.load(s)
	m.hdma.load(s)
}

// Save saves the internal memories.
func (m *MMU) Save(s *types.State) {
	s.WriteData(m.vRAM[:])
	s.WriteData(m.wRAM[:])
	s.WriteData(m.oam[:])
	s.WriteData(m.hRAM[:])
	s.WriteBool(m.bootROMDone)
	s.Write16(m.vRAMBank)
	s.Write8(m.svbk)
	s.Write8(m.key1)
	m.dma.save(s)
	m.hdma.save(s)
}
