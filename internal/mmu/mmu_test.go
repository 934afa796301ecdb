package mmu

import (
	"errors"
	"testing"

	"github.com/thelolagemann/dmgcore/internal/boot"
	"github.com/thelolagemann/dmgcore/internal/cartridge"
	"github.com/thelolagemann/dmgcore/internal/scheduler"
	"github.com/thelolagemann/dmgcore/internal/types"
)

// gate is a VideoGate with fixed answers.
type gate struct {
	vram, oam bool
}

func (g *gate) VRAMAccessible() bool { return g.vram }
func (g *gate) OAMAccessible() bool  { return g.oam }

func newTestMMU(t *testing.T) (*MMU, *types.HardwareRegisters, *scheduler.Scheduler) {
	t.Helper()

	// 128 KiB MBC1 with 8 KiB of RAM, each bank starting with its number
	rom := make([]byte, 128*1024)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = uint8(bank)
	}
	rom[0x0147] = uint8(cartridge.MBC1RAM)
	rom[0x0148] = 0x02
	rom[0x0149] = 0x02
	cartridge.FixChecksums(rom)

	cart, err := cartridge.New(rom, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	regs := &types.HardwareRegisters{}
	s := scheduler.NewScheduler()
	return NewMMU(cart, regs, s, nil), regs, s
}

func TestMMU_Regions(t *testing.T) {
	m, _, _ := newTestMMU(t)

	for _, address := range []uint16{0x8000, 0x9FFF, 0xC000, 0xDFFF, 0xFE00, 0xFE9F, 0xFF80, 0xFFFE} {
		m.Write(address, 0x42)
		if got := m.Read(address); got != 0x42 {
			t.Errorf("0x%04X: expected 0x42, got 0x%02X", address, got)
		}
	}
	if m.Err() != nil {
		t.Errorf("unexpected error: %v", m.Err())
	}
}

func TestMMU_Echo(t *testing.T) {
	m, _, _ := newTestMMU(t)

	m.Write(0xC123, 0x11)
	if got := m.Read(0xE123); got != 0x11 {
		t.Errorf("expected echo to read 0x11, got 0x%02X", got)
	}
	m.Write(0xFDFF, 0x22)
	if got := m.Read(0xDDFF); got != 0x22 {
		t.Errorf("expected echo write to land in work RAM, got 0x%02X", got)
	}
}

func TestMMU_Unusable(t *testing.T) {
	m, _, _ := newTestMMU(t)

	for address := uint16(0xFEA0); address < 0xFF00; address++ {
		m.Write(address, 0x00)
		if got := m.Read(address); got != 0xFF {
			t.Errorf("0x%04X: expected 0xFF, got 0x%02X", address, got)
		}
	}
	// unregistered I/O
	if got := m.Read(0xFF03); got != 0xFF {
		t.Errorf("expected unregistered I/O to read 0xFF, got 0x%02X", got)
	}
}

func TestMMU_Cartridge(t *testing.T) {
	m, _, _ := newTestMMU(t)

	// writes to ROM are forwarded to the controller
	m.Write(0x2000, 0x05)
	if got := m.Read(0x4000); got != 5 {
		t.Errorf("expected bank 5, got %d", got)
	}
	if got := m.Read(0x0000); got != 0 {
		t.Errorf("expected bank 0, got %d", got)
	}

	m.Write(0xA000, 0x33)
	if got := m.Read(0xA000); got != 0xFF {
		t.Errorf("expected disabled RAM to read 0xFF, got 0x%02X", got)
	}
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x33)
	if got := m.Read(0xA000); got != 0x33 {
		t.Errorf("expected 0x33, got 0x%02X", got)
	}
}

func TestMMU_HardwareRegisters(t *testing.T) {
	m, regs, _ := newTestMMU(t)

	var ie uint8
	regs.RegisterHardware(types.IE, func(v uint8) { ie = v }, func() uint8 { return ie })
	m.Write(0xFFFF, 0x1F)
	if ie != 0x1F || m.Read(0xFFFF) != 0x1F {
		t.Errorf("expected IE to be dispatched to its handler")
	}
	// high RAM stops short of IE
	m.Write(0xFFFE, 0x99)
	if ie != 0x1F {
		t.Errorf("expected high RAM write not to reach IE")
	}
}

func TestMMU_VideoGate(t *testing.T) {
	m, _, _ := newTestMMU(t)
	g := &gate{vram: true, oam: true}
	m.AttachVideo(g)

	m.Write(0x8000, 0x12)
	m.Write(0xFE00, 0x34)

	g.vram, g.oam = false, false
	if got := m.Read(0x8000); got != 0xFF {
		t.Errorf("expected locked VRAM to read 0xFF, got 0x%02X", got)
	}
	if got := m.Read(0xFE00); got != 0xFF {
		t.Errorf("expected locked OAM to read 0xFF, got 0x%02X", got)
	}
	m.Write(0x8000, 0x00)
	m.Write(0xFE00, 0x00)

	g.vram, g.oam = true, true
	if m.VRAM()[0] != 0x12 || m.OAM()[0] != 0x34 {
		t.Errorf("expected locked writes to be dropped")
	}
}

func TestMMU_DMA(t *testing.T) {
	m, _, s := newTestMMU(t)
	for i := uint16(0); i < 0xA0; i++ {
		m.Write(0xC100+i, uint8(i))
	}

	m.Write(0xFF46, 0xC1)
	if got := m.Read(0xFF46); got != 0xC1 {
		t.Errorf("expected DMA to read 0xC1, got 0x%02X", got)
	}
	if m.DMAActive() {
		t.Errorf("expected transfer to start a machine cycle later")
	}
	s.Tick(4)
	if !m.DMAActive() {
		t.Fatalf("expected transfer to have started")
	}

	m.Tick(636)
	if got := m.Read(0xFE00); got != 0xFF {
		t.Errorf("expected OAM to be locked during transfer, got 0x%02X", got)
	}
	m.Tick(4)
	if m.DMAActive() {
		t.Errorf("expected transfer to finish after 640 cycles")
	}
	for i := uint16(0); i < 0xA0; i++ {
		if got := m.Read(0xFE00 + i); got != uint8(i) {
			t.Errorf("OAM 0x%02X: expected 0x%02X, got 0x%02X", i, i, got)
		}
	}
}

func TestMMU_DMAEcho(t *testing.T) {
	m, _, s := newTestMMU(t)
	m.Write(0xC000, 0xAB)

	// 0xE0 reads from work RAM
	m.Write(0xFF46, 0xE0)
	s.Tick(4)
	m.Tick(640)
	if got := m.OAM()[0]; got != 0xAB {
		t.Errorf("expected 0xAB, got 0x%02X", got)
	}
}

func TestMMU_BootROM(t *testing.T) {
	m, _, _ := newTestMMU(t)

	raw := make([]byte, boot.Size)
	for i := range raw {
		raw[i] = 0xB0
	}
	rom, err := boot.New(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.SetBootROM(rom)

	if got := m.Read(0x0000); got != 0xB0 {
		t.Errorf("expected boot ROM, got 0x%02X", got)
	}
	if got := m.Read(0x0100); got != 0x00 {
		t.Errorf("expected cartridge past 0xFF, got 0x%02X", got)
	}

	m.Write(0xFF50, 0x00)
	if !m.BootROMMapped() {
		t.Errorf("expected zero write to leave the boot ROM mapped")
	}
	m.Write(0xFF50, 0x01)
	if got := m.Read(0x0000); got != 0x00 {
		t.Errorf("expected cartridge after unmapping, got 0x%02X", got)
	}
	m.Write(0xFF50, 0x00)
	if m.BootROMMapped() {
		t.Errorf("expected boot ROM to stay unmapped")
	}

	m.Reset()
	if !m.BootROMMapped() {
		t.Errorf("expected reset to remap the boot ROM")
	}
}

func TestMMU_DecodeGap(t *testing.T) {
	m, _, _ := newTestMMU(t)
	m.pages[0x12] = regionNone

	if got := m.Read(0x1234); got != 0xFF {
		t.Errorf("expected 0xFF, got 0x%02X", got)
	}
	if !errors.Is(m.Err(), ErrAddressDecodeGap) {
		t.Errorf("expected ErrAddressDecodeGap, got %v", m.Err())
	}
}

func TestMMU_State(t *testing.T) {
	m, _, _ := newTestMMU(t)
	m.Write(0x8010, 0x01)
	m.Write(0xC010, 0x02)
	m.Write(0xFE10, 0x03)
	m.Write(0xFF90, 0x04)

	s := types.NewState()
	m.Save(s)

	n, _, _ := newTestMMU(t)
	n.Load(types.StateFromBytes(s.Bytes()))
	for address, expected := range map[uint16]uint8{0x8010: 1, 0xC010: 2, 0xFE10: 3, 0xFF90: 4} {
		if got := n.Read(address); got != expected {
			t.Errorf("0x%04X: expected 0x%02X, got 0x%02X", address, expected, got)
		}
	}
}

func TestMMU_CGBRegistersUnmapped(t *testing.T) {
	m, _, _ := newTestMMU(t)

	for _, address := range []uint16{0xFF4D, 0xFF4F, 0xFF55, 0xFF70} {
		m.Write(address, 0x01)
		if got := m.Read(address); got != 0xFF {
			t.Errorf("0x%04X: expected 0xFF, got 0x%02X", address, got)
		}
	}
	if m.SpeedSwitchArmed() {
		t.Errorf("expected no speed switch without the CGB registers")
	}
	// the second banks stay out of reach
	m.Write(0x8000, 0x12)
	m.Write(0xD000, 0x34)
	if m.VRAM()[0x2000] != 0 || m.wRAM[0x1000] != 0x34 {
		t.Errorf("expected writes to land in the first banks")
	}
}

func TestMMU_VRAMBanks(t *testing.T) {
	m, _, _ := newTestMMU(t)
	m.EnableCGB()

	m.Write(0x8123, 0x11)
	m.Write(0xFF4F, 0x01)
	if got := m.Read(0xFF4F); got != 0xFF {
		t.Errorf("expected VBK to read 0xFF, got 0x%02X", got)
	}
	if got := m.Read(0x8123); got != 0x00 {
		t.Errorf("expected bank 1 to be empty, got 0x%02X", got)
	}
	m.Write(0x8123, 0x22)
	if m.VRAM()[0x0123] != 0x11 || m.VRAM()[0x2123] != 0x22 {
		t.Errorf("expected banks to hold 0x11 & 0x22, got 0x%02X & 0x%02X", m.VRAM()[0x0123], m.VRAM()[0x2123])
	}
	m.Write(0xFF4F, 0xFE)
	if got := m.Read(0xFF4F); got != 0xFE {
		t.Errorf("expected VBK to read 0xFE, got 0x%02X", got)
	}
}

func TestMMU_WRAMBanks(t *testing.T) {
	m, _, _ := newTestMMU(t)
	m.EnableCGB()

	for bank := uint8(1); bank < 8; bank++ {
		m.Write(0xFF70, bank)
		m.Write(0xD000, bank)
	}
	m.Write(0xC000, 0xC0)

	tests := []struct {
		svbk     uint8
		expected uint8
	}{
		{0x00, 1}, // bank 0 selects bank 1
		{0x02, 2},
		{0x07, 7},
		{0x0B, 3}, // only 3 bits are used
	}
	for _, tt := range tests {
		m.Write(0xFF70, tt.svbk)
		if got := m.Read(0xD000); got != tt.expected {
			t.Errorf("SVBK 0x%02X: expected 0x%02X, got 0x%02X", tt.svbk, tt.expected, got)
		}
		if got := m.Read(0xF000); got != tt.expected {
			t.Errorf("SVBK 0x%02X: expected echo 0x%02X, got 0x%02X", tt.svbk, tt.expected, got)
		}
		if got := m.Read(0xC000); got != 0xC0 {
			t.Errorf("SVBK 0x%02X: expected fixed bank 0xC0, got 0x%02X", tt.svbk, got)
		}
	}
	m.Write(0xFF70, 0x02)
	if got := m.Read(0xFF70); got != 0xFA {
		t.Errorf("expected SVBK to read 0xFA, got 0x%02X", got)
	}

	// OAM DMA follows the selected bank
	m.Write(0xFF70, 0x05)
	m.Write(0xD000, 0x55)
	m.Write(0xFF46, 0xD0)
	s := m.dma.s
	s.Tick(4)
	m.Tick(640)
	if got := m.OAM()[0]; got != 0x55 {
		t.Errorf("expected DMA from bank 5, got 0x%02X", got)
	}
}

func TestMMU_SpeedSwitch(t *testing.T) {
	m, _, _ := newTestMMU(t)
	m.EnableCGB()

	if got := m.Read(0xFF4D); got != 0x7E {
		t.Errorf("expected KEY1 to read 0x7E, got 0x%02X", got)
	}
	m.Write(0xFF4D, 0xFF)
	if got := m.Read(0xFF4D); got != 0x7F || !m.SpeedSwitchArmed() {
		t.Fatalf("expected armed switch, got 0x%02X", got)
	}
	m.SwitchSpeed()
	if got := m.Read(0xFF4D); got != 0xFE || !m.DoubleSpeed() || m.SpeedSwitchArmed() {
		t.Errorf("expected double speed, got 0x%02X", got)
	}
	m.Write(0xFF4D, 0x01)
	m.SwitchSpeed()
	if got := m.Read(0xFF4D); got != 0x7E || m.DoubleSpeed() {
		t.Errorf("expected single speed, got 0x%02X", got)
	}
}

// lcd is a VideoGate that also reports the state of the LCD.
type lcd struct {
	gate
	enabled bool
	mode    uint8
}

func (l *lcd) Enabled() bool { return l.enabled }
func (l *lcd) Mode() uint8   { return l.mode }

func startHDMA(m *MMU, source, destination uint16, hdma5 uint8) {
	m.Write(0xFF51, uint8(source>>8))
	m.Write(0xFF52, uint8(source))
	m.Write(0xFF53, uint8(destination>>8))
	m.Write(0xFF54, uint8(destination))
	m.Write(0xFF55, hdma5)
}

func TestMMU_HDMA(t *testing.T) {
	t.Run("general purpose", func(t *testing.T) {
		m, _, _ := newTestMMU(t)
		m.EnableCGB()
		for i := uint16(0); i < 0x40; i++ {
			m.Write(0xC200+i, uint8(i)+1)
		}
		m.Write(0xFF4F, 0x01)

		// lower bits of the addresses are ignored
		startHDMA(m, 0xC20F, 0x9105, 0x03)
		for i := uint16(0); i < 0x40; i++ {
			if got := m.VRAM()[0x3100+i]; got != uint8(i)+1 {
				t.Fatalf("0x%04X: expected 0x%02X, got 0x%02X", 0x9100+i, uint8(i)+1, got)
			}
		}
		if got := m.Read(0xFF55); got != 0xFF {
			t.Errorf("expected HDMA5 to read 0xFF once done, got 0x%02X", got)
		}
		if got := m.HDMAStall(); got != 4*hdmaBlockCycles {
			t.Errorf("expected %d stall cycles, got %d", 4*hdmaBlockCycles, got)
		}
		if got := m.HDMAStall(); got != 0 {
			t.Errorf("expected stall to be taken once, got %d", got)
		}
	})
	t.Run("hblank", func(t *testing.T) {
		m, _, _ := newTestMMU(t)
		m.EnableCGB()
		v := &lcd{gate: gate{vram: true, oam: true}, enabled: true, mode: 3}
		m.AttachVideo(v)
		for i := uint16(0); i < 0x30; i++ {
			m.Write(0xC000+i, 0xA0+uint8(i))
		}

		startHDMA(m, 0xC000, 0x8000, 0x82)
		if got := m.Read(0xFF55); got != 0x02 {
			t.Errorf("expected 3 blocks pending, got 0x%02X", got)
		}
		if m.VRAM()[0] != 0 {
			t.Errorf("expected nothing to be copied before HBlank")
		}

		m.HBlank()
		if m.VRAM()[0x0F] != 0xAF || m.VRAM()[0x10] != 0 {
			t.Errorf("expected a single block after HBlank")
		}
		if got := m.Read(0xFF55); got != 0x01 {
			t.Errorf("expected 2 blocks pending, got 0x%02X", got)
		}

		// stopping leaves the remaining length readable
		m.Write(0xFF55, 0x00)
		if got := m.Read(0xFF55); got != 0x81 {
			t.Errorf("expected stopped transfer to read 0x81, got 0x%02X", got)
		}
		m.HBlank()
		if m.VRAM()[0x10] != 0 {
			t.Errorf("expected stopped transfer not to copy")
		}
	})
	t.Run("lcd off", func(t *testing.T) {
		m, _, _ := newTestMMU(t)
		m.EnableCGB()
		m.AttachVideo(&lcd{gate: gate{vram: true, oam: true}})
		m.Write(0xC000, 0x77)

		startHDMA(m, 0xC000, 0x8000, 0x81)
		if m.VRAM()[0] != 0x77 {
			t.Errorf("expected first block to be copied straight away")
		}
		m.HBlank()
		if got := m.Read(0xFF55); got != 0xFF {
			t.Errorf("expected transfer to be done, got 0x%02X", got)
		}
	})
}

func TestMMU_CGBState(t *testing.T) {
	m, _, _ := newTestMMU(t)
	m.EnableCGB()
	m.Write(0xFF4F, 0x01)
	m.Write(0xFF70, 0x03)
	m.Write(0x8000, 0x12)
	m.Write(0xD000, 0x34)

	s := types.NewState()
	m.Save(s)

	n, _, _ := newTestMMU(t)
	n.EnableCGB()
	n.Load(types.StateFromBytes(s.Bytes()))
	if n.Read(0x8000) != 0x12 || n.Read(0xD000) != 0x34 {
		t.Errorf("expected banks to be restored")
	}
}

func BenchmarkMMU_Read(b *testing.B) {
	rom := make([]byte, 32*1024)
	cartridge.FixChecksums(rom)
	cart, _ := cartridge.New(rom, nil)
	m := NewMMU(cart, &types.HardwareRegisters{}, scheduler.NewScheduler(), nil)
	for i := 0; i < b.N; i++ {
		m.Read(uint16(i))
	}
}
