package mmu

import (
	"github.com/thelolagemann/dmgcore/internal/scheduler"
	"github.com/thelolagemann/dmgcore/internal/types"
)

// dma is the OAM DMA controller. Writing XX to types.DMA copies the 160
// bytes at XX00-XX9F into OAM, one byte every 4 cycles. The transfer
// begins a machine cycle after the write, and while it runs the CPU
// can't access OAM.
type dma struct {
	active bool
	timer  uint
	source uint16
	value  uint8

	m *MMU
	s *scheduler.Scheduler
}

func (d *dma) init(m *MMU, s *scheduler.Scheduler) {
	d.m = m
	d.s = s

	m.registers.RegisterHardware(
		types.DMA,
		func(v uint8) {
			d.value = v
			// a transfer already running continues until the new
			// one takes over
			d.s.ScheduleEvent(scheduler.DMAStart, 4)
		},
		func() uint8 {
			return d.value
		},
	)
	s.RegisterEvent(scheduler.DMAStart, d.start)
	d.reset()
}

func (d *dma) start() {
	d.active = true
	d.timer = 0
	d.source = uint16(d.value) << 8
}

func (d *dma) reset() {
	d.active = false
	d.timer = 0
	d.source = 0
	d.value = 0xFF
}

func (d *dma) tick(cycles int) {
	for i := 0; i < cycles && d.active; i++ {
		d.timer++

		// every 4 cycles, transfer a byte
		if d.timer%4 != 0 {
			continue
		}

		offset := uint16(d.timer-4) >> 2
		source := d.source + offset

		// sources past 0xDFFF read from work RAM, rather than
		// the echo, OAM or I/O
		if source >= 0xE000 {
			source &^= 0x2000
		}
		// write directly to OAM, as the transfer isn't restricted
		d.m.oam[offset] = d.m.dmaRead(source)

		// 160 bytes * 4 cycles = 640 cycles
		if d.timer >= 640 {
			d.active = false
			d.timer = 0
		}
	}
}

// dmaRead reads the source of a transfer, ignoring PPU restrictions.
func (m *MMU) dmaRead(address uint16) uint8 {
	switch {
	case address < 0x8000, address >= 0xA000 && address < 0xC000:
		return m.cart.Read(address)
	case address < 0xA000:
		return m.vRAM[m.vRAMBank+address-0x8000]
	default:
		return m.wRAM[m.wramIndex(address)]
	}
}

// DMAActive returns true while an OAM DMA transfer is running.
func (m *MMU) DMAActive() bool {
	return m.dma.active
}

func (d *dma) load(s *types.State) {
	d.active = s.ReadBool()
	d.timer = uint(s.Read16())
	d.source = s.Read16()
	d.value = s.Read8()
}

func (d *dma) save(s *types.State) {
	s.WriteBool(d.active)
	s.Write16(uint16(d.timer))
	s.Write16(d.source)
	s.Write8(d.value)
}
