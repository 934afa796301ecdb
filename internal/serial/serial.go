// Package serial provides the serial port of the Game Boy. No link
// cable is emulated, so only transfers driven by the internal clock
// complete, exchanging bits with the attached Device.
package serial

import (
	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/scheduler"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/utils"
)

const (
	// cyclesPerBit is the number of cycles it takes to shift a single
	// bit using the internal clock (8192 Hz).
	cyclesPerBit = 512
)

// Controller drives the serial port through types.SB and types.SC.
//
// SB is a shift register: on every clock pulse its top bit goes out to
// the device, and the bit coming back is shifted in at the bottom, so
// after 8 pulses the outgoing byte has been fully replaced by the
// incoming one.
type Controller struct {
	sb      uint8
	shifted uint8 // bits exchanged so far in this transfer

	// Master is set when this end drives the clock (SC bit 0).
	Master bool
	// Active is set while a transfer is in progress (SC bit 7).
	Active bool

	device Device

	irq *interrupts.Service
	s   *scheduler.Scheduler
}

// Attach plugs d into the serial port, replacing whatever was
// previously attached.
func (c *Controller) Attach(d Device) {
	c.device = d
}

// NewController returns a Controller with nothing plugged in, registering
// types.SB and types.SC in regs.
func NewController(regs *types.HardwareRegisters, irq *interrupts.Service, s *scheduler.Scheduler) *Controller {
	c := &Controller{
		device: nullDevice{},
		irq:    irq,
		s:      s,
	}
	regs.RegisterHardware(
		types.SB,
		func(v uint8) {
			c.sb = v
		}, func() uint8 {
			return c.sb
		},
	)
	regs.RegisterHardware(
		types.SC,
		func(v uint8) {
			c.Master = utils.Test(v, types.Bit0)
			c.Active = utils.Test(v, types.Bit7)
			c.shifted = 0

			// only the master drives the clock, a transfer using
			// the external clock waits forever
			if c.Active && c.Master {
				s.ScheduleEvent(scheduler.SerialBit, cyclesPerBit)
			} else {
				s.DescheduleEvent(scheduler.SerialBit)
			}
		}, func() uint8 {
			v := uint8(0x7E)
			if c.Active {
				v |= types.Bit7
			}
			if c.Master {
				v |= types.Bit0
			}
			return v
		},
	)
	s.RegisterEvent(scheduler.SerialBit, c.shift)

	return c
}

// Reset returns the controller to its power on state.
func (c *Controller) Reset() {
	c.sb, c.shifted = 0, 0
	c.Master, c.Active = false, false
}

// shift exchanges a single bit with the attached device, requesting
// an interrupt once all 8 bits have been transferred.
func (c *Controller) shift() {
	if !c.Master || !c.Active {
		return
	}

	in := c.device.Send()
	c.device.Receive(utils.Test(c.sb, types.Bit7))

	c.sb <<= 1
	if in {
		c.sb |= 1
	}

	if c.shifted++; c.shifted < 8 {
		c.s.ScheduleEvent(scheduler.SerialBit, cyclesPerBit)
		return
	}
	c.shifted = 0
	c.Active = false
	c.irq.Request(interrupts.SerialFlag)
}

var _ types.Stater = (*Controller)(nil)

// Load implements the types.Stater interface.
func (c *Controller) Load(s *types.State) {
	c.sb = s.Read8()
	c.shifted = s.Read8()
	c.Active = s.ReadBool()
	c.Master = s.ReadBool()
}

// Save implements the types.Stater interface.
func (c *Controller) Save(s *types.State) {
	s.Write8(c.sb)
	s.Write8(c.shifted)
	s.WriteBool(c.Active)
	s.WriteBool(c.Master)
}
