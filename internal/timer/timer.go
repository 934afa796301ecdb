// Package timer provides an implementation of the Game Boy
// timer. It is used to generate interrupts at a specific
// frequency. The frequency can be configured using the
// types.TAC register.
package timer

import (
	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/types"
)

// bits holds the system counter bit that clocks TIMA for each
// clock select value of types.TAC.
//
//	00 = bit 9 (every 1024 cycles)
//	01 = bit 3 (every 16 cycles)
//	10 = bit 5 (every 64 cycles)
//	11 = bit 7 (every 256 cycles)
var bits = [4]uint16{512, 8, 32, 128}

// Controller is the timer controller. Internally it is a 16-bit
// counter incremented every cycle, of which types.DIV exposes the
// upper byte. TIMA is clocked by the falling edge of a selected
// counter bit ANDed with the enable bit of types.TAC, so anything
// that drops that signal (resetting the counter, disabling the
// timer, switching the selected bit) can clock TIMA as well.
type Controller struct {
	counter uint16

	tima uint8
	tma  uint8
	tac  uint8

	enabled  bool
	selected uint16

	// ticksSinceOverflow counts the cycles since TIMA overflowed,
	// TIMA holds 0 until it reaches 4 and is reloaded from TMA.
	overflow           bool
	ticksSinceOverflow uint8
	// reloading is set for the machine cycle in which TIMA was
	// reloaded, where writes to TIMA and TMA behave differently.
	reloading  bool
	reloadTick uint8

	irq *interrupts.Service
}

// NewController returns a new timer controller, registering its
// hardware registers in regs.
func NewController(regs *types.HardwareRegisters, irq *interrupts.Service) *Controller {
	c := &Controller{
		irq: irq,
	}
	c.Reset(0)

	regs.RegisterHardware(
		types.DIV,
		func(v uint8) {
			// any write resets the whole counter
			c.setCounter(0)
		}, func() uint8 {
			return uint8(c.counter >> 8)
		},
	)
	// writes land between CPU steps, so the overflow delay and the
	// reload cycle are resolved at instruction granularity rather
	// than on the exact cycle of the write
	regs.RegisterHardware(
		types.TIMA,
		func(v uint8) {
			// writes to TIMA are ignored during the cycle it
			// is reloading
			if c.reloading {
				return
			}
			// writing during the overflow delay cancels the reload
			c.tima = v
			c.overflow = false
			c.ticksSinceOverflow = 0
		}, func() uint8 {
			return c.tima
		},
	)
	regs.RegisterHardware(
		types.TMA,
		func(v uint8) {
			c.tma = v
			// if TMA is written the same cycle TIMA is reloading,
			// TIMA picks up the new value too
			if c.reloading {
				c.tima = v
			}
		}, func() uint8 {
			return c.tma
		},
	)
	regs.RegisterHardware(
		types.TAC,
		func(v uint8) {
			before := c.signal()

			c.tac = v & 0x07
			c.selected = bits[v&0b11]
			c.enabled = v&types.Bit2 != 0

			// disabling the timer, or selecting a bit that is
			// low, while the old bit was high clocks TIMA
			if before && !c.signal() {
				c.increment()
			}
		}, func() uint8 {
			return c.tac | 0xF8
		},
	)

	return c
}

// Reset returns the timer to its power on state, with the system
// counter set to counter.
func (c *Controller) Reset(counter uint16) {
	c.counter = counter
	c.tima, c.tma, c.tac = 0, 0, 0
	c.enabled = false
	c.selected = bits[0]
	c.overflow = false
	c.ticksSinceOverflow = 0
	c.reloading = false
	c.reloadTick = 0
}

// Tick advances the timer by the given number of cycles.
func (c *Controller) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		if c.reloading {
			c.reloadTick++
			if c.reloadTick == 4 {
				c.reloading = false
			}
		}

		if c.overflow {
			c.ticksSinceOverflow++

			// TIMA reads 0 for a full machine cycle, before it is
			// reloaded and the interrupt is requested
			if c.ticksSinceOverflow == 4 {
				c.tima = c.tma
				c.irq.Request(interrupts.TimerFlag)

				c.overflow = false
				c.ticksSinceOverflow = 0
				c.reloading = true
				c.reloadTick = 0
			}
		}

		c.setCounter(c.counter + 1)
	}
}

// Counter returns the internal system counter.
func (c *Controller) Counter() uint16 {
	return c.counter
}

// signal returns the input of the TIMA falling edge detector.
func (c *Controller) signal() bool {
	return c.enabled && c.counter&c.selected != 0
}

// setCounter sets the system counter, clocking TIMA on a
// falling edge of the selected bit.
func (c *Controller) setCounter(v uint16) {
	before := c.signal()
	c.counter = v
	if before && !c.signal() {
		c.increment()
	}
}

// increment increments TIMA, starting the overflow delay when
// it wraps around.
func (c *Controller) increment() {
	c.tima++
	if c.tima == 0 {
		c.overflow = true
		c.ticksSinceOverflow = 0
	}
}

var _ types.Stater = (*Controller)(nil)

// Load loads the state of the controller.
func (c *Controller) Load(s *types.State) {
	c.counter = s.Read16()
	c.tima = s.Read8()
	c.tma = s.Read8()
	c.tac = s.Read8()

	c.enabled = c.tac&types.Bit2 != 0
	c.selected = bits[c.tac&0b11]
	c.overflow = s.ReadBool()
	c.ticksSinceOverflow = s.Read8()
	c.reloading = s.ReadBool()
	c.reloadTick = s.Read8()
}

// Save saves the state of the controller.
func (c *Controller) Save(s *types.State) {
	s.Write16(c.counter)
	s.Write8(c.tima)
	s.Write8(c.tma)
	s.Write8(c.tac)

	s.WriteBool(c.overflow)
	s.Write8(c.ticksSinceOverflow)
	s.WriteBool(c.reloading)
	s.Write8(c.reloadTick)
}
