// Package cpu implements the Sharp SM83 CPU of the Game Boy.
package cpu

import (
	"github.com/pkg/errors"
	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
	"github.com/thelolagemann/dmgcore/pkg/utils"
)

const (
	// ClockSpeed is the clock speed of the CPU.
	ClockSpeed = 4194304
)

type mode = uint8

const (
	// ModeNormal is the normal CPU mode.
	ModeNormal mode = iota
	// ModeHalt is the halt CPU mode, entered by HALT. The CPU stops
	// fetching instructions until an interrupt is pending.
	ModeHalt
	// ModeStop is the stop CPU mode, entered by STOP. The CPU stops
	// fetching instructions until a joypad line goes low.
	ModeStop
	// ModeHaltBug is entered when HALT is executed with IME disabled
	// and an interrupt already pending. The CPU doesn't halt, but
	// fails to increment PC after the next fetch, so the byte
	// following HALT is read twice.
	ModeHaltBug
)

// Bus is the memory the CPU executes from. Every access costs the CPU
// a machine cycle (4 cycles).
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// SpeedSwitcher is implemented by buses of machines that can run at
// double speed, which STOP switches to and from once armed.
type SpeedSwitcher interface {
	SpeedSwitchArmed() bool
	SwitchSpeed()
}

// CPU represents the Gameboy CPU. It is responsible for executing instructions.
//
// The CPU doesn't advance any other component itself. Step returns the
// number of cycles the instruction took, and the caller is expected to
// advance the rest of the system by that amount before calling
// CheckInterrupts and stepping again.
type CPU struct {
	// PC is the program counter, it points to the next instruction to be executed.
	PC uint16
	// SP is the stack pointer, it points to the top of the stack.
	SP uint16
	// Registers contains the 8-bit registers, as well as the 16-bit register pairs.
	Registers

	// IME is the interrupt master enable.
	IME bool
	// imePending is set by EI, enabling IME once the next
	// instruction has been executed.
	imePending bool
	// dispatch is set by CheckInterrupts when an interrupt is
	// to be serviced on the next Step.
	dispatch bool

	mode   mode
	cycles int

	// Debug enables tracing of every executed instruction.
	Debug bool

	b   Bus
	irq *interrupts.Service
	log log.Logger
}

// NewCPU creates a new CPU executing from the given Bus, and servicing
// the interrupts requested in irq.
func NewCPU(b Bus, irq *interrupts.Service, l log.Logger) *CPU {
	if l == nil {
		l = log.NewNullLogger()
	}
	c := &CPU{
		b:   b,
		irq: irq,
		log: l,
	}
	c.Registers.init()

	return c
}

// Reset clears every register, as if the CPU had just been powered on.
func (c *CPU) Reset() {
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = 0, 0, 0, 0, 0, 0, 0, 0
	c.PC, c.SP = 0, 0
	c.IME, c.imePending, c.dispatch = false, false, false
	c.mode = ModeNormal
}

// Mode returns the current mode of the CPU.
func (c *CPU) Mode() mode {
	return c.mode
}

// Halted returns true if the CPU is halted or stopped, and isn't
// fetching instructions.
func (c *CPU) Halted() bool {
	return c.mode == ModeHalt || c.mode == ModeStop
}

// Step executes a single instruction, or services an interrupt if one
// was found by CheckInterrupts, and returns the number of cycles it
// took. While halted or stopped, a step takes 4 cycles and does nothing.
//
// An error is returned when an unimplemented opcode is decoded, in which
// case PC is left pointing at the opcode.
func (c *CPU) Step() (int, error) {
	c.cycles = 0

	if c.dispatch {
		c.serviceInterrupt()
		return c.cycles, nil
	}

	if c.mode == ModeHalt || c.mode == ModeStop {
		c.tick()
		return c.cycles, nil
	}

	// EI takes effect after the instruction following it, which as
	// interrupts are only checked between steps, is the same as
	// enabling IME before it runs
	if c.imePending {
		c.IME = true
		c.imePending = false
	}

	pc := c.PC
	opcode := c.fetch()
	if c.Debug {
		c.trace(pc, opcode)
	}

	if err := c.decode(opcode); err != nil {
		c.PC = pc
		return c.cycles, errors.Wrapf(err, "opcode 0x%02X at 0x%04X", opcode, pc)
	}

	return c.cycles, nil
}

// CheckInterrupts wakes the CPU from HALT and STOP, and arranges for
// the highest priority pending interrupt to be serviced on the next
// Step, if IME is enabled. It should be called after every Step, once
// the rest of the system has caught up.
func (c *CPU) CheckInterrupts() {
	if c.mode == ModeStop {
		// only the joypad can bring the CPU out of STOP
		if c.irq.Flag&interrupts.JoypadFlag == 0 {
			return
		}
		c.mode = ModeNormal
	}

	if !c.irq.Pending() {
		return
	}

	// HALT exits as soon as an interrupt is pending, regardless of IME
	if c.mode == ModeHalt {
		c.mode = ModeNormal
	}
	if c.IME {
		c.dispatch = true
	}
}

// serviceInterrupt pushes PC to the stack and jumps to the vector of
// the highest priority pending interrupt, which takes 5 machine cycles.
func (c *CPU) serviceInterrupt() {
	c.dispatch = false
	c.IME = false

	c.tick()
	c.tick()

	high, low := utils.Uint16ToBytes(c.PC)
	c.SP--
	c.write(c.SP, high)

	// the upper byte may have been pushed to IE, so the vector is
	// only decided now. If that cancelled every pending interrupt,
	// execution continues at 0x0000
	vector := c.irq.Vector()

	c.SP--
	c.write(c.SP, low)
	c.tick()

	c.PC = vector
}

// tick consumes a machine cycle without accessing the bus.
func (c *CPU) tick() {
	c.cycles += 4
}

// read reads a byte from the bus.
func (c *CPU) read(address uint16) uint8 {
	c.tick()
	return c.b.Read(address)
}

// write writes a byte to the bus.
func (c *CPU) write(address uint16, value uint8) {
	c.tick()
	c.b.Write(address, value)
}

// fetch reads the opcode at PC.
func (c *CPU) fetch() uint8 {
	opcode := c.read(c.PC)
	if c.mode == ModeHaltBug {
		c.mode = ModeNormal
	} else {
		c.PC++
	}
	return opcode
}

// readOperand reads the next operand from memory.
func (c *CPU) readOperand() uint8 {
	value := c.read(c.PC)
	c.PC++
	return value
}

// readOperand16 reads the next two operands as a little-endian uint16.
func (c *CPU) readOperand16() uint16 {
	return uint16(c.readOperand()) | uint16(c.readOperand())<<8
}

func (c *CPU) push(high, low uint8) {
	c.SP--
	c.write(c.SP, high)
	c.SP--
	c.write(c.SP, low)
}

func (c *CPU) pop() (high, low uint8) {
	low = c.read(c.SP)
	c.SP++
	high = c.read(c.SP)
	c.SP++
	return high, low
}

// trace logs the instruction about to be executed, along with the
// register file before execution.
func (c *CPU) trace(pc uint16, opcode uint8) {
	c.log.Debugf(
		"PC: %04X OP: %02X A: %02X F: %02X B: %02X C: %02X D: %02X E: %02X H: %02X L: %02X SP: %04X IME: %t",
		pc, opcode, c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L, c.SP, c.IME,
	)
}

var _ types.Stater = (*CPU)(nil)

// Load loads the state of the CPU.
func (c *CPU) Load(s *types.State) {
	c.A = s.Read8()
	c.F = s.Read8()
	c.B = s.Read8()
	c.C = s.Read8()
	c.D = s.Read8()
	c.E = s.Read8()
	c.H = s.Read8()
	c.L = s.Read8()
	c.SP = s.Read16()
	c.PC = s.Read16()
	c.IME = s.ReadBool()
	c.imePending = s.ReadBool()
	c.dispatch = s.ReadBool()
	c.mode = s.Read8()
}

// Save saves the state of the CPU.
func (c *CPU) Save(s *types.State) {
	s.Write8(c.A)
	s.Write8(c.F)
	s.Write8(c.B)
	s.Write8(c.C)
	s.Write8(c.D)
	s.Write8(c.E)
	s.Write8(c.H)
	s.Write8(c.L)
	s.Write16(c.SP)
	s.Write16(c.PC)
	s.WriteBool(c.IME)
	s.WriteBool(c.imePending)
	s.WriteBool(c.dispatch)
	s.Write8(c.mode)
}
