package cpu

import (
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/utils"
)

var incDecBit = [2]uint16{0x0001, 0xFFFF}

// decode decodes and executes a single instruction. Most of the
// instruction set is decoded from the bit fields of the opcode:
//
//	00 000 000
//	^^ ^^^ ^^^
//	x   y   z
//
// where y is further split into p (bits 5-4) and q (bit 3).
func (c *CPU) decode(instr uint8) error {
	switch instr { // handle instructions that don't fit the decoding
	case 0x00: // NOP
	case 0x08: // LD (a16), SP
		address := c.readOperand16()
		c.write(address, uint8(c.SP))
		c.write(address+1, uint8(c.SP>>8))
	case 0x10: // STOP
		// STOP is a 2 byte opcode, and resets DIV
		c.PC++
		c.b.Write(types.DIV, 0)

		// with a speed switch armed, the CPU carries on at the
		// other speed instead of stopping
		if s, ok := c.b.(SpeedSwitcher); ok && s.SpeedSwitchArmed() {
			s.SwitchSpeed()
			break
		}
		c.mode = ModeStop
	case 0x18: // JR s8
		c.jumpRelative(true)
	case 0x76: // HALT
		if !c.IME && c.irq.Pending() {
			c.mode = ModeHaltBug
		} else {
			c.mode = ModeHalt
		}
	case 0xC3: // JP a16
		c.jumpAbsolute(true)
	case 0xC9: // RET
		c.ret()
	case 0xCB: // CB Prefix
		c.decodeCB(c.readOperand())
	case 0xCD: // CALL a16
		c.call(true)
	case 0xD9: // RETI
		c.IME = true
		c.ret()
	case 0xE0: // LDH (a8), A
		c.write(0xFF00+uint16(c.readOperand()), c.A)
	case 0xE2: // LD (C), A
		c.write(0xFF00+uint16(c.C), c.A)
	case 0xE8: // ADD SP, s8
		c.SP = c.addSPSigned()
		c.tick()
		c.tick()
	case 0xE9: // JP HL
		c.PC = c.HL.Uint16()
	case 0xEA: // LD (a16), A
		c.write(c.readOperand16(), c.A)
	case 0xF0: // LDH A, (a8)
		c.A = c.read(0xFF00 + uint16(c.readOperand()))
	case 0xF2: // LD A, (C)
		c.A = c.read(0xFF00 + uint16(c.C))
	case 0xF3: // DI
		c.IME = false
		c.imePending = false
	case 0xF8: // LD HL, SP+s8
		c.HL.SetUint16(c.addSPSigned())
		c.tick()
	case 0xF9: // LD SP, HL
		c.SP = c.HL.Uint16()
		c.tick()
	case 0xFA: // LD A, (a16)
		c.A = c.read(c.readOperand16())
	case 0xFB: // EI
		c.imePending = true
	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		return ErrUnimplementedOpcode
	default:
		switch instr >> 6 & 0x3 {
		case 0: // 0x00 - 0x3F
			c.decodeBlock0(instr)
		case 1: // 0x40 - 0x7F LD r, r'
			c.setRegister(instr>>3, c.getRegister(instr))
		case 2: // 0x80 - 0xBF ALU A, r
			c.decodeALU(instr, c.getRegister(instr))
		case 3: // 0xC0 - 0xFF
			c.decodeBlock3(instr)
		}
	}

	return nil
}

// decodeBlock0 decodes the opcodes in 0x00 - 0x3F.
func (c *CPU) decodeBlock0(instr uint8) {
	switch instr & 0x7 {
	case 0: // JR cc, s8
		c.jumpRelative(c.condition(instr))
	case 1:
		if instr>>3&1 == 1 { // ADD HL, rr
			c.addHL(c.getRegisterPairValue(instr))
			c.tick()
		} else { // LD rr, d16
			c.setRegisterPairValue(instr, c.readOperand16())
		}
	case 2:
		address := c.getIndirectAddress(instr)
		if instr>>3&1 == 1 { // LD A, (rr)
			c.A = c.read(address)
		} else { // LD (rr), A
			c.write(address, c.A)
		}
	case 3: // INC/DEC rr
		c.setRegisterPairValue(instr, c.getRegisterPairValue(instr)+incDecBit[instr>>3&1])
		c.tick()
	case 4: // INC r
		c.setRegister(instr>>3, c.increment(c.getRegister(instr>>3)))
	case 5: // DEC r
		c.setRegister(instr>>3, c.decrement(c.getRegister(instr>>3)))
	case 6: // LD r, d8
		c.setRegister(instr>>3, c.readOperand())
	case 7:
		switch instr >> 3 & 0x7 {
		case 0, 1, 2, 3: // RLCA, RRCA, RLA, RRA
			c.A = c.rotate(instr>>3, c.A)
			c.F &^= flagZero
		case 4: // DAA
			c.daa()
		case 5: // CPL
			c.A = ^c.A
			c.setFlags(c.isFlagSet(flagZero), true, true, c.isFlagSet(flagCarry))
		case 6: // SCF
			c.setFlags(c.isFlagSet(flagZero), false, false, true)
		case 7: // CCF
			c.setFlags(c.isFlagSet(flagZero), false, false, !c.isFlagSet(flagCarry))
		}
	}
}

// decodeBlock3 decodes the opcodes in 0xC0 - 0xFF that follow the
// decoding.
func (c *CPU) decodeBlock3(instr uint8) {
	switch instr & 0x7 {
	case 0: // RET cc
		c.tick()
		if c.condition(instr) {
			c.ret()
		}
	case 1: // POP rr
		high, low := c.pop()
		c.setStackPair(instr, high, low)
	case 2: // JP cc, a16
		c.jumpAbsolute(c.condition(instr))
	case 4: // CALL cc, a16
		c.call(c.condition(instr))
	case 5: // PUSH rr
		c.tick()
		c.push(c.getStackPair(instr))
	case 6: // ALU A, d8
		c.decodeALU(instr, c.readOperand())
	case 7: // RST
		c.tick()
		c.push(utils.Uint16ToBytes(c.PC))
		c.PC = uint16(instr & 0x38)
	}
}

// decodeCB decodes a CB-prefixed instruction.
//
//	00 000 000
//	^^ ^^^ ^^^
//	op bit reg
func (c *CPU) decodeCB(instr uint8) {
	val := c.getRegister(instr)

	switch instr >> 6 & 0x3 {
	case 0: // rotate, shift & swap
		val = c.rotate(instr>>3, val)
	case 1: // BIT
		c.bit(instr>>3&0x7, val)
		return // BIT doesn't write back
	case 2: // RES
		val &^= 1 << (instr >> 3 & 0x7)
	case 3: // SET
		val |= 1 << (instr >> 3 & 0x7)
	}

	c.setRegister(instr, val)
}

// decodeALU decodes an ALU instruction, performing various maths on the
// A register.
func (c *CPU) decodeALU(instr, n uint8) {
	switch instr >> 3 & 0x7 {
	case 0: // ADD
		c.add(n, false)
	case 1: // ADC
		c.add(n, true)
	case 2: // SUB
		c.A = c.subtract(n, false)
	case 3: // SBC
		c.A = c.subtract(n, true)
	case 4: // AND
		c.and(n)
	case 5: // XOR
		c.xor(n)
	case 6: // OR
		c.or(n)
	case 7: // CP
		c.subtract(n, false)
	}
}

// jumpRelative reads a signed offset, and adds it to PC if cond is met.
func (c *CPU) jumpRelative(cond bool) {
	offset := int8(c.readOperand())
	if cond {
		c.PC = uint16(int16(c.PC) + int16(offset))
		c.tick()
	}
}

// jumpAbsolute reads an address, and jumps to it if cond is met.
func (c *CPU) jumpAbsolute(cond bool) {
	address := c.readOperand16()
	if cond {
		c.PC = address
		c.tick()
	}
}

// call reads an address, and if cond is met pushes PC to the
// stack before jumping to it.
func (c *CPU) call(cond bool) {
	address := c.readOperand16()
	if cond {
		c.tick()
		c.push(utils.Uint16ToBytes(c.PC))
		c.PC = address
	}
}

// ret pops PC from the stack.
func (c *CPU) ret() {
	c.PC = utils.BytesToUint16(c.pop())
	c.tick()
}

// getRegister returns the value of the register at index reg&7,
// reading (HL) from the bus for index 6.
func (c *CPU) getRegister(reg uint8) uint8 {
	reg &= 0x7
	if reg == 6 {
		return c.read(c.HL.Uint16())
	}
	return *c.registerPointers[reg]
}

// setRegister sets the register at index reg&7, writing (HL) to
// the bus for index 6.
func (c *CPU) setRegister(reg, value uint8) {
	reg &= 0x7
	if reg == 6 {
		c.write(c.HL.Uint16(), value)
		return
	}
	*c.registerPointers[reg] = value
}

// condition returns the condition of the flag specified by the
// given instruction (NZ, Z, NC, C).
func (c *CPU) condition(instr uint8) bool {
	var f bool
	switch instr >> 4 & 1 {
	case 0:
		f = c.isFlagSet(flagZero)
	case 1:
		f = c.isFlagSet(flagCarry)
	}

	if instr>>3&1 == 0 {
		f = !f
	}

	return f
}

// getRegisterPairValue returns the value of the register pair (BC,
// DE, HL, SP) specified by bits 5-4 of the given instruction.
func (c *CPU) getRegisterPairValue(instr uint8) uint16 {
	switch instr >> 4 & 0x3 {
	case 0:
		return c.BC.Uint16()
	case 1:
		return c.DE.Uint16()
	case 2:
		return c.HL.Uint16()
	default:
		return c.SP
	}
}

// setRegisterPairValue sets the register pair (BC, DE, HL, SP)
// specified by bits 5-4 of the given instruction.
func (c *CPU) setRegisterPairValue(instr uint8, value uint16) {
	switch instr >> 4 & 0x3 {
	case 0:
		c.BC.SetUint16(value)
	case 1:
		c.DE.SetUint16(value)
	case 2:
		c.HL.SetUint16(value)
	default:
		c.SP = value
	}
}

// getIndirectAddress returns the address used by LD (rr), A and
// LD A, (rr), which is one of BC, DE, HL+ or HL-.
func (c *CPU) getIndirectAddress(instr uint8) uint16 {
	switch instr >> 4 & 0x3 {
	case 0:
		return c.BC.Uint16()
	case 1:
		return c.DE.Uint16()
	case 2:
		hl := c.HL.Uint16()
		c.HL.SetUint16(hl + 1)
		return hl
	default:
		hl := c.HL.Uint16()
		c.HL.SetUint16(hl - 1)
		return hl
	}
}

// getStackPair returns the register pair (BC, DE, HL, AF) pushed by
// the given instruction.
func (c *CPU) getStackPair(instr uint8) (high, low uint8) {
	switch instr >> 4 & 0x3 {
	case 0:
		return c.B, c.C
	case 1:
		return c.D, c.E
	case 2:
		return c.H, c.L
	default:
		return c.A, c.F
	}
}

// setStackPair sets the register pair (BC, DE, HL, AF) popped by the
// given instruction. The lower nibble of F is always 0.
func (c *CPU) setStackPair(instr, high, low uint8) {
	switch instr >> 4 & 0x3 {
	case 0:
		c.B, c.C = high, low
	case 1:
		c.D, c.E = high, low
	case 2:
		c.H, c.L = high, low
	default:
		c.A, c.F = high, low&0xF0
	}
}
