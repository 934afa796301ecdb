package cpu

import "github.com/thelolagemann/dmgcore/internal/types"

// add adds n, and the carry flag if withCarry is set, to the A Register.
//
//	ADD A, n
//	ADC A, n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) add(n uint8, withCarry bool) {
	var carry uint8
	if withCarry {
		carry = c.carry()
	}
	sum := uint16(c.A) + uint16(n) + uint16(carry)
	c.setFlags(uint8(sum) == 0, false, c.A&0xF+n&0xF+carry > 0xF, sum > 0xFF)
	c.A = uint8(sum)
}

// subtract subtracts n, and the carry flag if withCarry is set, from
// the A Register, returning the result without storing it.
//
//	SUB n
//	SBC A, n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Set if borrow.
func (c *CPU) subtract(n uint8, withCarry bool) uint8 {
	var carry int
	if withCarry {
		carry = int(c.carry())
	}
	diff := int(c.A) - int(n) - carry
	c.setFlags(uint8(diff) == 0, true, int(c.A&0xF)-int(n&0xF)-carry < 0, diff < 0)
	return uint8(diff)
}

// and performs a bitwise AND operation on n and the A Register.
//
//	AND n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set.
//	C - Reset.
func (c *CPU) and(n uint8) {
	c.A &= n
	c.setFlags(c.A == 0, false, true, false)
}

// or performs a bitwise OR operation on n and the A Register.
//
//	OR n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) or(n uint8) {
	c.A |= n
	c.setFlags(c.A == 0, false, false, false)
}

// xor performs a bitwise XOR operation on n and the A Register.
//
//	XOR n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) xor(n uint8) {
	c.A ^= n
	c.setFlags(c.A == 0, false, false, false)
}

// increment increments n by 1.
//
//	INC n
//	n = A, B, C, D, E, H, L, (HL)
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Not affected.
func (c *CPU) increment(n uint8) uint8 {
	c.setFlags(n+1 == 0, false, n&0xF == 0xF, c.isFlagSet(flagCarry))
	return n + 1
}

// decrement decrements n by 1.
//
//	DEC n
//	n = A, B, C, D, E, H, L, (HL)
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Not affected.
func (c *CPU) decrement(n uint8) uint8 {
	c.setFlags(n-1 == 0, true, n&0xF == 0, c.isFlagSet(flagCarry))
	return n - 1
}

// addHL adds n to the HL register pair.
//
//	ADD HL, n
//	n = BC, DE, HL, SP
//
// Flags affected:
//
//	Z - Not affected.
//	N - Reset.
//	H - Set if carry from bit 11.
//	C - Set if carry from bit 15.
func (c *CPU) addHL(n uint16) {
	hl := c.HL.Uint16()
	sum := uint32(hl) + uint32(n)
	c.setFlags(c.isFlagSet(flagZero), false, hl&0xFFF+n&0xFFF > 0xFFF, sum > 0xFFFF)
	c.HL.SetUint16(uint16(sum))
}

// addSPSigned reads a signed operand and returns its sum with SP.
//
//	ADD SP, e
//	LD HL, SP+e
//
// Flags affected:
//
//	Z - Reset.
//	N - Reset.
//	H - Set if carry from bit 3 of the lower byte.
//	C - Set if carry from bit 7 of the lower byte.
func (c *CPU) addSPSigned() uint16 {
	e := c.readOperand()
	c.setFlags(false, false, c.SP&0xF+uint16(e&0xF) > 0xF, c.SP&0xFF+uint16(e) > 0xFF)
	return c.SP + uint16(int8(e))
}

// daa adjusts the A Register so that it holds the correct binary
// coded decimal representation of the previous addition or
// subtraction.
//
//	DAA
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Not affected.
//	H - Reset.
//	C - Set or reset according to operation.
func (c *CPU) daa() {
	carry := c.isFlagSet(flagCarry)
	if !c.isFlagSet(flagSubtract) {
		if carry || c.A > 0x99 {
			c.A += 0x60
			carry = true
		}
		if c.isFlagSet(flagHalfCarry) || c.A&0xF > 0x9 {
			c.A += 0x06
		}
	} else {
		if carry {
			c.A -= 0x60
		}
		if c.isFlagSet(flagHalfCarry) {
			c.A -= 0x06
		}
	}
	c.setFlags(c.A == 0, c.isFlagSet(flagSubtract), false, carry)
}

// rotate performs one of the rotate and shift operations selected by op
// on n. The accumulator variants (RLCA, RRCA, RLA, RRA) always reset the
// zero flag.
//
//	RLC n, RRC n, RL n, RR n, SLA n, SRA n, SWAP n, SRL n
//	n = A, B, C, D, E, H, L, (HL)
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains the bit shifted out, reset by SWAP.
func (c *CPU) rotate(op, n uint8) uint8 {
	var result, out uint8
	switch op & 0x7 {
	case 0: // RLC
		result, out = n<<1|n>>7, n>>7
	case 1: // RRC
		result, out = n>>1|n<<7, n&types.Bit0
	case 2: // RL
		result, out = n<<1|c.carry(), n>>7
	case 3: // RR
		result, out = n>>1|c.carry()<<7, n&types.Bit0
	case 4: // SLA
		result, out = n<<1, n>>7
	case 5: // SRA
		result, out = n&types.Bit7|n>>1, n&types.Bit0
	case 6: // SWAP
		result = n<<4 | n>>4
	case 7: // SRL
		result, out = n>>1, n&types.Bit0
	}
	c.setFlags(result == 0, false, false, out == 1)
	return result
}

// bit tests bit b of n.
//
//	BIT b, n
//	b = 0 - 7, n = A, B, C, D, E, H, L, (HL)
//
// Flags affected:
//
//	Z - Set if bit b of n is 0.
//	N - Reset.
//	H - Set.
//	C - Not affected.
func (c *CPU) bit(b, n uint8) {
	c.setFlags(n&(1<<b) == 0, false, true, c.isFlagSet(flagCarry))
}
