package cpu

import "github.com/thelolagemann/dmgcore/internal/types"

const (
	flagZero      = types.Bit7
	flagSubtract  = types.Bit6
	flagHalfCarry = types.Bit5
	flagCarry     = types.Bit4
)

// Registers holds the 8-bit registers of the CPU, and the register
// pairs they form.
type Registers struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8

	AF types.RegisterPair
	BC types.RegisterPair
	DE types.RegisterPair
	HL types.RegisterPair

	// registerPointers maps the 3-bit register index used by the
	// opcodes to a register. Index 6 is (HL), which has to go
	// through the bus.
	registerPointers [8]*uint8
}

func (r *Registers) init() {
	r.AF = types.RegisterPair{High: &r.A, Low: &r.F}
	r.BC = types.RegisterPair{High: &r.B, Low: &r.C}
	r.DE = types.RegisterPair{High: &r.D, Low: &r.E}
	r.HL = types.RegisterPair{High: &r.H, Low: &r.L}
	r.registerPointers = [8]*uint8{&r.B, &r.C, &r.D, &r.E, &r.H, &r.L, nil, &r.A}
}

// setFlags sets the 4 flags of the F register at once, clearing
// the unused lower nibble.
func (r *Registers) setFlags(zero, subtract, halfCarry, carry bool) {
	r.F = 0
	if zero {
		r.F |= flagZero
	}
	if subtract {
		r.F |= flagSubtract
	}
	if halfCarry {
		r.F |= flagHalfCarry
	}
	if carry {
		r.F |= flagCarry
	}
}

// isFlagSet returns true if the given flag is set.
func (r *Registers) isFlagSet(flag uint8) bool {
	return r.F&flag != 0
}

// carry returns the carry flag as a 0 or 1.
func (r *Registers) carry() uint8 {
	return r.F >> 4 & 1
}
