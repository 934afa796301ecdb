package cartridge

import (
	"encoding/binary"

	"github.com/thelolagemann/dmgcore/internal/types"
)

const (
	// cyclesPerSecond is the rate the clock crystal is emulated at.
	cyclesPerSecond = 4194304
	// rtcStateSize is the size of the buffer returned by rtc.bytes: 5
	// live registers, 5 latched registers and the sub-second counter.
	rtcStateSize = 5 + 5 + 8
)

const (
	rtcS  = 0x08 // Seconds   0-59
	rtcM  = 0x09 // Minutes   0-59
	rtcH  = 0x0A // Hours     0-23
	rtcDL = 0x0B // Lower 8 bits of the day counter
	rtcDH = 0x0C // Bit 0 day counter bit 8, bit 6 halt, bit 7 day carry
)

// rtc is the real time clock of an MBC3. It keeps time from emulated
// cycles rather than the host clock, so it stays deterministic.
type rtc struct {
	// live registers, indexed by register - rtcS
	regs [5]uint8
	// latched registers, which are what the game reads
	latched [5]uint8
	// cycles elapsed in the current second
	cycles uint64
}

func (r *rtc) halted() bool {
	return r.regs[rtcDH-rtcS]&types.Bit6 != 0
}

func (r *rtc) tick(cycles int) {
	if r.halted() {
		return
	}

	r.cycles += uint64(cycles)
	for r.cycles >= cyclesPerSecond {
		r.cycles -= cyclesPerSecond
		r.advance()
	}
}

// advance advances the clock by a second. Registers written with out
// of range values count up to their bit width and wrap without
// carrying, as the hardware does.
func (r *rtc) advance() {
	s, m, h := &r.regs[0], &r.regs[1], &r.regs[2]

	*s = (*s + 1) & 0x3F
	if *s != 60 {
		return
	}
	*s = 0

	*m = (*m + 1) & 0x3F
	if *m != 60 {
		return
	}
	*m = 0

	*h = (*h + 1) & 0x1F
	if *h != 24 {
		return
	}
	*h = 0

	dh := r.regs[4]
	days := uint16(r.regs[3]) | uint16(dh&types.Bit0)<<8
	days++
	if days == 512 {
		days = 0
		dh |= types.Bit7 // carry stays set until cleared by the game
	}
	r.regs[3] = uint8(days)
	r.regs[4] = dh&^types.Bit0 | uint8(days>>8)&types.Bit0
}

func (r *rtc) latchRegisters() {
	r.latched = r.regs
}

func (r *rtc) read(register uint8) uint8 {
	v := r.latched[register-rtcS]
	switch register {
	case rtcS, rtcM:
		return v | 0xC0
	case rtcH:
		return v | 0xE0
	case rtcDH:
		return v | 0x3E
	}
	return v
}

func (r *rtc) write(register uint8, value uint8) {
	switch register {
	case rtcS:
		value &= 0x3F
		// writing the seconds resets the sub-second counter
		r.cycles = 0
	case rtcM:
		value &= 0x3F
	case rtcH:
		value &= 0x1F
	case rtcDH:
		value &= 0xC1
	}
	r.regs[register-rtcS] = value
	// the write is visible without re-latching
	r.latched[register-rtcS] = value
}

func (r *rtc) bytes() []byte {
	b := make([]byte, rtcStateSize)
	copy(b[0:5], r.regs[:])
	copy(b[5:10], r.latched[:])
	binary.LittleEndian.PutUint64(b[10:], r.cycles)
	return b
}

func (r *rtc) load(b []byte) {
	copy(r.regs[:], b[0:5])
	copy(r.latched[:], b[5:10])
	r.cycles = binary.LittleEndian.Uint64(b[10:]) % cyclesPerSecond
}
