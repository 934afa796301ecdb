// Package interrupts provides the interrupt request and enable
// registers shared by every component of the machine.
package interrupts

import (
	"github.com/thelolagemann/dmgcore/internal/types"
)

// Request bits, in priority order. The vector of each is
// 0x0040 + 8 * its bit number.
const (
	VBlankFlag = types.Bit0 // entering line 144
	LCDFlag    = types.Bit1 // rising edge of the STAT line
	TimerFlag  = types.Bit2 // TIMA reload after overflow
	SerialFlag = types.Bit3 // 8 bits shifted
	JoypadFlag = types.Bit4 // a selected P1 line going low
)

// Service holds the interrupt request (types.IF) and interrupt enable
// (types.IE) registers. Components request interrupts by setting bits
// in Flag through Request, and the CPU services them in priority
// order, lowest bit first.
//
// The master enable (IME) lives in the CPU, and is not part of the
// Service.
type Service struct {
	Flag   uint8 // types.IF
	Enable uint8 // types.IE
}

// NewService returns a new Service, registering IF and IE
// in regs.
func NewService(regs *types.HardwareRegisters) *Service {
	s := &Service{}
	regs.RegisterHardware(
		types.IF,
		func(v uint8) {
			s.Flag = v & 0x1F
		}, func() uint8 {
			return s.Flag | 0xE0
		},
	)
	regs.RegisterHardware(
		types.IE,
		func(v uint8) {
			s.Enable = v
		}, func() uint8 {
			return s.Enable
		},
	)

	return s
}

// Pending returns true if any interrupt is both requested
// and enabled, regardless of the master enable.
func (s *Service) Pending() bool {
	return s.Enable&s.Flag&0x1F != 0
}

// Request raises the given request bits.
func (s *Service) Request(flag uint8) {
	s.Flag |= flag
}

// Vector returns the vector of the highest priority interrupt
// that is both requested and enabled, clearing its request bit.
// The remaining requests are left pending. It returns 0 when no
// interrupt is pending.
func (s *Service) Vector() uint16 {
	pending := s.Flag & s.Enable & 0x1F
	for bit := uint16(0); pending != 0; bit, pending = bit+1, pending>>1 {
		if pending&1 == 1 {
			s.Flag &^= 1 << bit
			return 0x0040 + bit*8
		}
	}
	return 0
}

// Reset clears every request and enable bit.
func (s *Service) Reset() {
	s.Flag = 0
	s.Enable = 0
}

var _ types.Stater = (*Service)(nil)

// Load implements the types.Stater interface.
func (s *Service) Load(st *types.State) {
	s.Flag = st.Read8()
	s.Enable = st.Read8()
}

// Save implements the types.Stater interface.
func (s *Service) Save(st *types.State) {
	st.Write8(s.Flag)
	st.Write8(s.Enable)
}
