// Package joypad provides an implementation of the Game Boy
// joypad. The joypad is used to read the state of the buttons
// and the direction keys.
package joypad

import (
	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/utils"
)

// Button represents a physical button on the Game Boy.
type Button = uint8

const (
	// ButtonA is the A button.
	ButtonA Button = iota
	// ButtonB is the B button.
	ButtonB
	// ButtonSelect is the Select button.
	ButtonSelect
	// ButtonStart is the Start button.
	ButtonStart
	// ButtonRight is the Right button.
	ButtonRight
	// ButtonLeft is the Left button.
	ButtonLeft
	// ButtonUp is the Up button.
	ButtonUp
	// ButtonDown is the Down button.
	ButtonDown
)

// State represents the state of the joypad. Select either
// action or direction buttons by writing to the register,
// and then read out bits 0-3 to get the state of the buttons.
//
//	Bit 7 - Not used
//	Bit 6 - Not used
//	Bit 5 - P15 Select Button Keys      (0=Select)
//	Bit 4 - P14 Select Direction Keys   (0=Select)
//	Bit 3 - P13 Input Down  or Start    (0=Pressed) (Read Only)
//	Bit 2 - P12 Input Up    or Select   (0=Pressed) (Read Only)
//	Bit 1 - P11 Input Left  or Button B (0=Pressed) (Read Only)
//	Bit 0 - P10 Input Right or Button A (0=Pressed) (Read Only)
type State struct {
	// pressed holds a bit for each Button, set while the button is
	// held down. The lower 4 bits are the action buttons, and the
	// upper 4 bits are the direction buttons.
	pressed uint8
	// selected holds bits 4-5 of types.P1.
	selected uint8
	// lines holds the last value of the 4 input lines, used to
	// detect a line going low.
	lines uint8

	irq *interrupts.Service
}

// New returns a new joypad state, registering types.P1 in regs.
func New(regs *types.HardwareRegisters, irq *interrupts.Service) *State {
	s := &State{
		irq: irq,
	}
	s.Reset()
	regs.RegisterHardware(
		types.P1,
		func(v uint8) {
			s.selected = v & 0x30
			s.update()
		}, func() uint8 {
			return 0xC0 | s.selected | s.lines
		},
	)

	return s
}

// Reset releases every button and deselects both groups.
func (s *State) Reset() {
	s.pressed = 0
	s.selected = 0x30
	s.lines = 0x0F
}

// Press presses a button.
func (s *State) Press(button Button) {
	s.pressed = utils.Set(s.pressed, types.Bit0<<button)
	s.update()
}

// Release releases a button.
func (s *State) Release(button Button) {
	s.pressed = utils.Reset(s.pressed, types.Bit0<<button)
	s.update()
}

// update recomputes the input lines, requesting an interrupt
// when any of them goes from high to low.
func (s *State) update() {
	lines := uint8(0x0F)
	if s.selected&types.Bit4 == 0 {
		lines &^= s.pressed >> 4
	}
	if s.selected&types.Bit5 == 0 {
		lines &^= s.pressed & 0x0F
	}

	if s.lines&^lines != 0 {
		s.irq.Request(interrupts.JoypadFlag)
	}
	s.lines = lines
}

var _ types.Stater = (*State)(nil)

// Load implements the types.Stater interface.
func (s *State) Load(st *types.State) {
	s.pressed = st.Read8()
	s.selected = st.Read8()
	s.lines = st.Read8()
}

// Save implements the types.Stater interface.
func (s *State) Save(st *types.State) {
	st.Write8(s.pressed)
	st.Write8(s.selected)
	st.Write8(s.lines)
}
