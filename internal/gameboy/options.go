package gameboy

import (
	"github.com/thelolagemann/dmgcore/internal/serial"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

// Opt is a function that modifies a GameBoy
// instance. Options are applied before any of the
// components are created.
type Opt func(gb *GameBoy)

// Debug enables tracing of every instruction executed by the CPU,
// logged at the debug level.
func Debug() Opt {
	return func(gb *GameBoy) {
		gb.debug = true
	}
}

// AsModel sets the model to emulate. When no boot ROM is used, the
// model decides the state the system is left in after boot.
func AsModel(m types.Model) Opt {
	return func(gb *GameBoy) {
		gb.model = m
	}
}

// WithLogger sets the logger used by the GameBoy and its components.
func WithLogger(log log.Logger) Opt {
	return func(gb *GameBoy) {
		gb.log = log
	}
}

// WithBootROM sets the boot ROM for the emulator. Execution will start
// at 0x0000 from the boot ROM, rather than at 0x0100 with the
// registers set to the values left behind by the boot ROM.
func WithBootROM(rom []byte) Opt {
	return func(gb *GameBoy) {
		gb.bootData = rom
	}
}

// WithSerialDevice attaches a device to the serial port.
func WithSerialDevice(d serial.Device) Opt {
	return func(gb *GameBoy) {
		gb.serialDevice = d
	}
}

// WithSaveRAM restores the external RAM of the cartridge, as previously
// returned by SaveRAM.
func WithSaveRAM(b []byte) Opt {
	return func(gb *GameBoy) {
		gb.saveRAM = b
	}
}

// WithRTC restores the real time clock of the cartridge, as previously
// returned by RTC.
func WithRTC(b []byte) Opt {
	return func(gb *GameBoy) {
		gb.saveRTC = b
	}
}
