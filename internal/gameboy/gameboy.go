// Package gameboy ties every component of the Game Boy together, and
// drives them from the CPU's clock.
package gameboy

import (
	"context"

	"github.com/pkg/errors"
	"github.com/thelolagemann/dmgcore/internal/apu"
	"github.com/thelolagemann/dmgcore/internal/boot"
	"github.com/thelolagemann/dmgcore/internal/cartridge"
	"github.com/thelolagemann/dmgcore/internal/cpu"
	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/joypad"
	"github.com/thelolagemann/dmgcore/internal/mmu"
	"github.com/thelolagemann/dmgcore/internal/ppu"
	"github.com/thelolagemann/dmgcore/internal/scheduler"
	"github.com/thelolagemann/dmgcore/internal/serial"
	"github.com/thelolagemann/dmgcore/internal/timer"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	// ClockSpeed is the clock speed of the Game Boy.
	ClockSpeed = cpu.ClockSpeed
	// FrameRate is the number of frames drawn per second.
	FrameRate = ClockSpeed / float64(ppu.DotsPerFrame)
)

// GameBoy represents a Game Boy. It contains all the components of the
// Game Boy, and owns the hardware registers they communicate through.
//
// A GameBoy is not safe for concurrent use.
type GameBoy struct {
	CPU        *cpu.CPU
	MMU        *mmu.MMU
	PPU        *ppu.PPU
	APU        *apu.APU
	Joypad     *joypad.State
	Interrupts *interrupts.Service
	Timer      *timer.Controller
	Serial     *serial.Controller
	Cartridge  *cartridge.Cartridge
	Scheduler  *scheduler.Scheduler

	regs         *types.HardwareRegisters
	bootROM      *boot.ROM
	screen       ppu.Frame
	colourScreen ppu.ColourFrame

	// err is the fatal error that stopped execution, returned by
	// every call to Tick until the GameBoy is reset.
	err error

	model        types.Model
	debug        bool
	bootData     []byte
	saveRAM      []byte
	saveRTC      []byte
	serialDevice serial.Device

	log log.Logger
}

// NewGameBoy returns a new GameBoy with the given ROM inserted, configured
// by opts. An error is returned if the ROM (or any of the data provided by
// opts) can't be loaded, in which case no instruction will have executed.
func NewGameBoy(rom []byte, opts ...Opt) (*GameBoy, error) {
	g := &GameBoy{
		regs: &types.HardwareRegisters{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = log.NewNullLogger()
	}

	cart, err := cartridge.New(rom, g.log)
	if err != nil {
		return nil, errors.Wrap(err, "loading cartridge")
	}
	if g.saveRAM != nil {
		if err := cart.LoadRAM(g.saveRAM); err != nil {
			return nil, errors.Wrap(err, "loading save RAM")
		}
	}
	if g.saveRTC != nil {
		if err := cart.LoadRTC(g.saveRTC); err != nil {
			return nil, errors.Wrap(err, "loading RTC")
		}
	}
	if g.bootData != nil {
		if g.bootROM, err = boot.New(g.bootData); err != nil {
			return nil, errors.Wrap(err, "loading boot ROM")
		}
		if g.model == types.Unset {
			g.model = g.bootROM.Model()
		}
	}
	if g.model == types.Unset && cart.IsCGBCartridge() {
		g.model = types.CGBABC
	}
	if g.model == types.Unset {
		g.model = types.DMGABC
	}

	g.Cartridge = cart
	g.Scheduler = scheduler.NewScheduler()
	g.Interrupts = interrupts.NewService(g.regs)
	g.MMU = mmu.NewMMU(cart, g.regs, g.Scheduler, g.log)
	g.MMU.SetBootROM(g.bootROM)
	g.Timer = timer.NewController(g.regs, g.Interrupts)
	g.PPU = ppu.New(g.regs, g.Interrupts, g.MMU.VRAM(), g.MMU.OAM())
	g.MMU.AttachVideo(g.PPU)
	g.PPU.AttachHBlank(g.MMU.HBlank)
	if g.model.IsCGB() {
		g.MMU.EnableCGB()
		g.PPU.EnableCGB(g.regs)
	}
	g.APU = apu.New(g.regs)
	g.Joypad = joypad.New(g.regs, g.Interrupts)
	g.Serial = serial.NewController(g.regs, g.Interrupts, g.Scheduler)
	if g.serialDevice != nil {
		g.Serial.Attach(g.serialDevice)
	}
	g.CPU = cpu.NewCPU(g.MMU, g.Interrupts, g.log)
	g.CPU.Debug = g.debug

	g.Reset()
	g.log.Infof("emulating %s, boot ROM %t", g.model, g.bootROM != nil)

	return g, nil
}

// Reset returns every component to its power on state. The contents of
// the cartridge RAM survive a reset.
func (g *GameBoy) Reset() {
	g.Scheduler.Reset()
	g.Interrupts.Reset()
	g.MMU.Reset()
	g.Cartridge.Reset()
	g.CPU.Reset()
	g.Timer.Reset(0)
	g.PPU.Reset()
	g.APU.Reset()
	g.Joypad.Reset()
	g.Serial.Reset()
	g.screen = ppu.Frame{}
	g.colourScreen = ppu.ColourFrame{}
	g.err = nil

	if !g.MMU.BootROMMapped() {
		g.postBoot()
	}
}

// postBoot leaves the system in the state the boot ROM of the model would
// have left it in, for when no boot ROM is used.
func (g *GameBoy) postBoot() {
	r := types.ModelRegisters[g.model]
	g.CPU.A, g.CPU.F = r[0], r[1]
	g.CPU.B, g.CPU.C = r[2], r[3]
	g.CPU.D, g.CPU.E = r[4], r[5]
	g.CPU.H, g.CPU.L = r[6], r[7]
	g.CPU.PC = 0x0100
	g.CPU.SP = 0xFFFE

	g.Timer.Reset(types.ModelCounter[g.model])

	io := maps.Clone(types.CommonIO)
	maps.Copy(io, types.ModelIO[g.model])

	// registers are written in address order, so that LCDC has turned
	// the screen on before STAT is written. IF goes last, to discard
	// any requests raised along the way
	addresses := maps.Keys(io)
	slices.Sort(addresses)
	for _, address := range addresses {
		if address != types.IF {
			g.regs.Write(address, io[address])
		}
	}
	g.regs.Write(types.IF, io[types.IF])
}

// Tick executes a single CPU step, and advances every other component by
// the number of cycles it took, before checking for interrupts. The number
// of cycles is returned, along with any error that stopped execution. Once
// an error has been returned, every later call returns it too.
func (g *GameBoy) Tick() (int, error) {
	if g.err != nil {
		return 0, g.err
	}

	cycles, err := g.CPU.Step()
	if err == nil {
		err = g.MMU.Err()
	}
	if err != nil {
		g.err = err
		g.log.Errorf("execution stopped at cycle %d: %v", g.Scheduler.Cycle(), err)
		return cycles, err
	}

	// the CPU is held while VRAM DMA copies
	cycles += g.MMU.HDMAStall()

	dots := g.dots(cycles)
	g.Timer.Tick(cycles)
	g.PPU.Tick(dots)
	g.MMU.Tick(cycles)
	g.Cartridge.Tick(dots)
	g.Scheduler.Tick(uint64(cycles))

	g.CPU.CheckInterrupts()

	return cycles, nil
}

// dots converts CPU cycles to dots, which the PPU and cartridge clock
// count in. At double speed the CPU runs 2 cycles per dot.
func (g *GameBoy) dots(cycles int) int {
	if g.MMU.DoubleSpeed() {
		return cycles / 2
	}
	return cycles
}

// Frame ticks the GameBoy until the PPU has completed a frame, which can
// then be obtained with Screen. While the LCD is off, Frame returns once
// a frame's worth of cycles has elapsed, leaving the screen blank.
func (g *GameBoy) Frame() error {
	// discard anything completed outside of Frame
	g.PPU.Frame()

	for elapsed := 0; !g.PPU.HasFrame(); {
		cycles, err := g.Tick()
		if err != nil {
			return err
		}
		elapsed += g.dots(cycles)

		if !g.PPU.Enabled() && elapsed >= ppu.DotsPerFrame {
			g.screen = ppu.Frame{}
			g.colourScreen = ppu.ColourFrame{}
			return nil
		}
	}

	g.screen = g.PPU.Frame()
	g.colourScreen = g.PPU.ColourFrame()
	return nil
}

// Screen returns the last frame completed by Frame.
func (g *GameBoy) Screen() *ppu.Frame {
	return &g.screen
}

// ColourScreen returns the colours of the last frame completed by
// Frame, which is how CGB games should be displayed.
func (g *GameBoy) ColourScreen() *ppu.ColourFrame {
	return &g.colourScreen
}

// Run runs frames until ctx is cancelled or an error stops execution,
// calling onFrame with every completed frame. Run doesn't pace itself,
// the caller is expected to do so from onFrame if needed.
func (g *GameBoy) Run(ctx context.Context, onFrame func(*ppu.Frame)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := g.Frame(); err != nil {
			return err
		}
		if onFrame != nil {
			onFrame(&g.screen)
		}
	}
}

// Press presses the given button.
func (g *GameBoy) Press(button joypad.Button) {
	g.Joypad.Press(button)
}

// Release releases the given button.
func (g *GameBoy) Release(button joypad.Button) {
	g.Joypad.Release(button)
}

// Model returns the model being emulated.
func (g *GameBoy) Model() types.Model {
	return g.model
}

// HasBattery returns true if the cartridge has a battery, and SaveRAM
// (and RTC) should be persisted by the host.
func (g *GameBoy) HasBattery() bool {
	return g.Cartridge.HasBattery()
}

// SaveRAM returns a copy of the cartridge RAM, suitable for WithSaveRAM.
func (g *GameBoy) SaveRAM() []byte {
	return g.Cartridge.RAM()
}

// RTC returns the state of the cartridge clock, suitable for WithRTC, or
// nil if the cartridge doesn't have one.
func (g *GameBoy) RTC() []byte {
	return g.Cartridge.RTC()
}

// staters returns every component with state, in the order they
// appear in a snapshot.
func (g *GameBoy) staters() []types.Stater {
	return []types.Stater{
		g.CPU,
		g.Interrupts,
		g.MMU,
		g.Cartridge,
		g.PPU,
		g.Timer,
		g.Joypad,
		g.Serial,
		g.APU,
		g.Scheduler,
	}
}

// Snapshot returns the state of the entire system, which can be returned
// to with Restore.
func (g *GameBoy) Snapshot() []byte {
	s := types.NewState()
	s.Write64(g.Cartridge.Fingerprint())
	for _, c := range g.staters() {
		c.Save(s)
	}
	return s.Bytes()
}

// Restore returns the system to a state returned by Snapshot. The snapshot
// must have been taken with the same cartridge inserted. If the snapshot
// can't be restored, the system is left as it was.
func (g *GameBoy) Restore(b []byte) error {
	backup := g.Snapshot()
	if err := g.load(b); err != nil {
		if rerr := g.load(backup); rerr != nil {
			g.log.Errorf("rolling back snapshot: %v", rerr)
		}
		return err
	}
	g.err = nil
	return nil
}

func (g *GameBoy) load(b []byte) error {
	s := types.StateFromBytes(b)
	if fingerprint := s.Read64(); s.Err() == nil && fingerprint != g.Cartridge.Fingerprint() {
		return errors.Wrapf(ErrInvalidSnapshot, "taken with cartridge 0x%016X, have 0x%016X", fingerprint, g.Cartridge.Fingerprint())
	}
	for _, c := range g.staters() {
		c.Load(s)
	}
	if err := s.Err(); err != nil {
		return errors.Wrapf(ErrInvalidSnapshot, "%v", err)
	}
	return nil
}
