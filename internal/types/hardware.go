package types

// HardwareRegisters is the I/O register file of a single machine. Each
// peripheral registers the handlers for the addresses it owns, and the
// memory router dispatches every access to 0xFF00-0xFF7F & 0xFFFF
// through it. The table is indexed by the address ANDed with 0x7F, so
// IE (0xFFFF) shares slot 0x7F with 0xFF7F, which is never registered.
type HardwareRegisters struct {
	regs [0x80]*HardwareRegister
}

// HardwareRegister holds the read and write handlers of a hardware
// register. Either may be nil, NoRead and NoWrite apply in that case.
type HardwareRegister struct {
	write func(v uint8)
	read  func() uint8
}

// NoRead is the value returned when reading a register that has no
// read handler, or that hasn't been registered at all.
const NoRead uint8 = 0xFF

// NoWrite can be passed as a write handler for read only registers.
func NoWrite(uint8) {}

// RegisterHardware registers the handlers for the given address,
// replacing any previous registration.
func (h *HardwareRegisters) RegisterHardware(address HardwareAddress, write func(v uint8), read func() uint8) {
	h.regs[address&0x7F] = &HardwareRegister{
		write: write,
		read:  read,
	}
}

// Registered returns true if the given address has handlers.
func (h *HardwareRegisters) Registered(address HardwareAddress) bool {
	return h.lookup(address) != nil
}

func (h *HardwareRegisters) lookup(address HardwareAddress) *HardwareRegister {
	if address == 0xFF7F {
		return nil
	}
	return h.regs[address&0x7F]
}

// Read returns the value of the hardware register for the given
// address, or NoRead if it can't be read.
func (h *HardwareRegisters) Read(address HardwareAddress) uint8 {
	r := h.lookup(address)
	if r == nil || r.read == nil {
		return NoRead
	}
	return r.read()
}

// Write writes value to the hardware register for the given address.
// Writes to unregistered or read only registers are dropped.
func (h *HardwareRegisters) Write(address HardwareAddress, value uint8) {
	r := h.lookup(address)
	if r == nil || r.write == nil {
		return
	}
	r.write(value)
}
