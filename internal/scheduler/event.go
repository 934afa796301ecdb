package scheduler

// EventType identifies the kind of an event. Only one event of each
// type can be scheduled at a time.
type EventType uint8

const (
	// SerialBit shifts a single bit out of the serial port.
	SerialBit EventType = iota
	// DMAStart begins an OAM DMA transfer, one machine cycle after
	// types.DMA was written.
	DMAStart

	eventTypes
)

// Event is a single entry of the scheduler's event list.
type Event struct {
	cycle     uint64
	eventType EventType
	scheduled bool
	next      *Event
}
