// Package scheduler provides a cycle based event scheduler, used by
// peripherals that need something to happen a fixed number of cycles
// in the future, rather than on every cycle.
package scheduler

import (
	"fmt"
	"math"
	"strings"

	"github.com/thelolagemann/dmgcore/internal/types"
)

// Scheduler is a simple event scheduler that can be used to schedule events
// to be executed at a specific cycle.
//
// The scheduler is a linked list of events, sorted by the cycle at which
// they should be executed. When an event is scheduled, it is inserted into
// the list in the correct position, and when the scheduler is ticked, every
// event due up to the new cycle is executed and removed from the list.
//
// The scheduler only advances when Tick is called, which is done by the
// owner of the machine after every CPU step.
type Scheduler struct {
	cycles uint64
	root   *Event

	eventHandlers [eventTypes]func()
	events        [eventTypes]Event
	nextEventAt   uint64
}

// NewScheduler returns a new, empty scheduler.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	s.Reset()
	return s
}

// Reset removes every scheduled event and sets the cycle counter
// back to 0. Registered handlers are kept.
func (s *Scheduler) Reset() {
	s.cycles = 0
	s.root = nil
	s.nextEventAt = math.MaxUint64
	for i := range s.events {
		s.events[i] = Event{eventType: EventType(i)}
	}
}

// Cycle returns the number of cycles the scheduler has been advanced by.
func (s *Scheduler) Cycle() uint64 {
	return s.cycles
}

// RegisterEvent registers a function of the EventType to be called when
// the event is executed. Handlers are registered once, so that scheduling
// an event never allocates.
func (s *Scheduler) RegisterEvent(eventType EventType, fn func()) {
	s.eventHandlers[eventType] = fn
}

// Tick advances the scheduler by the given number of cycles, executing
// every event due up to the new cycle in order. While a handler runs,
// Cycle reports the cycle the event was due at, so that handlers
// rescheduling themselves don't drift.
func (s *Scheduler) Tick(c uint64) {
	target := s.cycles + c

	for s.nextEventAt <= target {
		event := s.root
		s.root = event.next
		event.next = nil
		event.scheduled = false
		s.cycles = event.cycle
		s.updateNext()

		if fn := s.eventHandlers[event.eventType]; fn != nil {
			fn()
		}
	}

	s.cycles = target
}

// ScheduleEvent schedules an event to be executed the given number of
// cycles from now. If the event is already scheduled, it is moved.
func (s *Scheduler) ScheduleEvent(eventType EventType, cycles uint64) {
	if s.events[eventType].scheduled {
		s.DescheduleEvent(eventType)
	}

	this := &s.events[eventType]
	this.cycle = s.cycles + cycles
	this.scheduled = true

	// events due at the same cycle run in the order they were scheduled
	var prev *Event
	event := s.root
	for event != nil && event.cycle <= this.cycle {
		prev = event
		event = event.next
	}

	this.next = event
	if prev == nil {
		s.root = this
	} else {
		prev.next = this
	}
	s.updateNext()
}

// DescheduleEvent removes the event from the list, if it is scheduled.
func (s *Scheduler) DescheduleEvent(eventType EventType) {
	if !s.events[eventType].scheduled {
		return
	}

	var prev *Event
	for event := s.root; event != nil; event = event.next {
		if event.eventType == eventType {
			if prev == nil {
				s.root = event.next
			} else {
				prev.next = event.next
			}
			event.next = nil
			event.scheduled = false
			break
		}
		prev = event
	}
	s.updateNext()
}

// Scheduled returns true if an event of the given type is pending.
func (s *Scheduler) Scheduled(eventType EventType) bool {
	return s.events[eventType].scheduled
}

// Until returns the number of cycles until the event is executed,
// or 0 if it isn't scheduled.
func (s *Scheduler) Until(eventType EventType) uint64 {
	if !s.events[eventType].scheduled {
		return 0
	}
	return s.events[eventType].cycle - s.cycles
}

func (s *Scheduler) updateNext() {
	if s.root == nil {
		s.nextEventAt = math.MaxUint64
		return
	}
	s.nextEventAt = s.root.cycle
}

func (s *Scheduler) String() string {
	var b strings.Builder
	for event := s.root; event != nil; event = event.next {
		fmt.Fprintf(&b, "%d:%d->", event.eventType, event.cycle)
	}
	return b.String()
}

var _ types.Stater = (*Scheduler)(nil)

// Load loads the state of the scheduler. Handlers are not part
// of the state, and must already be registered.
func (s *Scheduler) Load(st *types.State) {
	s.Reset()
	s.cycles = st.Read64()

	var pending [eventTypes]struct {
		scheduled bool
		in        uint64
	}
	for i := range pending {
		pending[i].scheduled = st.ReadBool()
		pending[i].in = st.Read64()
	}
	for i, p := range pending {
		if p.scheduled {
			s.ScheduleEvent(EventType(i), p.in)
		}
	}
}

// Save saves the state of the scheduler.
func (s *Scheduler) Save(st *types.State) {
	st.Write64(s.cycles)
	for i := range s.events {
		st.WriteBool(s.events[i].scheduled)
		st.Write64(s.Until(EventType(i)))
	}
}
