package pool

// EventType enumerates the kinds of scheduled events the audio-thread
// scheduler dispatches.
type EventType int

const (
	EventNoteOn EventType = iota
	EventNoteOff
	EventParamChange
	EventPatternStart
	EventPatternEnd
)

func (t EventType) String() string {
	switch t {
	case EventNoteOn:
		return "note_on"
	case EventNoteOff:
		return "note_off"
	case EventParamChange:
		return "param_change"
	case EventPatternStart:
		return "pattern_start"
	case EventPatternEnd:
		return "pattern_end"
	default:
		return "unknown"
	}
}

// ScheduledEvent is a pool-allocated event on the scheduler's timeline.
// Events are never mutated after emission except to flip Cancelled; they
// are reaped once Executed && Time is more than one second in the past.
type ScheduledEvent struct {
	ID           uint64
	Type         EventType
	Time         float64 // target time in audio seconds
	SampleOffset int32   // sub-block offset once due, set by the scheduler
	InstrumentID int32
	NoteIndex    int32 // index into a NotePool, or -1
	Pitch        float64
	Velocity     float64
	ParamID      uint32
	ParamValue   float64
	Executed     bool
	Cancelled    bool
}

func (e *ScheduledEvent) reset() {
	*e = ScheduledEvent{NoteIndex: -1}
}

// EventPool is the fixed-capacity, allocation-free scheduled-event pool
// (default capacity 500).
type EventPool struct {
	events []ScheduledEvent
	free   *IndexPool
}

// NewEventPool pre-allocates capacity events at construction.
func NewEventPool(capacity int) *EventPool {
	ep := &EventPool{
		events: make([]ScheduledEvent, capacity),
		free:   NewIndexPool(capacity),
	}
	for i := range ep.events {
		ep.events[i].reset()
	}
	return ep
}

// Acquire pops a free event slot, reset to sentinel values.
func (p *EventPool) Acquire() (idx int32, ok bool) {
	idx, ok = p.free.Acquire()
	if !ok {
		return -1, false
	}
	p.events[idx].reset()
	return idx, true
}

// Release resets the event at idx and returns the slot to the free list.
// Callers must only release events that are Executed or Cancelled and
// older than the scheduler's one-second reap window.
func (p *EventPool) Release(idx int32) {
	p.events[idx].reset()
	p.free.Release(idx)
}

// Get returns a pointer to the event at idx for in-place mutation.
func (p *EventPool) Get(idx int32) *ScheduledEvent {
	return &p.events[idx]
}

// Available reports free capacity.
func (p *EventPool) Available() int { return p.free.Available() }

// Capacity reports total capacity.
func (p *EventPool) Capacity() int { return p.free.Capacity() }
