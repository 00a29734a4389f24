// Package scheduler implements the look-ahead event scheduler: it
// converts patterns into sample-accurate note-on/off events, drains
// them into the graph on a tick loop, and implements cancellation and
// the smooth resume/jump protocol.
package scheduler

import (
	"sort"
	"sync"

	"github.com/modular-audio/dawcore/pkg/framework/pool"
)

const (
	// LookAhead is how far past audio_now an event may be and still
	// dispatch on this tick.
	LookAhead = 0.100
	// ScheduleAhead bounds how far ahead of audio_now new pattern events
	// may be admitted in a single scheduling pass.
	ScheduleAhead = 0.150
	// TickPeriod is the nominal interval between scheduler ticks.
	TickPeriod = 0.025
	// ReapAge is how long after execution or cancellation an event's
	// pool slot is safe to release.
	ReapAge = 1.0
)

// DispatchFunc receives a due event with its sub-block sample offset
// already computed by the scheduler.
type DispatchFunc func(ev *pool.ScheduledEvent)

// Scheduler owns the pending-event timeline. All pending events live in
// a slice kept sorted by Time; the sort only needs to be stable across
// a single Schedule call since inserts merge into place.
type Scheduler struct {
	mu sync.Mutex

	events     *pool.EventPool
	pending    []int32 // indices into events, sorted by Time ascending
	nextID     uint64
	sampleRate float64
}

// New creates a Scheduler backed by capacity pool slots.
func New(sampleRate float64, capacity int) *Scheduler {
	return &Scheduler{
		events:     pool.NewEventPool(capacity),
		sampleRate: sampleRate,
	}
}

// StepDuration returns 60/(bpm*4), the duration of a 16th-note step.
func StepDuration(bpm float64) float64 {
	return 60.0 / (bpm * 4.0)
}

// ScheduleNote enqueues the note-on/off pair for a single pattern note
// at the given base time, honoring skipBeforeStep. Returns false if
// the event pool is exhausted.
func (s *Scheduler) ScheduleNote(instrumentID int32, noteIndex int32, pitch, velocity float64, step, duration, base, bpm, skipBeforeStep float64) bool {
	if step < skipBeforeStep {
		return false
	}
	stepDur := StepDuration(bpm)
	onTime := base + (step-skipBeforeStep)*stepDur
	offTime := base + (step-skipBeforeStep+duration)*stepDur

	s.mu.Lock()
	defer s.mu.Unlock()

	onIdx, ok := s.events.Acquire()
	if !ok {
		return false
	}
	on := s.events.Get(onIdx)
	on.ID = s.allocID()
	on.Type = pool.EventNoteOn
	on.Time = onTime
	on.InstrumentID = instrumentID
	on.NoteIndex = noteIndex
	on.Pitch = pitch
	on.Velocity = velocity
	s.insertLocked(onIdx)

	offIdx, ok := s.events.Acquire()
	if !ok {
		// leave the note-on scheduled; the note simply never releases
		// until cancelled, matching "schedule best-effort" semantics.
		return false
	}
	off := s.events.Get(offIdx)
	off.ID = s.allocID()
	off.Type = pool.EventNoteOff
	off.Time = offTime
	off.InstrumentID = instrumentID
	off.NoteIndex = noteIndex
	off.Pitch = pitch
	s.insertLocked(offIdx)

	return true
}

// ScheduleParamChange enqueues a single parameter-automation event.
func (s *Scheduler) ScheduleParamChange(paramID uint32, value float64, at float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.events.Acquire()
	if !ok {
		return false
	}
	ev := s.events.Get(idx)
	ev.ID = s.allocID()
	ev.Type = pool.EventParamChange
	ev.Time = at
	ev.ParamID = paramID
	ev.ParamValue = value
	s.insertLocked(idx)
	return true
}

func (s *Scheduler) allocID() uint64 {
	s.nextID++
	return s.nextID
}

// insertLocked inserts idx into s.pending keeping it sorted by Time.
// Called with s.mu held.
func (s *Scheduler) insertLocked(idx int32) {
	ev := s.events.Get(idx)
	pos := sort.Search(len(s.pending), func(i int) bool {
		return s.events.Get(s.pending[i]).Time > ev.Time
	})
	s.pending = append(s.pending, 0)
	copy(s.pending[pos+1:], s.pending[pos:])
	s.pending[pos] = idx
}

// Tick advances the scheduler by one control-thread tick. audioNow is
// the current audio-clock time in seconds; blockStartSample and
// sampleRate let the scheduler compute each due event's sub-block
// offset. Every event with time <= audioNow+LookAhead and not yet
// executed or cancelled is dispatched in time order.
func (s *Scheduler) Tick(audioNow float64, blockStartSample int64, dispatch DispatchFunc) {
	horizon := audioNow + LookAhead

	s.mu.Lock()
	due := s.pending[:0:0] // distinct backing array, avoids aliasing s.pending
	for _, idx := range s.pending {
		ev := s.events.Get(idx)
		if ev.Cancelled || ev.Executed {
			continue
		}
		if ev.Time > horizon {
			break
		}
		offset := int32((ev.Time - audioNow) * s.sampleRate)
		if offset < 0 {
			offset = 0
		}
		ev.SampleOffset = offset
		ev.Executed = true
		due = append(due, idx)
	}
	s.mu.Unlock()

	for _, idx := range due {
		dispatch(s.events.Get(idx))
	}

	s.reap(audioNow)
}

// reap releases pool slots for events that are executed-or-cancelled
// and older than ReapAge seconds, and compacts s.pending.
func (s *Scheduler) reap(audioNow float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.pending[:0]
	for _, idx := range s.pending {
		ev := s.events.Get(idx)
		if (ev.Executed || ev.Cancelled) && audioNow-ev.Time > ReapAge {
			s.events.Release(idx)
			continue
		}
		kept = append(kept, idx)
	}
	s.pending = kept
}

// CancelNote cancels every pending event for instrumentID carrying
// noteIndex. Cancellation after execution is a no-op.
func (s *Scheduler) CancelNote(instrumentID, noteIndex int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, idx := range s.pending {
		ev := s.events.Get(idx)
		if ev.InstrumentID == instrumentID && ev.NoteIndex == noteIndex && !ev.Executed {
			ev.Cancelled = true
		}
	}
}

// CancelInstrument cancels every pending, not-yet-executed event
// targeting instrumentID.
func (s *Scheduler) CancelInstrument(instrumentID int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, idx := range s.pending {
		ev := s.events.Get(idx)
		if ev.InstrumentID == instrumentID && !ev.Executed {
			ev.Cancelled = true
		}
	}
}

// CancelAll cancels every pending, not-yet-executed event.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, idx := range s.pending {
		ev := s.events.Get(idx)
		if !ev.Executed {
			ev.Cancelled = true
		}
	}
}

// Pending returns the count of events still awaiting dispatch or reap.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// RescheduleForLoop re-schedules a pattern crossing loop_end: the
// active pattern's remaining notes are rescheduled at the time
// loop_end maps to, skipping everything before loop_start. Callers
// supply the pattern's notes directly since Pattern itself lives in
// the instrument package.
func (s *Scheduler) RescheduleForLoop(instrumentID int32, notes []PatternNote, loopStartStep, wrapBase, bpm float64) {
	for _, n := range notes {
		s.ScheduleNote(instrumentID, n.NoteIndex, n.Pitch, n.Velocity, n.Step, n.Duration, wrapBase, bpm, loopStartStep)
	}
}

// PatternNote is the minimal view of a pattern note the scheduler needs
// to reschedule across a loop wrap, decoupled from the instrument
// package's richer Pattern type.
type PatternNote struct {
	NoteIndex int32
	Pitch     float64
	Velocity  float64
	Step      float64
	Duration  float64
}
