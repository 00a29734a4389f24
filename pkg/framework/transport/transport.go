// Package transport implements the master clock: playback state machine,
// tick/step/time conversions, loop points, BPM, and the position-authority
// protocol that reconciles optimistic UI commands with the audio clock.
package transport

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
)

// State is the transport's playback state machine.
type State int32

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

var (
	ErrDeviceUnavailable = errors.New("transport: audio device is not open")
	ErrInvalidBPM        = errors.New("transport: bpm must be > 0")
	ErrInvalidLoop       = errors.New("transport: loop requires 0 <= start < end")
)

// Loop describes the transport's loop range in steps.
type Loop struct {
	Enabled bool    `json:"enabled"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// EventKind enumerates the signals the transport emits.
type EventKind int

const (
	EventStarted EventKind = iota
	EventStopped
	EventPaused
	EventTick
	EventBPMChanged
	EventLoopChanged
	EventPositionCorrected
)

// Event is a single transport signal, fanned out on Subscribe channels.
type Event struct {
	Kind EventKind
	Step float64
}

// positionLockReads is how many audio-driven position reads following
// start() report the play-start snapshot instead of a live clock read.
const positionLockReads = 3

// Transport is the master clock. The control thread calls Start/Pause/
// Stop/Seek/SetBPM/SetLoop; the audio thread calls Tick once per block
// to advance and read the authoritative position. Transport never
// allocates in Tick.
type Transport struct {
	mu sync.Mutex

	deviceOpen bool
	state      State
	bpm        float64
	loop       Loop

	uiPositionStep  float64
	pausedPosition  float64
	playStartStep   float64
	playStartSample int64
	sampleRate      float64

	positionLockFrames int32 // atomic, decremented by Tick

	listeners   []chan Event
	listenersMu sync.Mutex
}

// New creates a Transport at the given sample rate with a default BPM
// of 120 and no loop.
func New(sampleRate float64) *Transport {
	return &Transport{
		bpm:        120,
		sampleRate: sampleRate,
	}
}

// SetDeviceOpen marks whether the audio device is available; Start
// fails with ErrDeviceUnavailable while this is false.
func (t *Transport) SetDeviceOpen(open bool) {
	t.mu.Lock()
	t.deviceOpen = open
	t.mu.Unlock()
}

// Subscribe returns a buffered channel of transport events. Events are
// dropped (never blocking the emitter) if the subscriber falls behind.
func (t *Transport) Subscribe(buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	t.listenersMu.Lock()
	t.listeners = append(t.listeners, ch)
	t.listenersMu.Unlock()
	return ch
}

func (t *Transport) emit(ev Event) {
	t.listenersMu.Lock()
	defer t.listenersMu.Unlock()
	for _, ch := range t.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// State returns the current playback state.
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// BPM returns the current tempo.
func (t *Transport) BPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

// StepDuration returns the duration in seconds of one 16th-note step at
// the current BPM: seconds = 60 / (bpm * 4).
func (t *Transport) StepDuration() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return stepDuration(t.bpm)
}

func stepDuration(bpm float64) float64 {
	return 60.0 / (bpm * 4.0)
}

// SetBPM updates the tempo. Already-scheduled events retain their
// computed absolute times; only future step<->time conversions use the
// new value.
func (t *Transport) SetBPM(bpm float64) error {
	if bpm <= 0 {
		return ErrInvalidBPM
	}
	t.mu.Lock()
	t.bpm = bpm
	t.mu.Unlock()
	t.emit(Event{Kind: EventBPMChanged})
	return nil
}

// Loop returns the current loop range.
func (t *Transport) Loop() Loop {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loop
}

// SetLoop sets the loop range. Requires 0 <= start < end.
func (t *Transport) SetLoop(start, end float64, enabled bool) error {
	if start < 0 || start >= end {
		return ErrInvalidLoop
	}
	t.mu.Lock()
	t.loop = Loop{Enabled: enabled, Start: start, End: end}
	t.mu.Unlock()
	t.emit(Event{Kind: EventLoopChanged})
	return nil
}

// UIPosition returns the last UI-visible step: it persists across
// stop/play cycles and is updated immediately by Seek.
func (t *Transport) UIPosition() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.uiPositionStep
}

// Start begins playback. If paused, resumes at the paused transport
// position; otherwise adopts atStep (or the UI position when atStep is
// nil). now is the current device sample-time. Fails if the device is
// not open.
func (t *Transport) Start(now int64, atStep *float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.deviceOpen {
		return ErrDeviceUnavailable
	}

	switch t.state {
	case Playing:
		return nil
	case Paused:
		t.playStartStep = t.pausedPosition
	case Stopped:
		step := t.uiPositionStep
		if atStep != nil {
			step = *atStep
		}
		t.playStartStep = step
		t.uiPositionStep = step
	}

	t.playStartSample = now
	atomic.StoreInt32(&t.positionLockFrames, positionLockReads)
	t.state = Playing
	t.emitUnlocked(Event{Kind: EventStarted, Step: t.playStartStep})
	return nil
}

// Pause freezes the transport position while retaining the UI position.
// No-op if not playing.
func (t *Transport) Pause(now int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Playing {
		return
	}
	pos := t.computePositionLocked(now)
	t.pausedPosition = pos
	t.uiPositionStep = pos
	t.state = Paused
	t.emitUnlocked(Event{Kind: EventPaused, Step: pos})
}

// Stop sets state to stopped, freezing the transport position at 0 for
// downstream purposes but preserving the UI position.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Stopped
	t.pausedPosition = 0
	t.emitUnlocked(Event{Kind: EventStopped, Step: t.uiPositionStep})
}

// Seek always updates the UI position. The caller (uibridge/scheduler)
// is responsible for driving the smooth pause->settle->play sequence
// when smooth seeking is requested while playing.
func (t *Transport) Seek(step float64) {
	t.mu.Lock()
	t.uiPositionStep = step
	if t.state == Paused {
		t.pausedPosition = step
	}
	t.mu.Unlock()
}

// Tick is called once per audio block by the audio thread. It advances
// and returns the authoritative transport position, honoring the
// position-lock protocol and loop wraparound. wrapped is true the block
// the loop crossed its end point, which the scheduler uses to
// reschedule the active pattern with no silent gap.
func (t *Transport) Tick(now int64) (positionStep float64, wrapped bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Playing {
		t.emitUnlocked(Event{Kind: EventTick, Step: t.uiPositionStep})
		return t.uiPositionStep, false
	}

	if remaining := atomic.LoadInt32(&t.positionLockFrames); remaining > 0 {
		atomic.AddInt32(&t.positionLockFrames, -1)
		t.uiPositionStep = t.playStartStep
		t.emitUnlocked(Event{Kind: EventPositionCorrected, Step: t.playStartStep})
		return t.playStartStep, false
	}

	pos := t.computePositionLocked(now)
	if t.loop.Enabled && pos >= t.loop.End {
		loopLen := t.loop.End - t.loop.Start
		overshoot := math.Mod(pos-t.loop.Start, loopLen)
		pos = t.loop.Start + overshoot
		t.playStartStep = t.loop.Start
		t.playStartSample = now - int64(overshoot*stepDuration(t.bpm)*t.sampleRate)
		wrapped = true
	}
	t.uiPositionStep = pos
	t.emitUnlocked(Event{Kind: EventTick, Step: pos})
	return pos, wrapped
}

func (t *Transport) computePositionLocked(now int64) float64 {
	elapsedSeconds := float64(now-t.playStartSample) / t.sampleRate
	elapsedSteps := elapsedSeconds / stepDuration(t.bpm)
	return t.playStartStep + elapsedSteps
}

func (t *Transport) emitUnlocked(ev Event) {
	t.mu.Unlock()
	t.emit(ev)
	t.mu.Lock()
}

// StepToSeconds converts a step offset to seconds at the current BPM.
func (t *Transport) StepToSeconds(steps float64) float64 {
	return steps * t.StepDuration()
}
