// Package uibridge is the command ingress for the audio core: it
// accepts optimistic commands from UI surfaces, reconciles them with
// the transport, and fans out sync events in the external event shape.
package uibridge

import (
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/modular-audio/dawcore/pkg/framework/scheduler"
	"github.com/modular-audio/dawcore/pkg/framework/transport"
)

var eventJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Mode is the transport's song/pattern context, carried on every
// position update so panels can filter.
type Mode int

const (
	ModePattern Mode = iota
	ModeSong
)

// EventType is the external, UI-facing event tag, distinct from
// transport.EventKind which is the internal signal vocabulary.
type EventType string

const (
	EventStateChange        EventType = "state-change"
	EventPositionUpdate     EventType = "position-update"
	EventGhostPositionChange EventType = "ghost-position-change"
)

// Reason explains why a state-change event fired.
type Reason string

const (
	ReasonCommand    Reason = "command"
	ReasonRejected   Reason = "rejected"
	ReasonConfirmed  Reason = "confirmed"
	ReasonLoopWrap   Reason = "loop-wrap"
)

// Event is the external shape delivered to subscribers.
type Event struct {
	Type      EventType       `json:"type"`
	State     transport.State `json:"state"`
	Reason    Reason          `json:"reason"`
	Timestamp int64           `json:"timestamp"`
	Mode      Mode            `json:"mode"`
	Step      float64         `json:"step"`
}

// Encode renders an event as the JSON payload a remote UI surface
// (websocket, IPC pipe) would receive — the only point in the bridge
// where a Go struct crosses into wire format.
func (ev Event) Encode() ([]byte, error) {
	return eventJSON.Marshal(ev)
}

// DecodeEvent parses a wire payload produced by Encode, for tests and
// any UI-side relay that round-trips events through this package.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	err := eventJSON.Unmarshal(data, &ev)
	return ev, err
}

// Result is returned synchronously from every command API call: a
// success/failure indicator plus the rejection error, if any.
type Result struct {
	OK    bool
	Error error
}

// snapshot is the previous-state record kept for the optimistic UI
// protocol's rollback-on-rejection path.
type snapshot struct {
	state transport.State
	step  float64
}

// Bridge is the single Timeline/UI Bridge (C11). It owns no audio-path
// state itself; it reconciles command intents against the Transport
// and republishes transport events in the external event shape.
type Bridge struct {
	mu sync.Mutex

	tr     *transport.Transport
	seeker *scheduler.SmoothSeeker
	mode   Mode
	prev   snapshot

	subs   []chan Event
	subsMu sync.Mutex

	now func() int64
}

// New wires a Bridge to a transport, a smooth seeker, and a sample
// clock reader used to timestamp commands.
func New(tr *transport.Transport, seeker *scheduler.SmoothSeeker, now func() int64) *Bridge {
	b := &Bridge{tr: tr, seeker: seeker, now: now, mode: ModePattern}
	go b.relayTransportEvents(tr.Subscribe(32))
	return b
}

// Subscribe returns a buffered channel of external events.
func (b *Bridge) Subscribe(buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	b.subsMu.Lock()
	b.subs = append(b.subs, ch)
	b.subsMu.Unlock()
	return ch
}

func (b *Bridge) publish(ev Event) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SetMode switches between pattern and song context.
func (b *Bridge) SetMode(m Mode) {
	b.mu.Lock()
	b.mode = m
	b.mu.Unlock()
}

func (b *Bridge) snapshotLocked() snapshot {
	return snapshot{state: b.tr.State(), step: b.tr.UIPosition()}
}

// Play applies immediately to UI-visible state, then confirms or
// rolls back against the transport's actual response. atStep is
// optional.
func (b *Bridge) Play(atStep *float64) Result {
	b.mu.Lock()
	b.prev = b.snapshotLocked()
	b.mu.Unlock()

	b.publish(Event{Type: EventStateChange, State: transport.Playing, Reason: ReasonCommand, Timestamp: b.now(), Mode: b.currentMode()})

	if err := b.tr.Start(b.now(), atStep); err != nil {
		b.rollback()
		return Result{OK: false, Error: err}
	}
	b.confirm()
	return Result{OK: true}
}

// Pause applies immediately and confirms; pause never fails — it is
// a no-op unless playing, never an error.
func (b *Bridge) Pause() Result {
	b.mu.Lock()
	b.prev = b.snapshotLocked()
	b.mu.Unlock()

	b.publish(Event{Type: EventStateChange, State: transport.Paused, Reason: ReasonCommand, Timestamp: b.now(), Mode: b.currentMode()})
	b.tr.Pause(b.now())
	b.confirm()
	return Result{OK: true}
}

// Stop applies immediately and confirms.
func (b *Bridge) Stop() Result {
	b.mu.Lock()
	b.prev = b.snapshotLocked()
	b.mu.Unlock()

	b.publish(Event{Type: EventStateChange, State: transport.Stopped, Reason: ReasonCommand, Timestamp: b.now(), Mode: b.currentMode()})
	b.tr.Stop()
	b.confirm()
	return Result{OK: true}
}

// Toggle plays if stopped/paused, pauses if playing.
func (b *Bridge) Toggle() Result {
	if b.tr.State() == transport.Playing {
		return b.Pause()
	}
	return b.Play(nil)
}

// Seek moves the playhead. When smooth is true and the transport is
// currently playing, the pause->settle->play sequence is used;
// otherwise the seek is immediate.
func (b *Bridge) Seek(step float64, smooth bool) Result {
	b.publish(Event{Type: EventGhostPositionChange, State: b.tr.State(), Reason: ReasonCommand, Timestamp: b.now(), Mode: b.currentMode(), Step: step})

	if smooth {
		b.seeker.Seek(step)
	} else {
		b.tr.Seek(step)
	}
	return Result{OK: true}
}

// SetBPM forwards to the transport, surfacing validation failure.
func (b *Bridge) SetBPM(bpm float64) Result {
	if err := b.tr.SetBPM(bpm); err != nil {
		return Result{OK: false, Error: err}
	}
	return Result{OK: true}
}

// SetLoop forwards to the transport, surfacing validation failure.
func (b *Bridge) SetLoop(start, end float64, enabled bool) Result {
	if err := b.tr.SetLoop(start, end, enabled); err != nil {
		return Result{OK: false, Error: err}
	}
	return Result{OK: true}
}

func (b *Bridge) currentMode() Mode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

// confirm publishes a confirmed state-change event carrying the
// transport's actual state: the command succeeded. The previous-state
// snapshot is left in place until the next command overwrites it.
func (b *Bridge) confirm() {
	b.publish(Event{Type: EventStateChange, State: b.tr.State(), Reason: ReasonConfirmed, Timestamp: b.now(), Mode: b.currentMode(), Step: b.tr.UIPosition()})
}

// rollback restores the previous-state snapshot: the command was
// rejected by the engine (e.g. device not ready).
func (b *Bridge) rollback() {
	b.mu.Lock()
	prev := b.prev
	b.mu.Unlock()

	if prev.state == transport.Stopped {
		b.tr.Stop()
	}
	b.tr.Seek(prev.step)
	b.publish(Event{Type: EventStateChange, State: prev.state, Reason: ReasonRejected, Timestamp: b.now(), Mode: b.currentMode(), Step: prev.step})
}

// relayTransportEvents republishes internal transport signals in the
// external event shape, running as the control thread's fan-out read
// loop.
func (b *Bridge) relayTransportEvents(in <-chan transport.Event) {
	for tev := range in {
		switch tev.Kind {
		case transport.EventTick, transport.EventPositionCorrected:
			b.publish(Event{Type: EventPositionUpdate, State: b.tr.State(), Reason: ReasonCommand, Timestamp: b.now(), Mode: b.currentMode(), Step: tev.Step})
		case transport.EventLoopChanged:
			b.publish(Event{Type: EventStateChange, State: b.tr.State(), Reason: ReasonLoopWrap, Timestamp: b.now(), Mode: b.currentMode(), Step: tev.Step})
		}
	}
}
