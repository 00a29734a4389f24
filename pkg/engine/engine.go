// Package engine wires the transport, scheduler, audio graph, and UI
// bridge into the single top-level DAW audio core.
package engine

import (
	"os"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"

	"github.com/modular-audio/dawcore/pkg/engine/graph"
	"github.com/modular-audio/dawcore/pkg/engine/instrument"
	"github.com/modular-audio/dawcore/pkg/engine/mixer"
	"github.com/modular-audio/dawcore/pkg/framework/debug"
	"github.com/modular-audio/dawcore/pkg/framework/scheduler"
	"github.com/modular-audio/dawcore/pkg/framework/transport"
	"github.com/modular-audio/dawcore/pkg/framework/uibridge"
)

var sessionJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds every construction-time parameter. New replaces a
// Config whose SampleRate is zero with DefaultConfig as a whole; any
// other Config is used as given, zero fields included.
type Config struct {
	SampleRate        float64
	BlockSize         int
	MaxVoicesDefault  int
	ScratchBuffers    int // must cover 2*distinct-inserts + instrument count
	EventPoolCapacity int
}

// DefaultConfig returns the engine's reference defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:        48000,
		BlockSize:         128,
		MaxVoicesDefault:  instrument.DefaultMaxVoices,
		ScratchBuffers:    32,
		EventPoolCapacity: 500,
	}
}

// Engine is the assembled audio core: transport + scheduler + graph +
// mixer + UI bridge, ready to be driven by RenderBlock calls (from a
// device callback) or by OfflineRender (for non-realtime export).
type Engine struct {
	cfg       Config
	Transport *transport.Transport
	Scheduler *scheduler.Scheduler
	Mixer     *mixer.Mixer
	Graph     *graph.Graph
	Bridge    *uibridge.Bridge
	Log       *debug.Logger

	nextInstrumentID int32
	currentSample    int64 // updated by RenderBlock/OfflineRender, read by now()
}

// New assembles a fully wired engine from cfg. Transport/bridge "now"
// is the engine's own running sample counter, not wall-clock time —
// the audio-sample timeline is the only clock that matters here, so
// it is threaded in via a closure over e.currentSample rather than
// time.Now().
func New(cfg Config) *Engine {
	if cfg.SampleRate == 0 {
		cfg = DefaultConfig()
	}

	e := &Engine{cfg: cfg, Log: debug.New(os.Stderr, "engine", debug.DefaultFlags)}
	now := func() int64 { return atomic.LoadInt64(&e.currentSample) }

	tr := transport.New(cfg.SampleRate)
	tr.SetDeviceOpen(true)
	sched := scheduler.New(cfg.SampleRate, cfg.EventPoolCapacity)
	mix := mixer.NewMixer()
	g := graph.New(cfg.SampleRate, cfg.BlockSize, cfg.ScratchBuffers, mix, sched)
	seeker := scheduler.NewSmoothSeeker(tr, now)
	bridge := uibridge.New(tr, seeker, now)

	e.Transport = tr
	e.Scheduler = sched
	e.Mixer = mix
	e.Graph = g
	e.Bridge = bridge
	return e
}

// AddInstrument creates and registers a new instrument, routed to
// insertID ("master" routes directly to the mixer's master bus).
func (e *Engine) AddInstrument(insertID string, unisonVoices int) (*instrument.Instrument, error) {
	id := e.nextInstrumentID
	e.nextInstrumentID++
	in := instrument.New(id, e.cfg.SampleRate, e.cfg.MaxVoicesDefault, unisonVoices, e.cfg.BlockSize)
	if err := e.Graph.AddInstrument(in, insertID); err != nil {
		e.Log.Warn("add instrument %d -> insert %q rejected: %v", id, insertID, err)
		return nil, err
	}
	e.Log.Debug("added instrument %d routed to insert %q", id, insertID)
	return in, nil
}

// Prepare finalizes the graph's scratch-buffer topology; must be
// called once after every instrument/insert has been added and
// before the first RenderBlock/OfflineRender call.
func (e *Engine) Prepare() error {
	if err := e.Graph.Prepare(); err != nil {
		e.Log.Error("prepare failed: %v", err)
		return err
	}
	e.Log.Info("engine prepared: %d Hz, block %d", int(e.cfg.SampleRate), e.cfg.BlockSize)
	return nil
}

// RenderBlock renders one block at the given sample-accurate position
// into out (interleaved stereo, len >= 2*BlockSize).
func (e *Engine) RenderBlock(blockStartSample int64, out []float32) error {
	atomic.StoreInt64(&e.currentSample, blockStartSample)
	audioNow := float64(blockStartSample) / e.cfg.SampleRate
	if err := e.Graph.RenderBlock(audioNow, blockStartSample, out); err != nil {
		e.Log.Error("render block at sample %d failed: %v", blockStartSample, err)
		return err
	}
	return nil
}

// BlockSize and SampleRate expose the engine's fixed render geometry.
func (e *Engine) BlockSize() int      { return e.cfg.BlockSize }
func (e *Engine) SampleRate() float64 { return e.cfg.SampleRate }

// InstrumentRoute is one instrument's binding within a session
// snapshot: its id and the insert it feeds. The unison voice count and
// per-voice parameter state are not part of the snapshot.
type InstrumentRoute struct {
	InstrumentID int32  `json:"instrument_id"`
	InsertID     string `json:"insert_id"`
}

// SessionSnapshot is the top-level persisted/transmitted session
// shape: tempo, loop range, every mixer strip (including master), and
// the instrument->insert routing table. Patterns are intentionally
// absent — pattern data lives in a separate state store that delivers
// its own snapshots directly to the core; the engine never reaches
// into it, so session serialization has nothing of its own to say
// about patterns.
type SessionSnapshot struct {
	BPM         float64            `json:"bpm"`
	Loop        transport.Loop     `json:"loop"`
	Inserts     []mixer.Serialized `json:"inserts"`
	Instruments []InstrumentRoute  `json:"instruments"`
}

// Serialize captures the engine's current tempo, loop, mixer, and
// routing state for persistence or transmission across the UI bridge.
func (e *Engine) Serialize() SessionSnapshot {
	routes := e.Graph.Routes()
	instruments := make([]InstrumentRoute, len(routes))
	for i, r := range routes {
		instruments[i] = InstrumentRoute{InstrumentID: r.InstrumentID, InsertID: r.InsertID}
	}
	return SessionSnapshot{
		BPM:         e.Transport.BPM(),
		Loop:        e.Transport.Loop(),
		Inserts:     e.Mixer.Serialize(),
		Instruments: instruments,
	}
}

// Encode renders a SessionSnapshot as the JSON payload persisted to a
// session file or sent across the UI bridge.
func (s SessionSnapshot) Encode() ([]byte, error) {
	return sessionJSON.Marshal(s)
}

// DecodeSessionSnapshot parses a wire payload produced by Encode.
func DecodeSessionSnapshot(data []byte) (SessionSnapshot, error) {
	var s SessionSnapshot
	err := sessionJSON.Unmarshal(data, &s)
	return s, err
}
