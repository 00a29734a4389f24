// Package graph implements the audio graph runtime: instruments ->
// insert chains -> master bus, driven block by block from the
// scheduler's due events, with latency compensation.
package graph

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/modular-audio/dawcore/pkg/dsp"
	"github.com/modular-audio/dawcore/pkg/dsp/analysis"
	"github.com/modular-audio/dawcore/pkg/engine/instrument"
	"github.com/modular-audio/dawcore/pkg/engine/mixer"
	"github.com/modular-audio/dawcore/pkg/framework/pool"
	"github.com/modular-audio/dawcore/pkg/framework/scheduler"
)

var (
	ErrUnknownInstrument = errors.New("graph: unknown insert id")
	ErrScratchExhausted  = errors.New("graph: scratch pool exhausted, raise NewScratch's buffer count")
)

// route binds an instrument to the insert that sums its output.
type route struct {
	instrumentID int32
	insertID     string
	monoBuf      []float32 // acquired once at Prepare, reused every block
}

// insertBus is the persistent pair of scratch buffers an insert
// accumulates its routed instruments into. Built once in Prepare and
// reused every block rather than reallocated.
type insertBus struct {
	l, r []float32
}

// Graph owns every instrument, the mixer, and the compensating delay
// lines needed to keep all inserts phase-aligned at the master bus.
type Graph struct {
	sampleRate float64
	blockSize  int

	instruments map[int32]*instrument.Instrument
	routes      []route
	mix         *mixer.Mixer
	sched       *scheduler.Scheduler
	scratch     *pool.Scratch

	buses      map[string]*insertBus
	compDelays map[string]*compensatingDelay
	masterL    []float32
	masterR    []float32

	meterL, meterR               *analysis.PeakMeter
	meterScratchL, meterScratchR []float64
	corrMeter                    *analysis.CorrelationMeter

	prepared  bool
	softLimit bool
}

// Route describes one instrument's binding to the insert summing its
// output — the shape a session snapshot's "instruments" field embeds.
type Route struct {
	InstrumentID int32
	InsertID     string
}

// Routes reports every instrument->insert binding currently in the
// graph's fixed topology, in the order instruments were added.
func (g *Graph) Routes() []Route {
	out := make([]Route, len(g.routes))
	for i, r := range g.routes {
		out[i] = Route{InstrumentID: r.instrumentID, InsertID: r.insertID}
	}
	return out
}

// Correlation reports the master bus's current stereo correlation
// ([-1, +1]) and phase status, updated once per RenderBlock — the
// phase-scope counterpart to MasterLevels' peak meters.
func (g *Graph) Correlation() (coefficient float64, status analysis.PhaseStatus) {
	return g.corrMeter.GetCorrelation(), g.corrMeter.GetPhaseStatus()
}

// New builds a graph with its own scratch pool sized for blockSize.
// numScratchBuffers must cover 2*(distinct insert count) +
// (instrument count); size it generously at construction time since
// Prepare refuses to allocate more once the audio thread is running.
func New(sampleRate float64, blockSize int, numScratchBuffers int, mix *mixer.Mixer, sched *scheduler.Scheduler) *Graph {
	return &Graph{
		sampleRate:  sampleRate,
		blockSize:   blockSize,
		instruments: make(map[int32]*instrument.Instrument),
		mix:         mix,
		sched:       sched,
		scratch:     pool.NewScratch(blockSize, numScratchBuffers),
		buses:       make(map[string]*insertBus),
		compDelays:  make(map[string]*compensatingDelay),
		masterL:       make([]float32, blockSize),
		masterR:       make([]float32, blockSize),
		meterL:        analysis.NewPeakMeter(sampleRate),
		meterR:        analysis.NewPeakMeter(sampleRate),
		meterScratchL: make([]float64, blockSize),
		meterScratchR: make([]float64, blockSize),
		corrMeter:     analysis.NewCorrelationMeter(blockSize, sampleRate),
		softLimit:     true,
	}
}

// MasterLevels reports the master bus's current peak levels (linear,
// measured before the soft-limit/clip stage) for a UI meter — updated
// once per RenderBlock.
func (g *Graph) MasterLevels() (peakL, peakR float64) {
	return g.meterL.GetPeak(), g.meterR.GetPeak()
}

// AddInstrument registers an instrument and routes it to insertID.
// Must be called before Prepare; topology is fixed once rendering
// starts.
func (g *Graph) AddInstrument(in *instrument.Instrument, insertID string) error {
	if g.prepared {
		return errors.New("graph: cannot add instruments after Prepare")
	}
	if g.mix.Find(insertID) == nil && insertID != g.mix.Master().ID {
		return ErrUnknownInstrument
	}
	g.instruments[in.ID] = in
	g.routes = append(g.routes, route{instrumentID: in.ID, insertID: insertID})
	return nil
}

// Prepare acquires every persistent scratch buffer the topology needs
// — one mono buffer per routed instrument, one L/R pair per insert
// that has at least one instrument routed to it — exactly once.
// RenderBlock only ever zeroes and reuses these afterward.
func (g *Graph) Prepare() error {
	if g.prepared {
		return nil
	}
	for i, r := range g.routes {
		_, buf, ok := g.scratch.AcquireMono(g.blockSize)
		if !ok {
			return ErrScratchExhausted
		}
		g.routes[i].monoBuf = buf

		if _, exists := g.buses[r.insertID]; !exists {
			_, bl, okL := g.scratch.AcquireMono(g.blockSize)
			_, br, okR := g.scratch.AcquireMono(g.blockSize)
			if !okL || !okR {
				return ErrScratchExhausted
			}
			g.buses[r.insertID] = &insertBus{l: bl, r: br}
		}
	}
	g.prepared = true
	return nil
}

// SetSoftLimit toggles the master bus's soft-limit-vs-hard-clip mode.
func (g *Graph) SetSoftLimit(on bool) { g.softLimit = on }

// dispatchEvent routes one due scheduled event onto its instrument.
func (g *Graph) dispatchEvent(ev *pool.ScheduledEvent) {
	in, ok := g.instruments[ev.InstrumentID]
	if !ok {
		return
	}
	switch ev.Type {
	case pool.EventNoteOn:
		in.NoteOn(uint8(ev.Pitch), uint8(ev.Velocity))
	case pool.EventNoteOff:
		in.NoteOff(uint8(ev.Pitch), 0)
	}
}

// RenderBlock runs one full pass of the per-block algorithm: drain
// due scheduler events, render every instrument
// (in parallel, one goroutine per instrument — each instrument's
// render is independent of the others), route through its insert's
// chain and gain/pan, apply latency-compensation delay, sum to
// master, process the master chain, and write interleaved stereo into
// out (which must be at least 2*blockSize long). Must be called after
// Prepare.
func (g *Graph) RenderBlock(audioNow float64, blockStartSample int64, out []float32) error {
	if !g.prepared {
		if err := g.Prepare(); err != nil {
			return err
		}
	}

	g.sched.Tick(audioNow, blockStartSample, g.dispatchEvent)

	for _, bus := range g.buses {
		dsp.Clear(bus.l)
		dsp.Clear(bus.r)
	}
	dsp.Clear(g.masterL)
	dsp.Clear(g.masterR)

	grp, _ := errgroup.WithContext(context.Background())
	for _, r := range g.routes {
		in := g.instruments[r.instrumentID]
		buf := r.monoBuf
		grp.Go(func() error {
			in.Render(buf)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	for _, r := range g.routes {
		bus := g.buses[r.insertID]
		buf := r.monoBuf
		for i := 0; i < g.blockSize; i++ {
			bus.l[i] += buf[i]
			bus.r[i] += buf[i]
		}
	}

	maxLatency := g.mix.MaxLatency()
	for _, ins := range g.mix.Inserts() {
		bus, ok := g.buses[ins.ID]
		if !ok {
			continue
		}
		ins.Process(bus.l, bus.r, g.sampleRate)
		if !g.mix.Audible(ins) {
			continue
		}

		if compAmount := maxLatency - ins.Latency(); compAmount > 0 {
			g.compDelayFor(ins.ID, compAmount).Process(bus.l, bus.r)
		}

		for i := 0; i < g.blockSize; i++ {
			g.masterL[i] += bus.l[i]
			g.masterR[i] += bus.r[i]
		}
	}

	// Instruments routed straight to the master bus (no insert in
	// between) sum in dry; the master chain below is their only
	// processing stage.
	if bus, ok := g.buses[g.mix.Master().ID]; ok {
		for i := 0; i < g.blockSize; i++ {
			g.masterL[i] += bus.l[i]
			g.masterR[i] += bus.r[i]
		}
	}

	g.mix.Master().Process(g.masterL, g.masterR, g.sampleRate)

	for i := 0; i < g.blockSize; i++ {
		g.meterScratchL[i] = float64(g.masterL[i])
		g.meterScratchR[i] = float64(g.masterR[i])
	}
	g.meterL.Process(g.meterScratchL)
	g.meterR.Process(g.meterScratchR)
	g.corrMeter.Process(g.meterScratchL, g.meterScratchR)

	if g.softLimit {
		dsp.SoftClip(g.masterL, 1)
		dsp.SoftClip(g.masterR, 1)
	} else {
		dsp.Clip(g.masterL, 1)
		dsp.Clip(g.masterR, 1)
	}
	g.writeInterleaved(g.masterL, g.masterR, out)

	return nil
}

func (g *Graph) compDelayFor(insertID string, frames int) *compensatingDelay {
	cd, ok := g.compDelays[insertID]
	if !ok || cd.len() != frames {
		cd = newCompensatingDelay(frames)
		g.compDelays[insertID] = cd
	}
	return cd
}

// writeInterleaved packs already-limited L/R buffers into out; l and r
// must already be clipped or soft-limited to [-1, 1].
func (g *Graph) writeInterleaved(l, r []float32, out []float32) {
	for i := 0; i < g.blockSize; i++ {
		out[2*i] = l[i]
		out[2*i+1] = r[i]
	}
}
