package effect

import (
	"math"

	"github.com/modular-audio/dawcore/pkg/dsp/convolution"
	"github.com/modular-audio/dawcore/pkg/dsp/delay"
	"github.com/modular-audio/dawcore/pkg/dsp/distortion"
	"github.com/modular-audio/dawcore/pkg/dsp/dynamics"
	"github.com/modular-audio/dawcore/pkg/dsp/filter"
	"github.com/modular-audio/dawcore/pkg/dsp/imager"
	"github.com/modular-audio/dawcore/pkg/dsp/modulation"
	"github.com/modular-audio/dawcore/pkg/dsp/reverb"
	"github.com/modular-audio/dawcore/pkg/framework/param"
)

// construct returns the descriptor table and backing Processor for
// kind. Unknown kinds fall back to identityProcessor.
func construct(kind Kind, sampleRate float64) ([]Descriptor, Processor) {
	switch kind {
	case KindDelay:
		return delayDescriptors(), newPingPongDelay(sampleRate)
	case KindModernDelay:
		return modernDelayDescriptors(), newModernDelay(sampleRate)
	case KindReverbAlgorithmic:
		return reverbDescriptors(), newAlgorithmicReverb(sampleRate)
	case KindReverbConvolution:
		return convolutionReverbDescriptors(), newConvolutionReverb(sampleRate)
	case KindWaveshaper:
		return waveshaperDescriptors(), newWaveshaperProcessor()
	case KindChorus:
		return chorusDescriptors(), newChorusProcessor(sampleRate)
	case KindDistortion:
		return distortionDescriptors(), newDistortionProcessor()
	case KindMaximizer:
		return maximizerDescriptors(), newMaximizer(sampleRate)
	case KindImager:
		return imagerDescriptors(), newImagerProcessor()
	case KindMultibandEQ:
		return multibandDescriptors(), newMultibandEQ(sampleRate)
	case KindBitcrusher:
		return bitcrusherDescriptors(), newBitcrusherProcessor(sampleRate)
	case KindExpander:
		return expanderDescriptors(), newExpanderProcessor(sampleRate)
	case KindFlanger:
		return flangerDescriptors(), newFlangerProcessor(sampleRate)
	case KindPhaser:
		return phaserDescriptors(), newPhaserProcessor(sampleRate)
	case KindRingMod:
		return ringModDescriptors(sampleRate), newRingModProcessor(sampleRate)
	case KindTremolo:
		return tremoloDescriptors(), newTremoloProcessor(sampleRate)
	case KindTapeSaturation:
		return tapeSaturationDescriptors(), newTapeSaturationProcessor(sampleRate)
	case KindTubeSaturation:
		return tubeSaturationDescriptors(), newTubeSaturationProcessor(sampleRate)
	default:
		return nil, &identityProcessor{}
	}
}

// identityProcessor is the pass-through used both for KindIdentity and
// as the fallback for an unrecognized kind.
type identityProcessor struct{}

func (p *identityProcessor) Process(blk Block, sampleRate float64) {}
func (p *identityProcessor) SetParam(streamIndex int, value float64) {}
func (p *identityProcessor) GetParam(streamIndex int) float64 { return 0 }
func (p *identityProcessor) Latency() int { return 0 }
func (p *identityProcessor) Reset() {}

// --- Delay (ping-pong) ------------------------------------------------

const (
	delayTimeL = iota
	delayTimeR
	delayFeedback
	delayCross
	delayMix
	delayFilterHz
)

func delayDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "time_l", Min: 0.001, Max: 2.0, Default: 0.375, Unit: "s", StreamIndex: delayTimeL},
		{Name: "time_r", Min: 0.001, Max: 2.0, Default: 0.5, Unit: "s", StreamIndex: delayTimeR},
		{Name: "feedback", Min: 0, Max: 0.98, Default: 0.5, Unit: "", StreamIndex: delayFeedback},
		{Name: "cross", Min: 0, Max: 1, Default: 1.0, Unit: "", StreamIndex: delayCross},
		{Name: "mix", Min: 0, Max: 1, Default: 0.5, Unit: "", StreamIndex: delayMix},
		{Name: "filter_hz", Min: 200, Max: 20000, Default: 20000, Unit: "Hz", StreamIndex: delayFilterHz},
	}
}

type pingPongDelay struct {
	left, right *delay.Line
	filterL     *filter.Biquad
	filterR     *filter.Biquad
	sampleRate  float64
	vals        [6]float64
}

func newPingPongDelay(sampleRate float64) *pingPongDelay {
	d := &pingPongDelay{
		left:       delay.New(2.0, sampleRate),
		right:      delay.New(2.0, sampleRate),
		filterL:    filter.NewBiquad(1),
		filterR:    filter.NewBiquad(1),
		sampleRate: sampleRate,
	}
	d.filterL.SetLowpass(sampleRate, 20000, 0.707)
	d.filterR.SetLowpass(sampleRate, 20000, 0.707)
	return d
}

func (d *pingPongDelay) SetParam(i int, v float64) {
	d.vals[i] = v
	if i == delayFilterHz {
		d.filterL.SetLowpass(d.sampleRate, v, 0.707)
		d.filterR.SetLowpass(d.sampleRate, v, 0.707)
	}
}

func (d *pingPongDelay) GetParam(i int) float64 { return d.vals[i] }
func (d *pingPongDelay) Latency() int           { return 0 }

func (d *pingPongDelay) Reset() {
	d.left.Reset()
	d.right.Reset()
}

// Process implements cross-feeding ping-pong delay: the L tap feeds
// the R line's input (scaled by cross) and vice versa, each tap
// damped by a lowpass before re-entering its own line.
func (d *pingPongDelay) Process(blk Block, sampleRate float64) {
	samplesL := d.vals[delayTimeL] * sampleRate
	samplesR := d.vals[delayTimeR] * sampleRate
	fb := float32(d.vals[delayFeedback])
	cross := float32(d.vals[delayCross])
	mix := float32(d.vals[delayMix])

	for i := range blk.L {
		tapL := d.left.Tap(samplesL)
		tapR := d.right.Tap(samplesR)

		crossToR := tapL * cross
		crossToL := tapR * cross
		straightL := tapL * (1 - cross)
		straightR := tapR * (1 - cross)

		feedL := blk.L[i] + fb*(straightL+crossToL)
		feedR := blk.R[i] + fb*(straightR+crossToR)

		fbuf := [2]float32{feedL, feedR}
		d.filterL.Process(fbuf[0:1], 0)
		d.filterR.Process(fbuf[1:2], 0)
		feedL, feedR = fbuf[0], fbuf[1]

		d.left.Write(feedL)
		d.right.Write(feedR)

		blk.L[i] = blk.L[i]*(1-mix) + tapL*mix
		blk.R[i] = blk.R[i]*(1-mix) + tapR*mix
	}
}

// --- Modern delay (modulated, tape-style) ----------------------------

const (
	modernDelayTimeMs = iota
	modernDelayFeedback
	modernDelayMix
	modernDelayLFORate
	modernDelayLFODepth
)

func modernDelayDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "time_ms", Min: 1, Max: 1500, Default: 350, Unit: "ms", StreamIndex: modernDelayTimeMs},
		{Name: "feedback", Min: 0, Max: 0.95, Default: 0.35, StreamIndex: modernDelayFeedback},
		{Name: "mix", Min: 0, Max: 1, Default: 0.35, StreamIndex: modernDelayMix},
		{Name: "lfo_rate", Min: 0.01, Max: 10, Default: 0.5, Unit: "Hz", StreamIndex: modernDelayLFORate},
		{Name: "lfo_depth", Min: 0, Max: 10, Default: 2, Unit: "ms", StreamIndex: modernDelayLFODepth},
	}
}

type modernDelay struct {
	mod  *delay.ModulatedDelay
	vals [5]float64
}

func newModernDelay(sampleRate float64) *modernDelay {
	return &modernDelay{mod: delay.NewModulated(2.0, sampleRate)}
}

func (d *modernDelay) SetParam(i int, v float64) {
	d.vals[i] = v
	d.mod.SetCenterDelay(d.vals[modernDelayTimeMs])
	d.mod.SetLFO(d.vals[modernDelayLFORate], d.vals[modernDelayLFODepth])
}

func (d *modernDelay) GetParam(i int) float64 { return d.vals[i] }
func (d *modernDelay) Latency() int           { return 0 }
func (d *modernDelay) Reset()                 {}

func (d *modernDelay) Process(blk Block, sampleRate float64) {
	mix := float32(d.vals[modernDelayMix])
	for i := range blk.L {
		wetL := d.mod.Process(blk.L[i])
		wetR := d.mod.Process(blk.R[i])
		blk.L[i] = blk.L[i]*(1-mix) + wetL*mix
		blk.R[i] = blk.R[i]*(1-mix) + wetR*mix
	}
}

// --- Algorithmic reverb (wraps teacher's Freeverb) -------------------

const (
	reverbRoomSize = iota
	reverbDamping
	reverbWidth
	reverbWet
)

func reverbDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "room_size", Min: 0, Max: 1, Default: 0.5, StreamIndex: reverbRoomSize},
		{Name: "damping", Min: 0, Max: 1, Default: 0.5, StreamIndex: reverbDamping},
		{Name: "width", Min: 0, Max: 1, Default: 1.0, StreamIndex: reverbWidth},
		{Name: "wet", Min: 0, Max: 1, Default: 0.3, StreamIndex: reverbWet},
	}
}

type algorithmicReverb struct {
	fv   *reverb.Freeverb
	vals [4]float64
}

func newAlgorithmicReverb(sampleRate float64) *algorithmicReverb {
	return &algorithmicReverb{fv: reverb.NewFreeverb(sampleRate)}
}

func (r *algorithmicReverb) SetParam(i int, v float64) {
	r.vals[i] = v
	switch i {
	case reverbRoomSize:
		r.fv.SetRoomSize(v)
	case reverbDamping:
		r.fv.SetDamping(v)
	case reverbWidth:
		r.fv.SetWidth(v)
	case reverbWet:
		r.fv.SetWetLevel(v)
		r.fv.SetDryLevel(0) // dry/wet mix law applied below, not inside Freeverb
	}
}

func (r *algorithmicReverb) GetParam(i int) float64 { return r.vals[i] }
func (r *algorithmicReverb) Latency() int           { return 0 }
func (r *algorithmicReverb) Reset()                 { r.fv.Reset() }

// Process applies the dry/wet mix law explicitly: dry*(1-wet) +
// wet*y, never a gain-boosted variant.
func (r *algorithmicReverb) Process(blk Block, sampleRate float64) {
	wet := float32(r.vals[reverbWet])
	for i := range blk.L {
		wetL, wetR := r.fv.ProcessStereo(blk.L[i], blk.R[i])
		blk.L[i] = blk.L[i]*(1-wet) + wetL*wet
		blk.R[i] = blk.R[i]*(1-wet) + wetR*wet
	}
}

// --- Convolution reverb (NEW, gonum FFT convolution) -----------------

const (
	convRoomType = iota
	convDecayS
	convWet
)

func convolutionReverbDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "room_type", Min: 0, Max: 2, Default: 0, Discrete: true, StreamIndex: convRoomType},
		{Name: "decay_s", Min: 0.1, Max: 5.0, Default: 1.5, Unit: "s", StreamIndex: convDecayS},
		{Name: "wet", Min: 0, Max: 1, Default: 0.3, StreamIndex: convWet},
	}
}

type convolutionReverb struct {
	engine     *convolution.Engine
	sampleRate float64
	vals       [3]float64
	dirty      bool
}

func newConvolutionReverb(sampleRate float64) *convolutionReverb {
	c := &convolutionReverb{sampleRate: sampleRate, dirty: true}
	c.rebuild()
	return c
}

func (c *convolutionReverb) rebuild() {
	roomType := convolution.RoomType(int(c.vals[convRoomType]))
	ir := convolution.SynthesizeIR(roomType, c.vals[convDecayS], c.sampleRate)
	c.engine = convolution.NewEngine(ir)
	c.dirty = false
}

func (c *convolutionReverb) SetParam(i int, v float64) {
	c.vals[i] = v
	if i == convRoomType || i == convDecayS {
		c.dirty = true
	}
}

func (c *convolutionReverb) GetParam(i int) float64 { return c.vals[i] }
func (c *convolutionReverb) Latency() int {
	if c.engine == nil {
		return 0
	}
	return c.engine.Latency()
}

func (c *convolutionReverb) Reset() {
	if c.engine != nil {
		c.engine.Reset()
	}
}

func (c *convolutionReverb) Process(blk Block, sampleRate float64) {
	if c.dirty {
		c.rebuild()
	}
	wet := float32(c.vals[convWet])
	wetL := c.engine.ProcessChannel(0, blk.L)
	wetR := c.engine.ProcessChannel(1, blk.R)
	for i := range blk.L {
		blk.L[i] = blk.L[i]*(1-wet) + wetL[i]*wet
		blk.R[i] = blk.R[i]*(1-wet) + wetR[i]*wet
	}
}

// --- Waveshaper -------------------------------------------------------

const (
	waveshaperDrive = iota
	waveshaperMix
	waveshaperCurve
)

func waveshaperDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "drive", Min: 1, Max: 20, Default: 1, StreamIndex: waveshaperDrive},
		{Name: "mix", Min: 0, Max: 1, Default: 1.0, StreamIndex: waveshaperMix},
		{Name: "curve", Min: 0, Max: 6, Default: 0, Discrete: true, StreamIndex: waveshaperCurve},
	}
}

type waveshaperProcessor struct {
	shaper *distortion.Waveshaper
	vals   [3]float64
}

func newWaveshaperProcessor() *waveshaperProcessor {
	return &waveshaperProcessor{shaper: distortion.NewWaveshaper(distortion.CurveType(0))}
}

func (w *waveshaperProcessor) SetParam(i int, v float64) {
	w.vals[i] = v
	switch i {
	case waveshaperDrive:
		w.shaper.SetDrive(v)
	case waveshaperMix:
		w.shaper.SetMix(v)
	case waveshaperCurve:
		w.shaper.SetCurveType(distortion.CurveType(int(v)))
	}
}

func (w *waveshaperProcessor) GetParam(i int) float64 { return w.vals[i] }
func (w *waveshaperProcessor) Latency() int           { return 0 }
func (w *waveshaperProcessor) Reset()                 {}

func (w *waveshaperProcessor) Process(blk Block, sampleRate float64) {
	for i := range blk.L {
		blk.L[i] = float32(w.shaper.Process(float64(blk.L[i])))
		blk.R[i] = float32(w.shaper.Process(float64(blk.R[i])))
	}
}

// --- Distortion (tube/tape style, wraps teacher's waveshaper chain) --

const (
	distortionDrive = iota
	distortionTone
	distortionMix
)

func distortionDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "drive", Min: 1, Max: 20, Default: 4, StreamIndex: distortionDrive},
		{Name: "tone", Min: 200, Max: 18000, Default: 8000, Unit: "Hz", StreamIndex: distortionTone},
		{Name: "mix", Min: 0, Max: 1, Default: 1.0, StreamIndex: distortionMix},
	}
}

type distortionProcessor struct {
	shaper *distortion.Waveshaper
	tone   *filter.Biquad
	vals   [3]float64
}

func newDistortionProcessor() *distortionProcessor {
	d := &distortionProcessor{
		shaper: distortion.NewWaveshaper(distortion.CurveType(2)), // saturate
		tone:   filter.NewBiquad(1),
	}
	d.tone.SetLowpass(48000, 8000, 0.707)
	return d
}

func (d *distortionProcessor) SetParam(i int, v float64) {
	d.vals[i] = v
	switch i {
	case distortionDrive:
		d.shaper.SetDrive(v)
	case distortionTone:
		d.tone.SetLowpass(48000, v, 0.707)
	case distortionMix:
		d.shaper.SetMix(v)
	}
}

func (d *distortionProcessor) GetParam(i int) float64 { return d.vals[i] }
func (d *distortionProcessor) Latency() int           { return 0 }
func (d *distortionProcessor) Reset()                 {}

func (d *distortionProcessor) Process(blk Block, sampleRate float64) {
	for i := range blk.L {
		blk.L[i] = float32(d.shaper.Process(float64(blk.L[i])))
		blk.R[i] = float32(d.shaper.Process(float64(blk.R[i])))
	}
	d.tone.Process(blk.L, 0)
	d.tone.Process(blk.R, 0)
}

// --- Chorus -----------------------------------------------------------

const (
	chorusRate = iota
	chorusDepth
	chorusMix
	chorusVoices
)

func chorusDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "rate", Min: 0.05, Max: 5, Default: 0.5, Unit: "Hz", StreamIndex: chorusRate},
		{Name: "depth", Min: 0, Max: 20, Default: 5, Unit: "ms", StreamIndex: chorusDepth},
		{Name: "mix", Min: 0, Max: 1, Default: 0.5, StreamIndex: chorusMix},
		{Name: "voices", Min: 1, Max: 4, Default: 2, Discrete: true, StreamIndex: chorusVoices},
	}
}

type chorusProcessor struct {
	ch   *modulation.Chorus
	vals [4]float64
}

func newChorusProcessor(sampleRate float64) *chorusProcessor {
	return &chorusProcessor{ch: modulation.NewChorus(sampleRate)}
}

func (c *chorusProcessor) SetParam(i int, v float64) {
	c.vals[i] = v
	switch i {
	case chorusRate:
		c.ch.SetRate(v)
	case chorusDepth:
		c.ch.SetDepth(v)
	case chorusMix:
		c.ch.SetMix(v)
	case chorusVoices:
		c.ch.SetVoices(int(v))
	}
}

func (c *chorusProcessor) GetParam(i int) float64 { return c.vals[i] }
func (c *chorusProcessor) Latency() int           { return 0 }
func (c *chorusProcessor) Reset()                 { c.ch.Reset() }

func (c *chorusProcessor) Process(blk Block, sampleRate float64) {
	for i := range blk.L {
		outL, outR := c.ch.ProcessStereo(blk.L[i], blk.R[i])
		blk.L[i] = outL
		blk.R[i] = outR
	}
}

// --- Maximizer (gain -> saturator -> brick-wall limiter; no makeup
// gain stage follows the limiter) ---

const (
	maxInputGain = iota
	maxCeiling
	maxRelease
)

func maximizerDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "input_gain", Min: 0, Max: 24, Default: 0, Unit: "dB", StreamIndex: maxInputGain},
		{Name: "ceiling", Min: -3, Max: 0, Default: -0.3, Unit: "dB", StreamIndex: maxCeiling},
		{Name: "release", Min: 0.01, Max: 1.0, Default: 0.1, Unit: "s", StreamIndex: maxRelease},
	}
}

type maximizer struct {
	shaper  *distortion.Waveshaper
	limiter *dynamics.Limiter
	vals    [3]float64
}

func newMaximizer(sampleRate float64) *maximizer {
	m := &maximizer{
		shaper:  distortion.NewWaveshaper(distortion.CurveType(1)), // softClip
		limiter: dynamics.NewLimiter(sampleRate),
	}
	m.shaper.SetMix(1.0)
	m.shaper.SetDrive(1.0)
	m.limiter.SetThreshold(-0.3)
	return m
}

func (m *maximizer) SetParam(i int, v float64) {
	m.vals[i] = v
	switch i {
	case maxCeiling:
		m.limiter.SetThreshold(v)
	case maxRelease:
		m.limiter.SetRelease(v)
	}
}

func (m *maximizer) GetParam(i int) float64 { return m.vals[i] }
func (m *maximizer) Latency() int           { return 0 }
func (m *maximizer) Reset()                 { m.limiter.Reset() }

func (m *maximizer) Process(blk Block, sampleRate float64) {
	gain := float32(dbToLinear(m.vals[maxInputGain]))
	for i := range blk.L {
		blk.L[i] = float32(m.shaper.Process(float64(blk.L[i] * gain)))
		blk.R[i] = float32(m.shaper.Process(float64(blk.R[i] * gain)))
	}
	m.limiter.ProcessStereo(blk.L, blk.R, blk.L, blk.R)
}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// --- Imager (NEW, mid/side width law) --------------------------------

const (
	imagerWidth = iota
)

func imagerDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "width", Min: 0, Max: 2, Default: 1.0, StreamIndex: imagerWidth},
	}
}

type imagerProcessor struct {
	vals [1]float64
}

func newImagerProcessor() *imagerProcessor { return &imagerProcessor{vals: [1]float64{1.0}} }

func (im *imagerProcessor) SetParam(i int, v float64) { im.vals[i] = v }
func (im *imagerProcessor) GetParam(i int) float64    { return im.vals[i] }
func (im *imagerProcessor) Latency() int              { return 0 }
func (im *imagerProcessor) Reset()                    {}

func (im *imagerProcessor) Process(blk Block, sampleRate float64) {
	width := im.vals[imagerWidth]
	for i := range blk.L {
		l, r := imager.ApplyWidth(blk.L[i], blk.R[i], width)
		blk.L[i] = l
		blk.R[i] = r
	}
}

// --- Multiband EQ (3-band biquad) -------------------------------------

const (
	eqLowGain = iota
	eqMidGain
	eqHighGain
	eqLowFreq
	eqHighFreq
)

func multibandDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "low_gain", Min: -24, Max: 24, Default: 0, Unit: "dB", StreamIndex: eqLowGain},
		{Name: "mid_gain", Min: -24, Max: 24, Default: 0, Unit: "dB", StreamIndex: eqMidGain},
		{Name: "high_gain", Min: -24, Max: 24, Default: 0, Unit: "dB", StreamIndex: eqHighGain},
		{Name: "low_freq", Min: 40, Max: 1000, Default: 200, Unit: "Hz", StreamIndex: eqLowFreq},
		{Name: "high_freq", Min: 1000, Max: 16000, Default: 4000, Unit: "Hz", StreamIndex: eqHighFreq},
	}
}

type multibandEQ struct {
	lowL, lowR   *filter.Biquad
	midL, midR   *filter.Biquad
	highL, highR *filter.Biquad
	sampleRate   float64
	vals         [5]float64
}

func newMultibandEQ(sampleRate float64) *multibandEQ {
	m := &multibandEQ{
		lowL: filter.NewBiquad(1), lowR: filter.NewBiquad(1),
		midL: filter.NewBiquad(1), midR: filter.NewBiquad(1),
		highL: filter.NewBiquad(1), highR: filter.NewBiquad(1),
		sampleRate: sampleRate,
	}
	m.vals = [5]float64{0, 0, 0, 200, 4000}
	m.recompute()
	return m
}

func (m *multibandEQ) recompute() {
	low, mid, high := m.vals[eqLowFreq], 1000.0, m.vals[eqHighFreq]
	m.lowL.SetLowShelf(m.sampleRate, low, 0.707, m.vals[eqLowGain])
	m.lowR.SetLowShelf(m.sampleRate, low, 0.707, m.vals[eqLowGain])
	m.midL.SetPeakingEQ(m.sampleRate, mid, 0.707, m.vals[eqMidGain])
	m.midR.SetPeakingEQ(m.sampleRate, mid, 0.707, m.vals[eqMidGain])
	m.highL.SetHighShelf(m.sampleRate, high, 0.707, m.vals[eqHighGain])
	m.highR.SetHighShelf(m.sampleRate, high, 0.707, m.vals[eqHighGain])
}

func (m *multibandEQ) SetParam(i int, v float64) {
	m.vals[i] = v
	m.recompute()
}

func (m *multibandEQ) GetParam(i int) float64 { return m.vals[i] }
func (m *multibandEQ) Latency() int           { return 0 }

func (m *multibandEQ) Reset() {
	m.lowL.Reset()
	m.lowR.Reset()
	m.midL.Reset()
	m.midR.Reset()
	m.highL.Reset()
	m.highR.Reset()
}

func (m *multibandEQ) Process(blk Block, sampleRate float64) {
	m.lowL.Process(blk.L, 0)
	m.midL.Process(blk.L, 0)
	m.highL.Process(blk.L, 0)
	m.lowR.Process(blk.R, 0)
	m.midR.Process(blk.R, 0)
	m.highR.Process(blk.R, 0)
}

var _ = param.ExponentialSmoothing

// --- Bitcrusher (lo-fi bit/sample-rate reduction) ---------------------

const (
	crushBitDepth = iota
	crushSampleRateRatio
	crushMix
)

func bitcrusherDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "bit_depth", Min: 1, Max: 24, Default: 16, Discrete: true, StreamIndex: crushBitDepth},
		{Name: "sample_rate_ratio", Min: 0.01, Max: 1.0, Default: 1.0, StreamIndex: crushSampleRateRatio},
		{Name: "mix", Min: 0, Max: 1, Default: 1.0, StreamIndex: crushMix},
	}
}

// bitcrusherProcessor runs one BitCrusher per channel: BitCrusher
// carries per-instance anti-alias filter and DC-blocker state, so a
// shared instance would bleed L into R.
type bitcrusherProcessor struct {
	l, r *distortion.BitCrusher
	vals [3]float64
}

func newBitcrusherProcessor(sampleRate float64) *bitcrusherProcessor {
	return &bitcrusherProcessor{
		l: distortion.NewBitCrusher(sampleRate),
		r: distortion.NewBitCrusher(sampleRate),
	}
}

func (b *bitcrusherProcessor) SetParam(i int, v float64) {
	b.vals[i] = v
	switch i {
	case crushBitDepth:
		b.l.SetBitDepth(int(v))
		b.r.SetBitDepth(int(v))
	case crushSampleRateRatio:
		b.l.SetSampleRateRatio(v)
		b.r.SetSampleRateRatio(v)
	case crushMix:
		b.l.SetMix(v)
		b.r.SetMix(v)
	}
}

func (b *bitcrusherProcessor) GetParam(i int) float64 { return b.vals[i] }
func (b *bitcrusherProcessor) Latency() int           { return 0 }
func (b *bitcrusherProcessor) Reset()                 {}

func (b *bitcrusherProcessor) Process(blk Block, sampleRate float64) {
	for i := range blk.L {
		blk.L[i] = float32(b.l.Process(float64(blk.L[i])))
		blk.R[i] = float32(b.r.Process(float64(blk.R[i])))
	}
}

// --- Expander (downward, linked-stereo detection) ---------------------

const (
	expThreshold = iota
	expRatio
	expAttack
	expRelease
	expRange
)

func expanderDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "threshold", Min: -60, Max: 0, Default: -40, Unit: "dB", StreamIndex: expThreshold},
		{Name: "ratio", Min: 1, Max: 20, Default: 2, StreamIndex: expRatio},
		{Name: "attack", Min: 0.0001, Max: 1.0, Default: 0.001, Unit: "s", StreamIndex: expAttack},
		{Name: "release", Min: 0.001, Max: 2.0, Default: 0.1, Unit: "s", StreamIndex: expRelease},
		{Name: "range", Min: -60, Max: 0, Default: -40, Unit: "dB", StreamIndex: expRange},
	}
}

type expanderProcessor struct {
	exp  *dynamics.Expander
	vals [5]float64
}

func newExpanderProcessor(sampleRate float64) *expanderProcessor {
	return &expanderProcessor{exp: dynamics.NewExpander(sampleRate)}
}

func (e *expanderProcessor) SetParam(i int, v float64) {
	e.vals[i] = v
	switch i {
	case expThreshold:
		e.exp.SetThreshold(v)
	case expRatio:
		e.exp.SetRatio(v)
	case expAttack:
		e.exp.SetAttack(v)
	case expRelease:
		e.exp.SetRelease(v)
	case expRange:
		e.exp.SetRange(v)
	}
}

func (e *expanderProcessor) GetParam(i int) float64 { return e.vals[i] }
func (e *expanderProcessor) Latency() int           { return 0 }
func (e *expanderProcessor) Reset()                 { e.exp.Reset() }

func (e *expanderProcessor) Process(blk Block, sampleRate float64) {
	e.exp.ProcessStereo(blk.L, blk.R, blk.L, blk.R)
}

// --- Flanger ------------------------------------------------------------

const (
	flangerRate = iota
	flangerDepth
	flangerDelay
	flangerFeedback
	flangerMix
)

func flangerDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "rate", Min: 0.01, Max: 20, Default: 0.5, Unit: "Hz", StreamIndex: flangerRate},
		{Name: "depth", Min: 0, Max: 10, Default: 2, Unit: "ms", StreamIndex: flangerDepth},
		{Name: "delay", Min: 0.1, Max: 10, Default: 5, Unit: "ms", StreamIndex: flangerDelay},
		{Name: "feedback", Min: -0.99, Max: 0.99, Default: 0.5, StreamIndex: flangerFeedback},
		{Name: "mix", Min: 0, Max: 1, Default: 0.5, StreamIndex: flangerMix},
	}
}

type flangerProcessor struct {
	fl   *modulation.Flanger
	vals [5]float64
}

func newFlangerProcessor(sampleRate float64) *flangerProcessor {
	return &flangerProcessor{fl: modulation.NewFlanger(sampleRate)}
}

func (f *flangerProcessor) SetParam(i int, v float64) {
	f.vals[i] = v
	switch i {
	case flangerRate:
		f.fl.SetRate(v)
	case flangerDepth:
		f.fl.SetDepth(v)
	case flangerDelay:
		f.fl.SetDelay(v)
	case flangerFeedback:
		f.fl.SetFeedback(v)
	case flangerMix:
		f.fl.SetMix(v)
	}
}

func (f *flangerProcessor) GetParam(i int) float64 { return f.vals[i] }
func (f *flangerProcessor) Latency() int           { return 0 }
func (f *flangerProcessor) Reset()                 { f.fl.Reset() }

func (f *flangerProcessor) Process(blk Block, sampleRate float64) {
	for i := range blk.L {
		blk.L[i], blk.R[i] = f.fl.ProcessStereo(blk.L[i], blk.R[i])
	}
}

// --- Phaser ---------------------------------------------------------------

const (
	phaserRate = iota
	phaserDepth
	phaserCenterFreq
	phaserFeedback
	phaserMix
	phaserStages
)

func phaserDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "rate", Min: 0.01, Max: 10, Default: 0.5, Unit: "Hz", StreamIndex: phaserRate},
		{Name: "depth", Min: 0, Max: 1, Default: 0.5, StreamIndex: phaserDepth},
		{Name: "center_freq", Min: 100, Max: 4000, Default: 1000, Unit: "Hz", StreamIndex: phaserCenterFreq},
		{Name: "feedback", Min: -0.99, Max: 0.99, Default: 0.5, StreamIndex: phaserFeedback},
		{Name: "mix", Min: 0, Max: 1, Default: 0.5, StreamIndex: phaserMix},
		{Name: "stages", Min: 2, Max: 8, Default: 4, Discrete: true, StreamIndex: phaserStages},
	}
}

type phaserProcessor struct {
	ph   *modulation.Phaser
	vals [6]float64
}

func newPhaserProcessor(sampleRate float64) *phaserProcessor {
	return &phaserProcessor{ph: modulation.NewPhaser(sampleRate)}
}

func (p *phaserProcessor) SetParam(i int, v float64) {
	p.vals[i] = v
	switch i {
	case phaserRate:
		p.ph.SetRate(v)
	case phaserDepth:
		p.ph.SetDepth(v)
	case phaserCenterFreq:
		p.ph.SetCenterFrequency(v)
	case phaserFeedback:
		p.ph.SetFeedback(v)
	case phaserMix:
		p.ph.SetMix(v)
	case phaserStages:
		p.ph.SetStages(int(v))
	}
}

func (p *phaserProcessor) GetParam(i int) float64 { return p.vals[i] }
func (p *phaserProcessor) Latency() int           { return 0 }
func (p *phaserProcessor) Reset()                 { p.ph.Reset() }

func (p *phaserProcessor) Process(blk Block, sampleRate float64) {
	for i := range blk.L {
		blk.L[i], blk.R[i] = p.ph.ProcessStereo(blk.L[i], blk.R[i])
	}
}

// --- Ring modulator ---------------------------------------------------

const (
	ringFrequency = iota
	ringMix
	ringWaveform
)

func ringModDescriptors(sampleRate float64) []Descriptor {
	return []Descriptor{
		{Name: "frequency", Min: 0.1, Max: sampleRate / 2, Default: 440, Unit: "Hz", StreamIndex: ringFrequency},
		{Name: "mix", Min: 0, Max: 1, Default: 0.5, StreamIndex: ringMix},
		{Name: "waveform", Min: 0, Max: 4, Default: 0, Discrete: true, StreamIndex: ringWaveform},
	}
}

type ringModProcessor struct {
	rm   *modulation.RingModulator
	vals [3]float64
}

func newRingModProcessor(sampleRate float64) *ringModProcessor {
	return &ringModProcessor{rm: modulation.NewRingModulator(sampleRate)}
}

func (r *ringModProcessor) SetParam(i int, v float64) {
	r.vals[i] = v
	switch i {
	case ringFrequency:
		r.rm.SetFrequency(v)
	case ringMix:
		r.rm.SetMix(v)
	case ringWaveform:
		r.rm.SetWaveform(modulation.Waveform(int(v)))
	}
}

func (r *ringModProcessor) GetParam(i int) float64 { return r.vals[i] }
func (r *ringModProcessor) Latency() int           { return 0 }
func (r *ringModProcessor) Reset()                 { r.rm.Reset() }

func (r *ringModProcessor) Process(blk Block, sampleRate float64) {
	for i := range blk.L {
		blk.L[i], blk.R[i] = r.rm.ProcessStereo(blk.L[i], blk.R[i])
	}
}

// --- Tremolo ------------------------------------------------------------

const (
	tremoloRate = iota
	tremoloDepth
	tremoloMode
)

func tremoloDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "rate", Min: 0.01, Max: 20, Default: 5, Unit: "Hz", StreamIndex: tremoloRate},
		{Name: "depth", Min: 0, Max: 1, Default: 0.5, StreamIndex: tremoloDepth},
		{Name: "mode", Min: 0, Max: 1, Default: 0, Discrete: true, StreamIndex: tremoloMode},
	}
}

type tremoloProcessor struct {
	tr   *modulation.Tremolo
	vals [3]float64
}

func newTremoloProcessor(sampleRate float64) *tremoloProcessor {
	tr := modulation.NewTremolo(sampleRate)
	tr.SetStereo(true)
	tr.SetStereoPhase(0.5) // half-cycle L/R offset for stereo movement
	return &tremoloProcessor{tr: tr}
}

func (t *tremoloProcessor) SetParam(i int, v float64) {
	t.vals[i] = v
	switch i {
	case tremoloRate:
		t.tr.SetRate(v)
	case tremoloDepth:
		t.tr.SetDepth(v)
	case tremoloMode:
		t.tr.SetMode(modulation.TremoloMode(int(v)))
	}
}

func (t *tremoloProcessor) GetParam(i int) float64 { return t.vals[i] }
func (t *tremoloProcessor) Latency() int           { return 0 }
func (t *tremoloProcessor) Reset()                 { t.tr.Reset() }

func (t *tremoloProcessor) Process(blk Block, sampleRate float64) {
	for i := range blk.L {
		blk.L[i], blk.R[i] = t.tr.ProcessStereo(blk.L[i], blk.R[i])
	}
}

// --- Tape saturation ----------------------------------------------------

const (
	tapeSaturation = iota
	tapeCompression
	tapeFlutter
	tapeWarmth
	tapeMix
)

func tapeSaturationDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "saturation", Min: 0, Max: 1, Default: 0.5, StreamIndex: tapeSaturation},
		{Name: "compression", Min: 0, Max: 1, Default: 0.5, StreamIndex: tapeCompression},
		{Name: "flutter", Min: 0, Max: 1, Default: 0.0, StreamIndex: tapeFlutter},
		{Name: "warmth", Min: 0, Max: 1, Default: 0.5, StreamIndex: tapeWarmth},
		{Name: "mix", Min: 0, Max: 1, Default: 1.0, StreamIndex: tapeMix},
	}
}

type tapeSaturationProcessor struct {
	tape                   *distortion.TapeSaturation
	vals                   [5]float64
	inL, inR, outL, outR   []float64 // scratch, grown lazily on block-size change
}

func newTapeSaturationProcessor(sampleRate float64) *tapeSaturationProcessor {
	return &tapeSaturationProcessor{tape: distortion.NewTapeSaturation(sampleRate)}
}

func (t *tapeSaturationProcessor) SetParam(i int, v float64) {
	t.vals[i] = v
	switch i {
	case tapeSaturation:
		t.tape.SetSaturation(v)
	case tapeCompression:
		t.tape.SetCompression(v)
	case tapeFlutter:
		t.tape.SetFlutter(v)
	case tapeWarmth:
		t.tape.SetWarmth(v)
	case tapeMix:
		t.tape.SetMix(v)
	}
}

func (t *tapeSaturationProcessor) GetParam(i int) float64 { return t.vals[i] }
func (t *tapeSaturationProcessor) Latency() int           { return 0 }
func (t *tapeSaturationProcessor) Reset()                 { t.tape.Reset() }

func (t *tapeSaturationProcessor) Process(blk Block, sampleRate float64) {
	n := len(blk.L)
	if len(t.inL) < n {
		t.inL = make([]float64, n)
		t.inR = make([]float64, n)
		t.outL = make([]float64, n)
		t.outR = make([]float64, n)
	}
	inL, inR, outL, outR := t.inL[:n], t.inR[:n], t.outL[:n], t.outR[:n]
	for i := range blk.L {
		inL[i] = float64(blk.L[i])
		inR[i] = float64(blk.R[i])
	}
	t.tape.ProcessStereo(inL, inR, outL, outR)
	for i := range blk.L {
		blk.L[i] = float32(outL[i])
		blk.R[i] = float32(outR[i])
	}
}

// --- Tube saturation ------------------------------------------------------

const (
	tubeDrive = iota
	tubeBias
	tubeMix
	tubeWarmth
)

func tubeSaturationDescriptors() []Descriptor {
	return []Descriptor{
		{Name: "drive", Min: 1, Max: 10, Default: 2, StreamIndex: tubeDrive},
		{Name: "bias", Min: -1, Max: 1, Default: 0, StreamIndex: tubeBias},
		{Name: "mix", Min: 0, Max: 1, Default: 1.0, StreamIndex: tubeMix},
		{Name: "warmth", Min: 0, Max: 1, Default: 0.5, StreamIndex: tubeWarmth},
	}
}

// tubeSaturationProcessor runs one TubeSaturator per channel: each
// carries its own pre/post filter and hysteresis state, so sharing one
// instance across L/R would couple the channels.
type tubeSaturationProcessor struct {
	l, r *distortion.TubeSaturator
	vals [4]float64
}

func newTubeSaturationProcessor(sampleRate float64) *tubeSaturationProcessor {
	return &tubeSaturationProcessor{
		l: distortion.NewTubeSaturator(sampleRate),
		r: distortion.NewTubeSaturator(sampleRate),
	}
}

func (t *tubeSaturationProcessor) SetParam(i int, v float64) {
	t.vals[i] = v
	switch i {
	case tubeDrive:
		t.l.SetDrive(v)
		t.r.SetDrive(v)
	case tubeBias:
		t.l.SetBias(v)
		t.r.SetBias(v)
	case tubeMix:
		t.l.SetMix(v)
		t.r.SetMix(v)
	case tubeWarmth:
		t.l.SetWarmth(v)
		t.r.SetWarmth(v)
	}
}

func (t *tubeSaturationProcessor) GetParam(i int) float64 { return t.vals[i] }
func (t *tubeSaturationProcessor) Latency() int           { return 0 }
func (t *tubeSaturationProcessor) Reset()                 {}

func (t *tubeSaturationProcessor) Process(blk Block, sampleRate float64) {
	for i := range blk.L {
		blk.L[i] = float32(t.l.Process(float64(blk.L[i])))
		blk.R[i] = float32(t.r.Process(float64(blk.R[i])))
	}
}
