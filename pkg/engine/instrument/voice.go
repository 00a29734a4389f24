package instrument

import (
	"math"

	"github.com/modular-audio/dawcore/pkg/dsp/envelope"
	"github.com/modular-audio/dawcore/pkg/dsp/filter"
	"github.com/modular-audio/dawcore/pkg/dsp/oscillator"
	"github.com/modular-audio/dawcore/pkg/midi"
)

// oscVoice is one unison layer: an oscillator plus its fixed detune
// (cents) and level.
type oscVoice struct {
	osc    *oscillator.Oscillator
	detune float64 // cents
	level  float64
}

// SynthVoice is a single polyphonic voice: 1-7 unison oscillators, a
// multi-mode filter with its own envelope, an amplitude ADSR,
// portamento, and a modulation matrix. It implements voice.Voice so
// it plugs directly into framework/voice.Allocator.
type SynthVoice struct {
	sampleRate float64

	oscs []oscVoice

	filterMode string // "lowpass", "highpass", "bandpass", "notch"
	filter     *filter.SVF
	baseCutoff float64
	filterQ    float64

	ampEnv    *envelope.ADSR
	filterEnv *envelope.ADSR

	note     uint8
	velocity uint8
	active   bool
	age      int64

	currentFreq float64
	targetFreq  float64
	glideCoef   float64 // 0 = instant, >0 one-pole toward targetFreq
	glideTime   float64

	mod        *Matrix
	lfos       [4]*oscillator.Oscillator
	aftertouch float64
	modWheel   float64

	lastAmp       float64
	lastFilterEnv float64
}

// NewSynthVoice builds a voice with n unison oscillators (clamped to
// 1-7) and default ADSR/filter settings.
func NewSynthVoice(sampleRate float64, unisonVoices int) *SynthVoice {
	if unisonVoices < 1 {
		unisonVoices = 1
	}
	if unisonVoices > 7 {
		unisonVoices = 7
	}

	oscs := make([]oscVoice, unisonVoices)
	for i := range oscs {
		oscs[i] = oscVoice{osc: oscillator.New(sampleRate), level: 1.0 / float64(unisonVoices)}
	}

	v := &SynthVoice{
		sampleRate: sampleRate,
		oscs:       oscs,
		filterMode: "lowpass",
		filter:     filter.NewSVF(1),
		baseCutoff: 8000,
		filterQ:    0.707,
		ampEnv:     envelope.New(sampleRate),
		filterEnv:  envelope.New(sampleRate),
		mod:        NewMatrix(),
	}
	for i := range v.lfos {
		v.lfos[i] = oscillator.New(sampleRate)
		v.lfos[i].SetFrequency(2.0)
	}
	v.filter.SetFrequencyAndQ(sampleRate, v.baseCutoff, v.filterQ)
	return v
}

// SetFilterMode selects which of the filter's simultaneous outputs
// Process draws from each block: "lowpass", "highpass", "bandpass", or
// "notch". Unrecognized values fall back to lowpass.
func (v *SynthVoice) SetFilterMode(mode string) {
	switch mode {
	case "lowpass", "highpass", "bandpass", "notch":
		v.filterMode = mode
	default:
		v.filterMode = "lowpass"
	}
}

// ModMatrix exposes the voice's modulation routing table for editing.
func (v *SynthVoice) ModMatrix() *Matrix { return v.mod }

// SetUnisonDetune spreads the unison oscillators symmetrically around
// center by cents, one detune step per oscillator.
func (v *SynthVoice) SetUnisonDetune(cents float64) {
	n := len(v.oscs)
	if n == 1 {
		v.oscs[0].detune = 0
		return
	}
	for i := range v.oscs {
		spread := float64(i)/float64(n-1)*2 - 1 // -1..1
		v.oscs[i].detune = spread * cents
	}
}

// SetGlideTime sets the portamento time in seconds; 0 disables glide.
func (v *SynthVoice) SetGlideTime(seconds float64) {
	v.glideTime = seconds
	if seconds <= 0 {
		v.glideCoef = 0
		return
	}
	v.glideCoef = math.Exp(-1.0 / (seconds * v.sampleRate))
}

// SetFilterCutoff sets the base (unmodulated) filter cutoff in Hz.
func (v *SynthVoice) SetFilterCutoff(hz float64) {
	v.baseCutoff = hz
}

// SetFilterQ sets the filter resonance.
func (v *SynthVoice) SetFilterQ(q float64) {
	v.filterQ = q
}

// SetADSR configures the amplitude envelope.
func (v *SynthVoice) SetADSR(attack, decay, sustain, release float64) {
	v.ampEnv.SetADSR(attack, decay, sustain, release)
}

// SetFilterEnvADSR configures the filter envelope.
func (v *SynthVoice) SetFilterEnvADSR(attack, decay, sustain, release float64) {
	v.filterEnv.SetADSR(attack, decay, sustain, release)
}

// SetAftertouch and SetModWheel feed continuous controller values
// (0-1) into the modulation matrix as sources.
func (v *SynthVoice) SetAftertouch(value float64) { v.aftertouch = value }
func (v *SynthVoice) SetModWheel(value float64)   { v.modWheel = value }

// IsActive implements voice.Voice.
func (v *SynthVoice) IsActive() bool { return v.active }

// GetNote implements voice.Voice.
func (v *SynthVoice) GetNote() uint8 { return v.note }

// GetVelocity implements voice.Voice.
func (v *SynthVoice) GetVelocity() uint8 { return v.velocity }

// GetAmplitude implements voice.Voice (current envelope level, as of
// the last processed block — a pure read, it never advances the
// envelope).
func (v *SynthVoice) GetAmplitude() float64 {
	if !v.active {
		return 0
	}
	return v.lastAmp
}

// GetAge implements voice.Voice.
func (v *SynthVoice) GetAge() int64 { return v.age }

// TriggerNote implements voice.Voice. If the voice is already active
// (legato/glide case), the pitch glides to the new note instead of
// retriggering the envelopes.
func (v *SynthVoice) TriggerNote(note uint8, velocity uint8) {
	wasActive := v.active
	v.note = note
	v.velocity = velocity
	v.targetFreq = midi.NoteToFrequency(note, 440.0)
	if !wasActive {
		v.currentFreq = v.targetFreq
		v.age = 0
		v.ampEnv.Trigger()
		v.filterEnv.Trigger()
	} else if v.glideCoef == 0 {
		v.currentFreq = v.targetFreq
	}
	v.active = true
}

// ReleaseNote implements voice.Voice.
func (v *SynthVoice) ReleaseNote() {
	v.ampEnv.Release()
	v.filterEnv.Release()
}

// Stop implements voice.Voice: immediate silence, no release tail.
func (v *SynthVoice) Stop() {
	v.active = false
	v.ampEnv.Reset()
	v.filterEnv.Reset()
}

// Process implements voice.Voice, rendering one block of mono audio.
// Filter cutoff modulation is resolved once per block (matching the
// engine/effect multiband EQ's block-rate coefficient recompute);
// pitch glide and the amplitude/filter envelopes advance per sample.
func (v *SynthVoice) Process(output []float32) {
	if !v.active {
		for i := range output {
			output[i] = 0
		}
		return
	}

	srcValues := map[ModSource]float64{
		SourceVelocity:   float64(v.velocity) / 127.0,
		SourceAftertouch: v.aftertouch,
		SourceModWheel:   v.modWheel,
		SourceAmpEnv:     v.lastAmp,
		SourceFilterEnv:  v.lastFilterEnv,
	}
	for i, lfo := range v.lfos {
		srcValues[ModSource(int(SourceLFO1)+i)] = float64(lfo.Sine())
	}

	cutoffMod := v.mod.Resolve(DestFilterCutoff, srcValues)
	cutoff := v.baseCutoff * math.Pow(2, cutoffMod*4) // +/-4 octaves at full mod
	if cutoff < 20 {
		cutoff = 20
	}
	if cutoff > v.sampleRate*0.45 {
		cutoff = v.sampleRate * 0.45
	}
	v.filter.SetFrequencyAndQ(v.sampleRate, cutoff, v.filterQ)

	ampMod := v.mod.Resolve(DestAmplitude, srcValues)
	pitchModCents := v.mod.Resolve(DestPitch, srcValues) * 100 // +/-1 semitone at full mod

	for i := range output {
		if v.glideCoef != 0 {
			v.currentFreq = v.targetFreq + (v.currentFreq-v.targetFreq)*v.glideCoef
		} else {
			v.currentFreq = v.targetFreq
		}

		freq := v.currentFreq * math.Pow(2, pitchModCents/1200)

		sample := float32(0)
		for _, ov := range v.oscs {
			ov.osc.SetFrequency(freq * math.Pow(2, ov.detune/1200))
			sample += ov.osc.Sine() * float32(ov.level)
		}

		env := v.ampEnv.Next()
		fenv := v.filterEnv.Next()
		v.lastAmp = float64(env)
		v.lastFilterEnv = float64(fenv)

		amp := float64(env) * (1 + ampMod)
		if amp < 0 {
			amp = 0
		}
		output[i] = sample * float32(amp)
		v.age++
	}

	switch v.filterMode {
	case "highpass":
		v.filter.ProcessHighpass(output, 0)
	case "bandpass":
		v.filter.ProcessBandpass(output, 0)
	case "notch":
		v.filter.ProcessNotch(output, 0)
	default:
		v.filter.ProcessLowpass(output, 0)
	}

	if !v.ampEnv.IsActive() {
		v.active = false
	}
}
