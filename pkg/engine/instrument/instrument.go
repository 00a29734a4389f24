// Package instrument implements a polyphonic synthesizer voice bank
// built on framework/voice.Allocator, driven by MIDI note events and
// rendered into a private mono scratch buffer each block.
package instrument

import (
	"github.com/modular-audio/dawcore/pkg/framework/voice"
	"github.com/modular-audio/dawcore/pkg/midi"
)

// DefaultMaxVoices is the default polyphony for a new instrument.
const DefaultMaxVoices = 16

// Instrument owns a fixed pool of SynthVoice and an Allocator routing
// note events onto them.
type Instrument struct {
	ID         int32
	sampleRate float64

	voices    []*SynthVoice
	allocator *voice.Allocator

	mix []float32 // per-block mono accumulator, reused across calls
}

// New builds an instrument with maxVoices SynthVoices, each with
// unisonVoices oscillators.
func New(id int32, sampleRate float64, maxVoices, unisonVoices int, blockSize int) *Instrument {
	if maxVoices < 1 {
		maxVoices = DefaultMaxVoices
	}
	synthVoices := make([]*SynthVoice, maxVoices)
	allocatorVoices := make([]voice.Voice, maxVoices)
	for i := range synthVoices {
		synthVoices[i] = NewSynthVoice(sampleRate, unisonVoices)
		allocatorVoices[i] = synthVoices[i]
	}

	return &Instrument{
		ID:         id,
		sampleRate: sampleRate,
		voices:     synthVoices,
		allocator:  voice.NewAllocator(allocatorVoices),
		mix:        make([]float32, blockSize),
	}
}

// SetAllocationMode forwards to the underlying allocator.
func (in *Instrument) SetAllocationMode(mode voice.AllocationMode) { in.allocator.SetMode(mode) }

// SetStealingMode forwards to the underlying allocator.
func (in *Instrument) SetStealingMode(mode voice.StealingMode) { in.allocator.SetStealingMode(mode) }

// SetGlideTime sets portamento time on every voice and on the
// allocator (which gates mono/legato glide behavior).
func (in *Instrument) SetGlideTime(seconds float64) {
	in.allocator.SetGlideTime(seconds)
	for _, v := range in.voices {
		v.SetGlideTime(seconds)
	}
}

// SetUnisonDetune spreads detune across every voice's oscillators.
func (in *Instrument) SetUnisonDetune(cents float64) {
	in.allocator.SetUnisonDetune(cents)
	for _, v := range in.voices {
		v.SetUnisonDetune(cents)
	}
}

// SetFilter sets the base cutoff/resonance shared by every voice.
func (in *Instrument) SetFilter(cutoffHz, q float64) {
	for _, v := range in.voices {
		v.SetFilterCutoff(cutoffHz)
		v.SetFilterQ(q)
	}
}

// SetFilterMode selects the filter mode ("lowpass", "highpass",
// "bandpass", "notch") shared by every voice.
func (in *Instrument) SetFilterMode(mode string) {
	for _, v := range in.voices {
		v.SetFilterMode(mode)
	}
}

// SetAmpEnvelope configures the amplitude ADSR shared by every voice.
func (in *Instrument) SetAmpEnvelope(attack, decay, sustain, release float64) {
	for _, v := range in.voices {
		v.SetADSR(attack, decay, sustain, release)
	}
}

// SetFilterEnvelope configures the filter ADSR shared by every voice.
func (in *Instrument) SetFilterEnvelope(attack, decay, sustain, release float64) {
	for _, v := range in.voices {
		v.SetFilterEnvADSR(attack, decay, sustain, release)
	}
}

// ModMatrixFor returns the modulation matrix for voice slot i, so
// callers can wire sources/destinations per-voice (all voices of one
// instrument normally share the same routing, applied slot by slot).
func (in *Instrument) ModMatrixFor(i int) *Matrix {
	if i < 0 || i >= len(in.voices) {
		return nil
	}
	return in.voices[i].ModMatrix()
}

// AddModRoute adds the same routing to every voice's matrix.
func (in *Instrument) AddModRoute(slot ModSlot) {
	for _, v := range in.voices {
		v.ModMatrix().Add(slot)
	}
}

// NoteOn triggers a note through the allocator.
func (in *Instrument) NoteOn(note, velocity uint8) { in.allocator.NoteOn(note, velocity) }

// NoteOff releases a note through the allocator.
func (in *Instrument) NoteOff(note, velocity uint8) { in.allocator.NoteOff(note, velocity) }

// SetSustainPedal forwards to the allocator.
func (in *Instrument) SetSustainPedal(on bool) { in.allocator.SetSustainPedal(on) }

// HandleEvent dispatches a raw MIDI event (note on/off, sustain CC,
// pitch bend/aftertouch/mod-wheel feeding the modulation matrix).
func (in *Instrument) HandleEvent(event midi.Event) {
	switch e := event.(type) {
	case midi.ChannelPressureEvent:
		at := float64(e.Pressure) / 127.0
		for _, v := range in.voices {
			v.SetAftertouch(at)
		}
	case midi.ControlChangeEvent:
		if e.Controller == midi.CCModWheel {
			mw := float64(e.Value) / 127.0
			for _, v := range in.voices {
				v.SetModWheel(mw)
			}
			return
		}
		in.allocator.ProcessEvent(event)
	default:
		in.allocator.ProcessEvent(event)
	}
}

// ActiveVoiceCount reports how many voices are currently sounding.
func (in *Instrument) ActiveVoiceCount() int { return in.allocator.GetActiveVoiceCount() }

// Reset stops every voice and clears allocator state.
func (in *Instrument) Reset() { in.allocator.Reset() }

// Render sums every active voice into dst (mono), which must be at
// least blockSize long; it does not allocate in steady state —
// in.mix is reused across calls.
func (in *Instrument) Render(dst []float32) {
	n := len(dst)
	if len(in.mix) < n {
		in.mix = make([]float32, n) // only grows on block-size change, never steady state
	}
	for i := 0; i < n; i++ {
		dst[i] = 0
	}
	voiceBuf := in.mix[:n]
	for _, v := range in.voices {
		if !v.IsActive() {
			continue
		}
		v.Process(voiceBuf)
		for i := 0; i < n; i++ {
			dst[i] += voiceBuf[i]
		}
	}
}
