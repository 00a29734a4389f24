// Package effect implements the uniform Effect contract (C4): a tagged
// enum of effect kinds dispatched through one operation table, rather
// than a class hierarchy, per the "class hierarchies -> tagged
// variants" redesign note. Every kind shares parameter access, bypass,
// latency reporting, and serialization.
package effect

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/google/uuid"

	"github.com/modular-audio/dawcore/pkg/framework/param"
)

var effectJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind tags which concrete DSP backs an Effect instance.
type Kind string

const (
	KindDelay             Kind = "delay"
	KindModernDelay       Kind = "modern_delay"
	KindReverbAlgorithmic Kind = "reverb_algorithmic"
	KindReverbConvolution Kind = "reverb_convolution"
	KindWaveshaper        Kind = "waveshaper"
	KindChorus            Kind = "chorus"
	KindDistortion        Kind = "distortion"
	KindMaximizer         Kind = "maximizer"
	KindImager            Kind = "imager"
	KindMultibandEQ       Kind = "multiband_eq"
	KindBitcrusher        Kind = "bitcrusher"
	KindExpander          Kind = "expander"
	KindFlanger           Kind = "flanger"
	KindPhaser            Kind = "phaser"
	KindRingMod           Kind = "ring_mod"
	KindTremolo           Kind = "tremolo"
	KindTapeSaturation    Kind = "tape_saturation"
	KindTubeSaturation    Kind = "tube_saturation"
	KindIdentity          Kind = "identity"
)

// Block is one block of interleaved-free stereo audio: separate left
// and right sample slices of equal length, sized by the graph.
type Block struct {
	L []float32
	R []float32
}

// Len reports the block's frame count.
func (b Block) Len() int { return len(b.L) }

// Descriptor describes one effect parameter: name, range, default,
// unit, kind, and stream index into the effect's flat value array.
// String lookups happen only at this control boundary; the
// audio-thread hot path indexes by StreamIndex.
type Descriptor struct {
	Name         string
	Min          float64
	Max          float64
	Default      float64
	Unit         string
	Kind         param.SmoothingType
	Discrete     bool
	StreamIndex  int
}

// Processor is the behavior every effect kind implements. Process
// mutates blk in place. SetParam/GetParam index by stream position,
// not name, on the hot path; name resolution lives in Effect.
type Processor interface {
	Process(blk Block, sampleRate float64)
	SetParam(streamIndex int, value float64)
	GetParam(streamIndex int) float64
	Latency() int
	Reset()
}

// Effect is a polymorphic unit (C4): an id, a kind tag, a parameter
// value plane backed by SmoothedParameter per descriptor, bypass/
// enabled flags, and the concrete Processor it dispatches to.
type Effect struct {
	ID      string
	Kind    Kind
	Bypass  bool
	Enabled bool

	descriptors []Descriptor
	smoothed    []*param.SmoothedParameter
	proc        Processor
}

// New builds an Effect instance of the given kind with its descriptor
// table and backing Processor already constructed (see construct.go).
// Unknown kinds produce an identity pass-through so the chain remains
// valid rather than failing to construct.
func New(id string, kind Kind, sampleRate float64) *Effect {
	descriptors, proc := construct(kind, sampleRate)
	e := &Effect{
		ID:          id,
		Kind:        kind,
		Enabled:     true,
		descriptors: descriptors,
		proc:        proc,
	}
	e.smoothed = make([]*param.SmoothedParameter, len(descriptors))
	for i, d := range descriptors {
		p := &param.Parameter{Min: d.Min, Max: d.Max, DefaultValue: d.Default}
		p.SetPlainValue(d.Default)
		smoothingType := param.ExponentialSmoothing
		sp := param.NewSmoothedParameter(p, smoothingType, 0)
		if !d.Discrete {
			sp.UpdateSampleRate(sampleRate, 20.0)
		} else {
			sp.SetSmoothing(false)
		}
		e.smoothed[i] = sp
		proc.SetParam(d.StreamIndex, d.Default)
	}
	return e
}

// NewAuto builds an Effect the same way New does, assigning it a
// generated ID. Useful wherever an effect is created interactively
// (a UI "add effect" action) with no caller-supplied identifier to
// key it by.
func NewAuto(kind Kind, sampleRate float64) *Effect {
	return New(uuid.NewString(), kind, sampleRate)
}

// NewAutoWithPreset builds an Effect the same way NewAuto does, then
// applies the named factory preset if presetName is non-empty. An
// unknown preset name for the effect's kind is a no-op error the
// caller can surface to the UI; the effect itself is still returned
// at its default parameter values.
func NewAutoWithPreset(kind Kind, sampleRate float64, presetName string) (*Effect, error) {
	e := NewAuto(kind, sampleRate)
	if presetName == "" {
		return e, nil
	}
	if err := ApplyPreset(e, presetName); err != nil {
		return e, err
	}
	return e, nil
}

// Descriptors returns the effect's parameter descriptor table.
func (e *Effect) Descriptors() []Descriptor { return e.descriptors }

// SetParameter resolves name to a stream index and sets its target
// value, clamped to range. Unknown names return an error.
func (e *Effect) SetParameter(name string, value float64) error {
	for i, d := range e.descriptors {
		if d.Name != name {
			continue
		}
		if value < d.Min {
			value = d.Min
		} else if value > d.Max {
			value = d.Max
		}
		e.smoothed[i].SetPlainValue(value)
		if d.Discrete {
			e.proc.SetParam(d.StreamIndex, value)
		}
		return nil
	}
	return fmt.Errorf("effect: unknown parameter %q", name)
}

// GetParameter returns the effect's current plain (unsmoothed target)
// value for name.
func (e *Effect) GetParameter(name string) (float64, bool) {
	for i, d := range e.descriptors {
		if d.Name == name {
			return e.smoothed[i].GetPlainValue(), true
		}
	}
	return 0, false
}

// Parameters snapshots every parameter's current target value by name.
func (e *Effect) Parameters() map[string]float64 {
	out := make(map[string]float64, len(e.descriptors))
	for i, d := range e.descriptors {
		out[d.Name] = e.smoothed[i].GetPlainValue()
	}
	return out
}

// Latency reports the effect's processing latency in samples.
func (e *Effect) Latency() int {
	if e.proc == nil {
		return 0
	}
	return e.proc.Latency()
}

// Process advances every continuous parameter's smoother by one block
// (coarse, block-rate smoothing is sufficient since the DSP primitives
// below read a parameter once per block, not once per sample) and
// dispatches to the backing Processor unless bypassed.
func (e *Effect) Process(blk Block, sampleRate float64) {
	for i, d := range e.descriptors {
		if d.Discrete {
			continue
		}
		v := e.smoothed[i].GetSmoothedValue()
		e.proc.SetParam(d.StreamIndex, v)
	}
	if e.Bypass || !e.Enabled {
		return
	}
	e.proc.Process(blk, sampleRate)
}

// Reset clears the backing processor's internal DSP state.
func (e *Effect) Reset() {
	if e.proc != nil {
		e.proc.Reset()
	}
}

// Serialize produces the external shape:
// {id, kind, enabled, parameters, chain_index}. chainIndex is supplied
// by the owning chain, not stored on Effect itself.
type Serialized struct {
	ID         string             `json:"id"`
	Kind       Kind               `json:"kind"`
	Enabled    bool               `json:"enabled"`
	Bypass     bool               `json:"bypass"`
	Parameters map[string]float64 `json:"parameters"`
	ChainIndex int                `json:"chain_index"`
}

// serializedWire mirrors Serialized field-for-field except Parameters,
// which is read from either "parameters" or the legacy "settings" key
// so that sessions saved before the rename still load.
type serializedWire struct {
	ID         string             `json:"id"`
	Kind       Kind               `json:"kind"`
	Enabled    bool               `json:"enabled"`
	Bypass     bool               `json:"bypass"`
	Parameters map[string]float64 `json:"parameters"`
	Settings   map[string]float64 `json:"settings"`
	ChainIndex int                `json:"chain_index"`
}

// UnmarshalJSON accepts either "parameters" or the legacy "settings"
// key for the parameter map, preferring "parameters" when both are
// present.
func (s *Serialized) UnmarshalJSON(data []byte) error {
	var w serializedWire
	if err := effectJSON.Unmarshal(data, &w); err != nil {
		return err
	}
	params := w.Parameters
	if params == nil {
		params = w.Settings
	}
	*s = Serialized{
		ID:         w.ID,
		Kind:       w.Kind,
		Enabled:    w.Enabled,
		Bypass:     w.Bypass,
		Parameters: params,
		ChainIndex: w.ChainIndex,
	}
	return nil
}

// Encode renders a Serialized effect as the JSON payload persisted in
// a session file or sent across the UI bridge.
func (s Serialized) Encode() ([]byte, error) {
	return effectJSON.Marshal(s)
}

// DecodeSerialized parses a wire payload produced by Encode (or a
// legacy payload using "settings" instead of "parameters").
func DecodeSerialized(data []byte) (Serialized, error) {
	var s Serialized
	err := effectJSON.Unmarshal(data, &s)
	return s, err
}

// Serialize captures the effect's current state for persistence.
func (e *Effect) Serialize(chainIndex int) Serialized {
	return Serialized{
		ID:         e.ID,
		Kind:       e.Kind,
		Enabled:    e.Enabled,
		Bypass:     e.Bypass,
		Parameters: e.Parameters(),
		ChainIndex: chainIndex,
	}
}

// Deserialize applies a Serialized snapshot's enabled/bypass/parameter
// values onto an already-constructed Effect of the matching kind.
func (e *Effect) Deserialize(s Serialized) {
	e.Enabled = s.Enabled
	e.Bypass = s.Bypass
	for name, value := range s.Parameters {
		e.SetParameter(name, value)
	}
}
