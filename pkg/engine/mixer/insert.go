// Package mixer implements the mixer insert channel strip: gain,
// pan, mute/solo, an effect chain, and pre/post-fader sends.
package mixer

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/google/uuid"

	"github.com/modular-audio/dawcore/pkg/dsp/pan"
	"github.com/modular-audio/dawcore/pkg/engine/chain"
)

var insertJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Send routes a copy of this insert's signal to another insert (an
// aux/return bus) at a fixed gain, either pre- or post-fader.
type Send struct {
	TargetID string  `json:"target_id"`
	Gain     float64 `json:"gain"`
	PreFader bool    `json:"pre_fader"`
}

// Insert is one channel strip: input -> chain -> gain -> pan ->
// (latency-comp delay, applied by the graph) -> sum to master.
type Insert struct {
	ID       string
	Name     string
	TrackID  string
	Chain    *chain.Chain
	Gain     float64 // linear
	Pan      float64 // [-1, +1]
	Mute     bool
	Solo     bool
	SoloSafe bool // exempt from solo-implied-mute (e.g. aux returns)
	Sends    []Send

	panLaw pan.Law
}

// New creates an insert at unity gain, centered pan, with an empty
// chain (identity-wired per chain.Chain's empty-chain rule).
func New(id, name string) *Insert {
	return &Insert{
		ID:     id,
		Name:   name,
		Chain:  chain.New(),
		Gain:   1.0,
		Pan:    0.0,
		panLaw: pan.ConstantPower,
	}
}

// NewAuto creates an insert the same way New does, assigning it a
// generated ID — for interactively created inserts (a UI "add track"
// action) with no natural caller-supplied identifier.
func NewAuto(name string) *Insert {
	return New(uuid.NewString(), name)
}

// AddSend appends a send route; if TargetID is already present, that
// send is replaced instead.
func (ins *Insert) AddSend(s Send) {
	for i, existing := range ins.Sends {
		if existing.TargetID == s.TargetID {
			ins.Sends[i] = s
			return
		}
	}
	ins.Sends = append(ins.Sends, s)
}

// RemoveSend drops a send route by target id.
func (ins *Insert) RemoveSend(targetID string) {
	for i, s := range ins.Sends {
		if s.TargetID == targetID {
			ins.Sends = append(ins.Sends[:i], ins.Sends[i+1:]...)
			return
		}
	}
}

// Process runs the insert's chain, then applies gain and pan in
// place over an interleaved-free L/R pair of buffers.
func (ins *Insert) Process(l, r []float32, sampleRate float64) {
	ins.Chain.Process(chainBlock(l, r), sampleRate)

	gain := float32(ins.Gain)
	for i := range l {
		l[i] *= gain
		r[i] *= gain
	}
	if ins.Pan != 0 {
		pan.ProcessStereo(l, r, float32(ins.Pan), ins.panLaw, l, r)
	}
}

// Latency is the sum of the insert's chain latency, fed into the
// graph's latency-compensation pass so every insert lands at the
// master bus phase-aligned.
func (ins *Insert) Latency() int { return ins.Chain.Latency() }

// audible reports whether this insert should be heard given the
// current solo state across the mixer: muted inserts are never
// audible; when any insert (other than solo-safe ones) is soloed,
// only soloed and solo-safe inserts are audible.
func (ins *Insert) audible(anySoloed bool) bool {
	if ins.Mute {
		return false
	}
	if !anySoloed || ins.SoloSafe {
		return true
	}
	return ins.Solo
}

// Serialized is the external shape: {id, name, gain, pan, sends, chain}.
type Serialized struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Gain  float64          `json:"gain"`
	Pan   float64          `json:"pan"`
	Mute  bool             `json:"mute"`
	Solo  bool             `json:"solo"`
	Sends []Send           `json:"sends"`
	Chain chain.Serialized `json:"chain"`
}

// Serialize captures the insert's strip settings, sends, and effect
// chain for persistence.
func (ins *Insert) Serialize() Serialized {
	return Serialized{
		ID:    ins.ID,
		Name:  ins.Name,
		Gain:  ins.Gain,
		Pan:   ins.Pan,
		Mute:  ins.Mute,
		Solo:  ins.Solo,
		Sends: append([]Send(nil), ins.Sends...),
		Chain: ins.Chain.Serialize(),
	}
}

// Deserialize applies a Serialized snapshot's strip settings and sends
// onto an already-constructed Insert; it does not rebuild the chain's
// effect instances (the caller owns construction of each effect kind
// and applies its own Serialized.Deserialize per slot).
func (ins *Insert) Deserialize(s Serialized) {
	ins.Name = s.Name
	ins.Gain = s.Gain
	ins.Pan = s.Pan
	ins.Mute = s.Mute
	ins.Solo = s.Solo
	ins.Sends = append([]Send(nil), s.Sends...)
}

// Encode renders a Serialized insert as the JSON payload persisted in
// a session file or sent across the UI bridge.
func (s Serialized) Encode() ([]byte, error) {
	return insertJSON.Marshal(s)
}

// DecodeSerialized parses a wire payload produced by Encode.
func DecodeSerialized(data []byte) (Serialized, error) {
	var s Serialized
	err := insertJSON.Unmarshal(data, &s)
	return s, err
}
