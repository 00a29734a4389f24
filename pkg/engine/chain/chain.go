// Package chain implements the Effect Chain (C5): an ordered list of
// effects with per-slot bypass, reordering, and serialization.
package chain

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/modular-audio/dawcore/pkg/engine/effect"
)

var chainJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxDepth is the default maximum chain length.
const MaxDepth = 8

var (
	ErrChainFull       = errors.New("chain: at capacity")
	ErrDuplicateEffect = errors.New("chain: effect id already present")
	ErrIndexOutOfRange = errors.New("chain: index out of range")
)

// Chain is an ordered, ≤MaxDepth list of effects. Its input is the
// first effect's input; its output is the last effect's output, or
// the chain's own input when empty (identity wiring).
type Chain struct {
	effects  []*effect.Effect
	maxDepth int
}

// New creates an empty chain with the default max depth.
func New() *Chain {
	return &Chain{maxDepth: MaxDepth}
}

// Len reports the number of effects currently in the chain.
func (c *Chain) Len() int { return len(c.effects) }

// Add appends e to the end of the chain. Fails if the chain is at
// capacity or e's id is already present; each id appears at most once.
func (c *Chain) Add(e *effect.Effect) error {
	if len(c.effects) >= c.maxDepth {
		return ErrChainFull
	}
	for _, existing := range c.effects {
		if existing.ID == e.ID {
			return ErrDuplicateEffect
		}
	}
	c.effects = append(c.effects, e)
	return nil
}

// AddNew constructs a new effect of kind at sampleRate — applying the
// named factory preset first when presetName is non-empty — and
// appends it, the same "construct, then insert" path add_effect's
// optional preset argument drives. The constructed effect is returned
// even if presetName is unknown (the underlying error is still
// returned), since ApplyPreset leaves the effect at its defaults
// rather than failing construction.
func (c *Chain) AddNew(kind effect.Kind, sampleRate float64, presetName string) (*effect.Effect, error) {
	e, presetErr := effect.NewAutoWithPreset(kind, sampleRate, presetName)
	if err := c.Add(e); err != nil {
		return nil, err
	}
	return e, presetErr
}

// RemoveAt removes the effect at index.
func (c *Chain) RemoveAt(index int) error {
	if index < 0 || index >= len(c.effects) {
		return ErrIndexOutOfRange
	}
	c.effects = append(c.effects[:index], c.effects[index+1:]...)
	return nil
}

// Move relocates the effect at from to position to, shifting the
// intervening effects; rewiring only ever happens between blocks, so
// this is safe to call from the control thread at any time.
func (c *Chain) Move(from, to int) error {
	if from < 0 || from >= len(c.effects) || to < 0 || to >= len(c.effects) {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	e := c.effects[from]
	c.effects = append(c.effects[:from], c.effects[from+1:]...)
	c.effects = append(c.effects[:to], append([]*effect.Effect{e}, c.effects[to:]...)...)
	return nil
}

// BypassAt toggles the bypass flag on the effect at index.
func (c *Chain) BypassAt(index int, bypass bool) error {
	if index < 0 || index >= len(c.effects) {
		return ErrIndexOutOfRange
	}
	c.effects[index].Bypass = bypass
	return nil
}

// Clear removes every effect from the chain.
func (c *Chain) Clear() {
	c.effects = c.effects[:0]
}

// At returns the effect at index, or nil if out of range.
func (c *Chain) At(index int) *effect.Effect {
	if index < 0 || index >= len(c.effects) {
		return nil
	}
	return c.effects[index]
}

// Process runs blk through every effect in order. An empty chain
// leaves blk untouched (identity wiring).
func (c *Chain) Process(blk effect.Block, sampleRate float64) {
	for _, e := range c.effects {
		e.Process(blk, sampleRate)
	}
}

// Latency sums the per-effect processing latency across the chain.
func (c *Chain) Latency() int {
	total := 0
	for _, e := range c.effects {
		total += e.Latency()
	}
	return total
}

// Serialized is the external shape: an ordered list of serialized
// effects.
type Serialized struct {
	Effects []effect.Serialized `json:"effects"`
}

// Serialize captures the chain's order and per-slot state.
func (c *Chain) Serialize() Serialized {
	out := make([]effect.Serialized, len(c.effects))
	for i, e := range c.effects {
		out[i] = e.Serialize(i)
	}
	return Serialized{Effects: out}
}

// Encode renders a Serialized chain as the JSON payload persisted in a
// session file or sent across the UI bridge.
func (s Serialized) Encode() ([]byte, error) {
	return chainJSON.Marshal(s)
}

// DecodeSerialized parses a wire payload produced by Encode.
func DecodeSerialized(data []byte) (Serialized, error) {
	var s Serialized
	err := chainJSON.Unmarshal(data, &s)
	return s, err
}
