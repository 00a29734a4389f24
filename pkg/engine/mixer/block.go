package mixer

import "github.com/modular-audio/dawcore/pkg/engine/effect"

// chainBlock wraps a pair of L/R scratch slices as an effect.Block
// without copying, so the insert's chain processes in place.
func chainBlock(l, r []float32) effect.Block {
	return effect.Block{L: l, R: r}
}
