// Package convolution provides procedural impulse-response synthesis
// and FFT-accelerated partitioned convolution for the convolution
// reverb effect.
package convolution

import (
	"math"
	"math/rand"
)

// RoomType selects the procedural IR's early-reflection pattern.
type RoomType int

const (
	RoomSmall RoomType = iota
	RoomHall
	RoomPlate
)

// SynthesizeIR builds a stereo impulse response of decaySeconds length
// at sampleRate: white noise shaped by an exponential decay envelope,
// with a handful of early reflections scaled by room type, peak-
// normalized to 0.9 so the convolution effect never needs a wet-gain
// boost.
func SynthesizeIR(room RoomType, decaySeconds, sampleRate float64) [][]float64 {
	n := int(decaySeconds * sampleRate)
	if n < 1 {
		n = 1
	}
	ir := make([][]float64, 2)
	ir[0] = make([]float64, n)
	ir[1] = make([]float64, n)

	decayRate := 6.91 / (decaySeconds * sampleRate) // -60dB over decaySeconds

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		envelope := expDecay(float64(i), decayRate)
		ir[0][i] = (rng.Float64()*2 - 1) * envelope
		ir[1][i] = (rng.Float64()*2 - 1) * envelope
	}

	for _, tapMs := range earlyReflections(room) {
		tap := int(tapMs * sampleRate / 1000.0)
		if tap >= n {
			continue
		}
		gain := 0.6 * expDecay(float64(tap), decayRate)
		ir[0][tap] += gain
		ir[1][tap] += gain * 0.85 // slight de-correlation between channels
	}

	normalize(ir[0])
	normalize(ir[1])
	return ir
}

func earlyReflections(room RoomType) []float64 {
	switch room {
	case RoomSmall:
		return []float64{3, 7, 11, 17, 23}
	case RoomPlate:
		return []float64{1, 2, 4, 6, 9, 13}
	default: // RoomHall
		return []float64{12, 19, 27, 38, 51, 67, 84}
	}
}

func expDecay(sampleIndex, rate float64) float64 {
	return math.Exp(-rate * sampleIndex)
}
