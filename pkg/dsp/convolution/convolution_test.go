package convolution

import (
	"math"
	"testing"
)

func TestSynthesizeIRPeakNormalized(t *testing.T) {
	ir := SynthesizeIR(RoomHall, 0.5, 48000)
	for ch, samples := range ir {
		peak := 0.0
		for _, v := range samples {
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}
		if peak > 0.9001 {
			t.Fatalf("channel %d: expected peak <= 0.9, got %v", ch, peak)
		}
		if peak < 0.01 {
			t.Fatalf("channel %d: expected a non-trivial peak, got %v", ch, peak)
		}
	}
}

func TestEngineProcessChannelPreservesLength(t *testing.T) {
	ir := SynthesizeIR(RoomSmall, 0.05, 48000)
	eng := NewEngine(ir)

	input := make([]float32, 256)
	input[0] = 1.0
	out := eng.ProcessChannel(0, input)
	if len(out) != len(input) {
		t.Fatalf("expected output length %d, got %d", len(input), len(out))
	}
}

func TestEngineResetClearsOverlap(t *testing.T) {
	ir := SynthesizeIR(RoomSmall, 0.05, 48000)
	eng := NewEngine(ir)

	impulse := make([]float32, 64)
	impulse[0] = 1.0
	eng.ProcessChannel(0, impulse)
	eng.Reset()

	for _, tail := range eng.overlap {
		for _, v := range tail {
			if v != 0 {
				t.Fatal("expected overlap buffers cleared after Reset")
			}
		}
	}
}
