package convolution

import "math"

// normalize peak-normalizes ir in place to 0.9. Convolution wet gain
// is never boosted after the fact: all level control lives in the
// IR's own peak, not in a post-convolution multiplier.
func normalize(ir []float64) {
	peak := 0.0
	for _, v := range ir {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}
	scale := 0.9 / peak
	for i := range ir {
		ir[i] *= scale
	}
}
