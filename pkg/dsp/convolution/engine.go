package convolution

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Engine performs overlap-add FFT convolution of one stereo impulse
// response against a stream of blocks, one channel at a time. FFT size
// is chosen per IR length at construction and reused across calls;
// ProcessChannel still allocates its output, segment and spectrum
// buffers on every call.
type Engine struct {
	ir        [][]float64 // per-channel impulse response
	fftSize   int
	fft       *fourier.FFT
	overlap   [][]float64 // per-channel carry-over tail
	irSpectra [][]complex128
}

// NewEngine builds an Engine for a (possibly stereo) impulse response.
// Each channel's IR may be convolved independently against input
// blocks of any size up to fftSize/2.
func NewEngine(ir [][]float64) *Engine {
	maxLen := 0
	for _, ch := range ir {
		if len(ch) > maxLen {
			maxLen = len(ch)
		}
	}
	fftSize := nextPow2(maxLen*2 + 1)

	e := &Engine{
		ir:      ir,
		fftSize: fftSize,
		fft:     fourier.NewFFT(fftSize),
		overlap: make([][]float64, len(ir)),
	}
	for i, ch := range ir {
		e.overlap[i] = make([]float64, fftSize)
		padded := make([]float64, fftSize)
		copy(padded, ch)
		e.irSpectra = append(e.irSpectra, e.fft.Coefficients(nil, padded))
	}
	return e
}

// Latency reports the processing delay introduced by block-wise
// overlap-add; for a non-causal convolution this is zero since each
// output sample corresponds to the same input sample index.
func (e *Engine) Latency() int { return 0 }

// Reset clears the overlap tails.
func (e *Engine) Reset() {
	for i := range e.overlap {
		for j := range e.overlap[i] {
			e.overlap[i][j] = 0
		}
	}
}

// ProcessChannel convolves one channel of input against the engine's
// impulse response for that channel index (0=L, 1=R), returning a
// freshly-sized wet buffer the caller blends against dry.
func (e *Engine) ProcessChannel(channel int, input []float32) []float32 {
	if channel >= len(e.irSpectra) {
		channel = len(e.irSpectra) - 1
	}
	if channel < 0 {
		out := make([]float32, len(input))
		return out
	}

	n := len(input)
	maxSegment := e.fftSize - len(e.ir[channel]) + 1
	if maxSegment < 1 {
		maxSegment = 1
	}

	out := make([]float32, n)
	for start := 0; start < n; start += maxSegment {
		end := start + maxSegment
		if end > n {
			end = n
		}
		segment := make([]float64, e.fftSize)
		for i := start; i < end; i++ {
			segment[i-start] = float64(input[i])
		}

		spectrum := e.fft.Coefficients(nil, segment)
		for i := range spectrum {
			spectrum[i] *= e.irSpectra[channel][i]
		}
		conv := e.fft.Sequence(nil, spectrum)

		overlap := e.overlap[channel]
		for i := range conv {
			conv[i] += overlap[i]
		}

		segLen := end - start
		for i := 0; i < segLen; i++ {
			out[start+i] = float32(conv[i])
		}

		copy(overlap, conv[segLen:])
		for i := len(conv) - segLen; i < len(overlap); i++ {
			overlap[i] = 0
		}
	}
	return out
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
