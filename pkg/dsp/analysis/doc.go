// Package analysis provides audio analysis tools for the audio engine.
//
// This package includes a comprehensive set of analysis tools commonly used
// in audio processing and metering:
//
// Level Metering:
//   - Peak meter with hold and decay
//   - RMS (Root Mean Square) meter
//   - LUFS meter (ITU-R BS.1770-4 compliant)
//   - Momentary, short-term, and integrated loudness
//   - Loudness range (LRA) measurement
//
// Stereo Field Analysis:
//   - Correlation meter for phase relationships
//   - Balance meter for L/R power distribution
//   - Stereo width meter using M/S analysis
//   - Mono compatibility checking
//
// The package has no FFT, spectrum or phase-scope display tools.
//
// All analysis tools are designed for real-time operation with minimal
// allocations and thread-safe access.
//
// Example usage:
//
//	// Create a LUFS meter
//	lufs := analysis.NewLUFSMeter(48000, 2)
//	lufs.Process(interleavedSamples)
//	
//	momentary := lufs.GetMomentaryLUFS()
//	integrated := lufs.GetIntegratedLUFS()
//	
//	// Create a correlation meter
//	corr := analysis.NewCorrelationMeter(1024, 44100)
//	corr.Process(samplesL, samplesR)
//	
//	correlation := corr.GetCorrelation()
//	monoCompat := corr.GetMonoCompatibility()
package analysis