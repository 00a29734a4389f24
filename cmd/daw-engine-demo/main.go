// Command daw-engine-demo builds a small pattern on a synth instrument
// routed through a reverb insert, renders it offline, and prints the
// resulting buffer statistics. It does not touch a filesystem or audio
// device: no WAV muxing, no project save/load — OfflineRender's
// []float32 is the whole surface.
package main

import (
	"fmt"
	"os"

	"github.com/modular-audio/dawcore/pkg/engine"
	"github.com/modular-audio/dawcore/pkg/engine/effect"
	"github.com/modular-audio/dawcore/pkg/engine/instrument"
	"github.com/modular-audio/dawcore/pkg/engine/mixer"
	"github.com/modular-audio/dawcore/pkg/framework/debug"
	"github.com/modular-audio/dawcore/pkg/framework/scheduler"
)

const bpm = 120.0

func main() {
	e := engine.New(engine.DefaultConfig())

	verb := mixer.New("verb", "Reverb Bus")
	verb.Chain.Add(effect.New("verb1", effect.KindReverbAlgorithmic, e.SampleRate()))
	if err := e.Mixer.AddInsert(verb); err != nil {
		e.Log.Fatal("add insert: %v", err)
	}

	lead, err := e.AddInstrument("verb", 3)
	if err != nil {
		e.Log.Fatal("add instrument: %v", err)
	}
	lead.SetAmpEnvelope(0.01, 0.15, 0.6, 0.4)
	lead.SetFilter(4000, 0.9)
	lead.SetUnisonDetune(8)
	lead.AddModRoute(instrument.ModSlot{
		Source: instrument.SourceLFO1,
		Dest:   instrument.DestFilterCutoff,
		Amount: 0.3,
		Curve:  instrument.CurveSCurve,
	})

	if err := e.Prepare(); err != nil {
		e.Log.Fatal("prepare: %v", err)
	}

	arpeggio := []int32{60, 64, 67, 72, 67, 64}
	base := 0.0
	for i, note := range arpeggio {
		e.Scheduler.ScheduleNote(lead.ID, int32(i), float64(note), 100, float64(i), 0.9, base, bpm, 0)
	}

	totalSteps := float64(len(arpeggio))
	totalSeconds := totalSteps * scheduler.StepDuration(bpm)
	totalFrames := int(totalSeconds*e.SampleRate()) + e.BlockSize()

	out, err := e.OfflineRender(0, totalFrames)
	if err != nil {
		e.Log.Fatal("offline render: %v", err)
	}

	left := deinterleave(out)
	analyzer := debug.NewAudioAnalyzer()
	result := analyzer.Analyze(left)

	fmt.Printf("rendered %d frames (%.2fs) at %v Hz\n", totalFrames, totalSeconds, e.SampleRate())
	fmt.Printf("peak=%.4f rms=%.4f clipping=%v silent=%v\n", result.Peak, result.RMS, result.Clipping, result.Silent)

	if result.Silent {
		os.Exit(1)
	}
}

// deinterleave pulls the left channel out of an interleaved stereo
// buffer for analysis; the demo only needs one channel's statistics.
func deinterleave(stereo []float32) []float32 {
	left := make([]float32, len(stereo)/2)
	for i := range left {
		left[i] = stereo[2*i]
	}
	return left
}
