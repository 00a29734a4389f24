package instrument

import (
	"testing"

	"github.com/modular-audio/dawcore/pkg/framework/voice"
)

func TestNoteOnProducesNonSilentOutput(t *testing.T) {
	in := New(1, 48000, 4, 1, 64)
	in.NoteOn(60, 100)

	buf := make([]float32, 64)
	in.Render(buf)

	nonZero := false
	for _, v := range buf {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("expected non-silent output after note-on")
	}
}

func TestNoteOffReleasesVoice(t *testing.T) {
	in := New(1, 48000, 4, 1, 64)
	in.SetAmpEnvelope(0.001, 0.001, 0.8, 0.01)
	in.NoteOn(60, 100)
	in.NoteOff(60, 0)

	buf := make([]float32, 64)
	for i := 0; i < 2000; i++ {
		in.Render(buf)
	}
	if in.ActiveVoiceCount() != 0 {
		t.Fatalf("expected voice to finish release and deactivate, got %d active", in.ActiveVoiceCount())
	}
}

func TestVoiceStealingReusesFullBank(t *testing.T) {
	in := New(1, 48000, 2, 1, 64)
	in.SetStealingMode(voice.StealOldest)
	in.NoteOn(60, 100)
	in.NoteOn(64, 100)
	in.NoteOn(67, 100) // forces a steal, no free voice left

	if in.ActiveVoiceCount() != 2 {
		t.Fatalf("expected exactly maxVoices active after stealing, got %d", in.ActiveVoiceCount())
	}
}

func TestModMatrixPitchRouteBendsFrequency(t *testing.T) {
	in := New(1, 48000, 1, 1, 64)
	in.AddModRoute(ModSlot{Source: SourceModWheel, Dest: DestPitch, Amount: 1.0, Curve: CurveLinear})
	in.voices[0].SetModWheel(1.0)
	in.NoteOn(60, 100)

	buf := make([]float32, 64)
	in.Render(buf) // must not panic and must produce output
	if in.voices[0].targetFreq == 0 {
		t.Fatal("expected target frequency to be set")
	}
}

func TestResetStopsAllVoices(t *testing.T) {
	in := New(1, 48000, 4, 1, 64)
	in.NoteOn(60, 100)
	in.NoteOn(64, 100)
	in.Reset()
	if in.ActiveVoiceCount() != 0 {
		t.Fatal("expected reset to stop every voice")
	}
}
