package engine

import "testing"

func TestOfflineRenderProducesRequestedFrameCount(t *testing.T) {
	e := New(DefaultConfig())
	in, _ := e.AddInstrument(e.Mixer.Master().ID, 1)
	e.Prepare()
	in.NoteOn(60, 100)

	out, err := e.OfflineRender(0, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 500*2 {
		t.Fatalf("expected %d interleaved samples, got %d", 500*2, len(out))
	}
}

func TestOfflineRenderHandlesPartialFinalBlock(t *testing.T) {
	e := New(DefaultConfig()) // block size 128, not a multiple of 300
	in, _ := e.AddInstrument(e.Mixer.Master().ID, 1)
	e.Prepare()
	in.NoteOn(60, 100)

	out, err := e.OfflineRender(0, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 600 {
		t.Fatalf("expected 600 samples (300 frames stereo), got %d", len(out))
	}
}
