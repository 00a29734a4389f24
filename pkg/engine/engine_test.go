package engine

import "testing"

func TestNewEngineWiresDefaultConfig(t *testing.T) {
	e := New(Config{})
	if e.SampleRate() != 48000 || e.BlockSize() != 128 {
		t.Fatalf("expected default config, got sr=%v block=%v", e.SampleRate(), e.BlockSize())
	}
}

func TestAddInstrumentRoutesToMaster(t *testing.T) {
	e := New(DefaultConfig())
	in, err := e.AddInstrument(e.Mixer.Master().ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.ID != 0 {
		t.Fatalf("expected first instrument id 0, got %d", in.ID)
	}
}

func TestAddInstrumentUnknownInsertFails(t *testing.T) {
	e := New(DefaultConfig())
	if _, err := e.AddInstrument("does-not-exist", 1); err == nil {
		t.Fatal("expected error routing to a non-existent insert")
	}
}

func TestRenderBlockProducesInterleavedOutput(t *testing.T) {
	e := New(DefaultConfig())
	in, _ := e.AddInstrument(e.Mixer.Master().ID, 1)
	if err := e.Prepare(); err != nil {
		t.Fatalf("unexpected prepare error: %v", err)
	}

	in.NoteOn(60, 100)
	out := make([]float32, e.BlockSize()*2)
	if err := e.RenderBlock(0, out); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	nonZero := false
	for _, v := range out {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("expected non-silent output from a triggered note")
	}
}
