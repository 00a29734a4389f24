package effect

import "testing"

func newBlock(n int) Block {
	return Block{L: make([]float32, n), R: make([]float32, n)}
}

func TestUnknownKindFallsBackToIdentity(t *testing.T) {
	e := New("e1", Kind("bogus"), 48000)
	blk := newBlock(8)
	blk.L[0] = 1
	blk.R[0] = -1
	e.Process(blk, 48000)
	if blk.L[0] != 1 || blk.R[0] != -1 {
		t.Fatal("expected identity pass-through for unknown kind")
	}
}

func TestSetParameterClampsOutOfRange(t *testing.T) {
	e := New("e1", KindChorus, 48000)
	if err := e.SetParameter("mix", 5.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := e.GetParameter("mix")
	if !ok {
		t.Fatal("expected mix parameter to exist")
	}
	if got != 1.0 {
		t.Fatalf("expected clamp to max 1.0, got %v", got)
	}
}

func TestSetParameterUnknownNameReturnsError(t *testing.T) {
	e := New("e1", KindChorus, 48000)
	if err := e.SetParameter("not_a_param", 1.0); err == nil {
		t.Fatal("expected an error for an unknown parameter name")
	}
}

func TestBypassLeavesBlockUnchanged(t *testing.T) {
	e := New("e1", KindWaveshaper, 48000)
	e.Bypass = true
	blk := newBlock(4)
	blk.L[0], blk.R[0] = 0.25, -0.25
	e.Process(blk, 48000)
	if blk.L[0] != 0.25 || blk.R[0] != -0.25 {
		t.Fatal("expected bypass to leave the block untouched")
	}
}

func TestSerializeDeserializeRoundTripsParameters(t *testing.T) {
	e := New("e1", KindChorus, 48000)
	e.SetParameter("mix", 0.75)
	e.Bypass = true

	snap := e.Serialize(2)
	if snap.ChainIndex != 2 || !snap.Bypass {
		t.Fatalf("unexpected serialized snapshot: %+v", snap)
	}

	e2 := New("e2", KindChorus, 48000)
	e2.Deserialize(snap)
	got, _ := e2.GetParameter("mix")
	if got != 0.75 {
		t.Fatalf("expected deserialized mix 0.75, got %v", got)
	}
	if !e2.Bypass {
		t.Fatal("expected deserialized bypass flag to carry over")
	}
}

func TestWaveshaperMixZeroIsIdentity(t *testing.T) {
	e := New("e1", KindWaveshaper, 48000)
	e.SetParameter("mix", 0)
	warmup := newBlock(4)
	for i := 0; i < 4000; i++ {
		e.Process(warmup, 48000) // drain the 20ms smoother toward target on silence
	}

	blk := newBlock(4)
	blk.L[0] = 0.42
	blk.R[0] = -0.42
	e.Process(blk, 48000)
	if diff := blk.L[0] - 0.42; diff > 0.01 || diff < -0.01 {
		t.Fatalf("expected near-identity output at mix=0, got %v", blk.L[0])
	}
}

func TestReverbWetZeroIsIdentity(t *testing.T) {
	e := New("e1", KindReverbAlgorithmic, 48000)
	e.SetParameter("wet", 0)
	warmup := newBlock(4)
	for i := 0; i < 4000; i++ {
		e.Process(warmup, 48000)
	}

	blk := newBlock(4)
	blk.L[0] = 0.5
	blk.R[0] = 0.5
	e.Process(blk, 48000)
	if diff := blk.L[0] - 0.5; diff > 0.02 || diff < -0.02 {
		t.Fatalf("expected near-identity output at wet=0, got %v", blk.L[0])
	}
}
