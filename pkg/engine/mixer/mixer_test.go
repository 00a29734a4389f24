package mixer

import "testing"

func TestSoloMutesNonSoloedInserts(t *testing.T) {
	m := NewMixer()
	a := New("a", "Track A")
	b := New("b", "Track B")
	m.AddInsert(a)
	m.AddInsert(b)

	a.Solo = true

	if !m.Audible(a) {
		t.Fatal("expected soloed insert to be audible")
	}
	if m.Audible(b) {
		t.Fatal("expected non-soloed insert to be muted while another is soloed")
	}
}

func TestSoloSafeInsertStaysAudible(t *testing.T) {
	m := NewMixer()
	a := New("a", "Track A")
	ret := New("ret", "Reverb Return")
	ret.SoloSafe = true
	m.AddInsert(a)
	m.AddInsert(ret)

	a.Solo = true

	if !m.Audible(ret) {
		t.Fatal("expected solo-safe insert to remain audible")
	}
}

func TestNoSoloLeavesAllUnmutedInsertsAudible(t *testing.T) {
	m := NewMixer()
	a := New("a", "Track A")
	b := New("b", "Track B")
	m.AddInsert(a)
	m.AddInsert(b)

	if !m.Audible(a) || !m.Audible(b) {
		t.Fatal("expected all inserts audible with no solo active")
	}
}

func TestMuteOverridesSolo(t *testing.T) {
	m := NewMixer()
	a := New("a", "Track A")
	a.Solo = true
	a.Mute = true
	m.AddInsert(a)

	if m.Audible(a) {
		t.Fatal("expected mute to silence an insert even if soloed")
	}
}

func TestDuplicateInsertIDRejected(t *testing.T) {
	m := NewMixer()
	if err := m.AddInsert(New("a", "Track A")); err != nil {
		t.Fatalf("unexpected error on first insert: %v", err)
	}
	if err := m.AddInsert(New("a", "Track A dup")); err == nil {
		t.Fatal("expected duplicate insert id to be rejected")
	}
}

func TestGainAndPanAppliedInPlace(t *testing.T) {
	ins := New("a", "Track A")
	ins.Gain = 0.5
	ins.Pan = 0

	l := []float32{1, 1}
	r := []float32{1, 1}
	ins.Process(l, r, 48000)

	if l[0] != 0.5 || r[0] != 0.5 {
		t.Fatalf("expected gain applied, got l=%v r=%v", l[0], r[0])
	}
}

func TestMaxLatencyTracksChainLatency(t *testing.T) {
	m := NewMixer()
	a := New("a", "Track A")
	m.AddInsert(a)
	if m.MaxLatency() != 0 {
		t.Fatalf("expected zero latency for an empty chain, got %d", m.MaxLatency())
	}
}
