package pool

import "testing"

func TestIndexPoolAcquireRelease(t *testing.T) {
	p := NewIndexPool(4)
	if p.Available() != 4 {
		t.Fatalf("expected 4 available, got %d", p.Available())
	}

	seen := make(map[int32]bool)
	for i := 0; i < 4; i++ {
		idx, ok := p.Acquire()
		if !ok {
			t.Fatalf("acquire %d failed unexpectedly", i)
		}
		if seen[idx] {
			t.Fatalf("index %d handed out twice", idx)
		}
		seen[idx] = true
	}

	if _, ok := p.Acquire(); ok {
		t.Fatal("expected pool to be exhausted")
	}

	p.Release(2)
	idx, ok := p.Acquire()
	if !ok || idx != 2 {
		t.Fatalf("expected to reacquire index 2, got %d ok=%v", idx, ok)
	}
}

func TestIndexPoolInUse(t *testing.T) {
	p := NewIndexPool(10)
	for i := 0; i < 3; i++ {
		p.Acquire()
	}
	if p.InUse() != 3 {
		t.Fatalf("expected 3 in use, got %d", p.InUse())
	}
	if p.Capacity() != 10 {
		t.Fatalf("expected capacity 10, got %d", p.Capacity())
	}
}

func TestNotePoolResetsOnAcquireAndRelease(t *testing.T) {
	p := NewNotePool(2)
	idx, ok := p.Acquire()
	if !ok {
		t.Fatal("acquire failed")
	}
	n := p.Get(idx)
	n.Pitch = 60
	n.Active = true

	p.Release(idx)
	if n.Pitch != 0 || n.Active {
		t.Fatal("expected note fields reset on release")
	}

	idx2, ok := p.Acquire()
	if !ok || idx2 != idx {
		t.Fatalf("expected to reacquire the same slot, got %d", idx2)
	}
	if p.Get(idx2).Pitch != 0 {
		t.Fatal("expected freshly acquired note to be zeroed")
	}
}

func TestEventPoolNoteIndexSentinel(t *testing.T) {
	p := NewEventPool(1)
	idx, ok := p.Acquire()
	if !ok {
		t.Fatal("acquire failed")
	}
	ev := p.Get(idx)
	if ev.NoteIndex != -1 {
		t.Fatalf("expected sentinel NoteIndex -1, got %d", ev.NoteIndex)
	}
	ev.NoteIndex = 7
	ev.Executed = true
	p.Release(idx)

	idx2, ok := p.Acquire()
	if !ok || idx2 != idx {
		t.Fatal("expected to reacquire the released slot")
	}
	if p.Get(idx2).NoteIndex != -1 {
		t.Fatal("expected NoteIndex reset to sentinel after release")
	}
}

func TestScratchMonoAcquireExhaustion(t *testing.T) {
	s := NewScratch(128, 2)
	_, buf1, ok := s.AcquireMono(128)
	if !ok || len(buf1) != 128 {
		t.Fatalf("expected a 128-sample mono buffer, got len=%d ok=%v", len(buf1), ok)
	}
	idx2, _, ok := s.AcquireMono(128)
	if !ok {
		t.Fatal("expected second mono buffer to be available")
	}
	if _, _, ok := s.AcquireMono(128); ok {
		t.Fatal("expected mono pool to be exhausted")
	}
	s.ReleaseMono(idx2)
	if _, _, ok := s.AcquireMono(128); !ok {
		t.Fatal("expected released mono buffer to be reusable")
	}
}
