package uibridge

import (
	"testing"
	"time"

	"github.com/modular-audio/dawcore/pkg/framework/scheduler"
	"github.com/modular-audio/dawcore/pkg/framework/transport"
)

func newTestBridge(deviceOpen bool) (*Bridge, *transport.Transport) {
	tr := transport.New(48000)
	tr.SetDeviceOpen(deviceOpen)
	seeker := scheduler.NewSmoothSeeker(tr, func() int64 { return 0 })
	b := New(tr, seeker, func() int64 { return 0 })
	return b, tr
}

func TestPlayFailsAndRollsBackWhenDeviceUnavailable(t *testing.T) {
	b, tr := newTestBridge(false)
	res := b.Play(nil)
	if res.OK {
		t.Fatal("expected play to fail when device is unavailable")
	}
	if tr.State() != transport.Stopped {
		t.Fatalf("expected transport to remain stopped, got %v", tr.State())
	}
}

func TestPlaySucceedsAndConfirms(t *testing.T) {
	b, tr := newTestBridge(true)
	res := b.Play(nil)
	if !res.OK {
		t.Fatalf("expected play to succeed, got error %v", res.Error)
	}
	if tr.State() != transport.Playing {
		t.Fatalf("expected Playing, got %v", tr.State())
	}
}

func TestStopPreservesUIPositionThroughBridge(t *testing.T) {
	b, tr := newTestBridge(true)
	step := 32.0
	b.Seek(step, false)
	b.Play(nil)
	b.Stop()
	if got := tr.UIPosition(); got != 32 {
		t.Fatalf("expected UI position preserved at 32, got %v", got)
	}
}

func TestSeekSmoothWhilePlayingPausesThenResumes(t *testing.T) {
	b, tr := newTestBridge(true)
	b.Play(nil)
	b.Seek(64, true)

	if tr.State() != transport.Paused {
		t.Fatalf("expected paused immediately after smooth seek, got %v", tr.State())
	}

	time.Sleep(scheduler.SettleDuration * 3)
	if tr.State() != transport.Playing {
		t.Fatalf("expected playing after settle, got %v", tr.State())
	}
}

func TestSubscribeReceivesPositionUpdates(t *testing.T) {
	b, tr := newTestBridge(true)
	events := b.Subscribe(16)
	b.Play(nil)
	tr.Tick(0)

	var sawPositionUpdate bool
	timeout := time.After(time.Second)
	for !sawPositionUpdate {
		select {
		case ev := <-events:
			if ev.Type == EventPositionUpdate {
				sawPositionUpdate = true
			}
		case <-timeout:
			t.Fatal("expected a position-update event")
		}
	}
}

func TestSetBPMRejectsInvalid(t *testing.T) {
	b, _ := newTestBridge(true)
	res := b.SetBPM(-1)
	if res.OK {
		t.Fatal("expected negative bpm to fail")
	}
}

func TestSetLoopRejectsInvalid(t *testing.T) {
	b, _ := newTestBridge(true)
	res := b.SetLoop(4, 4, true)
	if res.OK {
		t.Fatal("expected equal start/end to fail")
	}
}
