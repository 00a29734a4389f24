package scheduler

import (
	"sync"
	"time"

	"github.com/modular-audio/dawcore/pkg/framework/transport"
)

// SettleDuration is the gap between pause and play in a smooth seek,
// chosen to absorb any in-flight sub-block click at the old schedule.
const SettleDuration = 10 * time.Millisecond

// seekState names the phases of SmoothSeeker's explicit state machine,
// replacing an async await-chain with states driven by timer/transport
// events.
type seekState int

const (
	seekIdle seekState = iota
	seekPausing
	seekSettling
)

// SmoothSeeker drives the pause -> settle -> play sequence for a seek
// issued while playing. A seek issued while stopped bypasses this
// entirely and calls transport.Seek directly.
type SmoothSeeker struct {
	mu    sync.Mutex
	state seekState
	timer *time.Timer

	tr  *transport.Transport
	now func() int64
}

// NewSmoothSeeker binds a seeker to a transport and a sample-clock
// reader used to stamp Start/Pause calls.
func NewSmoothSeeker(tr *transport.Transport, now func() int64) *SmoothSeeker {
	return &SmoothSeeker{tr: tr, now: now}
}

// Seek performs an immediate seek when the transport is stopped or
// paused, and a smooth pause->settle->play sequence when playing. It
// never blocks the caller; the settle phase completes on its own timer
// goroutine.
func (s *SmoothSeeker) Seek(step float64) {
	if s.tr.State() != transport.Playing {
		s.tr.Seek(step)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	s.tr.Pause(s.now())
	s.tr.Seek(step)
	s.state = seekSettling

	s.timer = time.AfterFunc(SettleDuration, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state != seekSettling {
			return
		}
		s.state = seekIdle
		at := step
		s.tr.Start(s.now(), &at)
	})
}

// Idle reports whether no seek is currently in its settle phase.
func (s *SmoothSeeker) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == seekIdle
}
