package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sr = 48000.0

func TestStartFailsWhenDeviceClosed(t *testing.T) {
	tr := New(sr)
	require.ErrorIs(t, tr.Start(0, nil), ErrDeviceUnavailable)
}

func TestStartAdoptsExplicitStep(t *testing.T) {
	tr := New(sr)
	tr.SetDeviceOpen(true)
	step := 16.0
	require.NoError(t, tr.Start(0, &step))
	require.Equal(t, Playing, tr.State())
	require.Equal(t, 16.0, tr.UIPosition())
}

func TestPositionLockReportsSnapshotForThreeReads(t *testing.T) {
	tr := New(sr)
	tr.SetDeviceOpen(true)
	step := 8.0
	tr.Start(0, &step)

	for i := 0; i < positionLockReads; i++ {
		pos, wrapped := tr.Tick(int64(i * 1000))
		require.Equalf(t, 8.0, pos, "read %d", i)
		require.Falsef(t, wrapped, "read %d: unexpected wrap", i)
	}

	// fourth read: clock authority passes to engine.
	pos, _ := tr.Tick(int64(sr)) // one second later
	require.NotEqual(t, 8.0, pos, "expected position to advance once clock authority passes")
}

func TestPauseRetainsUIPositionAndResumes(t *testing.T) {
	tr := New(sr)
	tr.SetDeviceOpen(true)
	tr.Start(0, nil)
	for i := 0; i < positionLockReads; i++ {
		tr.Tick(0)
	}

	oneSecond := int64(sr)
	pos, _ := tr.Tick(oneSecond)
	tr.Pause(oneSecond)
	require.Equal(t, Paused, tr.State())
	require.Equal(t, pos, tr.UIPosition())

	require.NoError(t, tr.Start(oneSecond, nil))
	resumed, _ := tr.Tick(oneSecond)
	require.Equal(t, pos, resumed)
}

func TestStopPreservesUIPosition(t *testing.T) {
	tr := New(sr)
	tr.SetDeviceOpen(true)
	step := 4.0
	tr.Start(0, &step)
	tr.Stop()
	require.Equal(t, Stopped, tr.State())
	require.Equal(t, 4.0, tr.UIPosition())
}

func TestSeekUpdatesUIPositionOnly(t *testing.T) {
	tr := New(sr)
	tr.Seek(32)
	require.Equal(t, 32.0, tr.UIPosition())
	require.Equal(t, Stopped, tr.State())
}

func TestLoopWrapRebasesPosition(t *testing.T) {
	tr := New(sr)
	tr.SetDeviceOpen(true)
	tr.SetLoop(0, 4, true)
	step := 0.0
	tr.Start(0, &step)
	for i := 0; i < positionLockReads; i++ {
		tr.Tick(0)
	}

	// at 120bpm, one step = 60/(120*4) = 0.125s; 4 steps = 0.5s.
	samplesFor5Steps := int64(0.625 * sr)
	pos, wrapped := tr.Tick(samplesFor5Steps)
	require.True(t, wrapped, "expected loop wrap to be reported")
	require.True(t, pos >= 0 && pos < 4, "expected rebased position within [0,4), got %v", pos)
}

func TestSetBPMRejectsNonPositive(t *testing.T) {
	tr := New(sr)
	require.ErrorIs(t, tr.SetBPM(0), ErrInvalidBPM)
	require.ErrorIs(t, tr.SetBPM(-10), ErrInvalidBPM)
}

func TestSetLoopRejectsInvalidRange(t *testing.T) {
	tr := New(sr)
	require.ErrorIs(t, tr.SetLoop(4, 4, true), ErrInvalidLoop)
	require.ErrorIs(t, tr.SetLoop(-1, 4, true), ErrInvalidLoop)
}

func TestSubscribeReceivesStartEvent(t *testing.T) {
	tr := New(sr)
	tr.SetDeviceOpen(true)
	events := tr.Subscribe(8)
	tr.Start(0, nil)

	select {
	case ev := <-events:
		require.Equal(t, EventStarted, ev.Kind)
	default:
		t.Fatal("expected a buffered start event")
	}
}

func TestStepDurationAt120BPM(t *testing.T) {
	tr := New(sr)
	want := 60.0 / (120.0 * 4.0)
	require.Equal(t, want, tr.StepDuration())
}
