package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/modular-audio/dawcore/pkg/framework/transport"
)

func TestSmoothSeekerBypassesSettleWhenStopped(t *testing.T) {
	tr := transport.New(48000)
	seeker := NewSmoothSeeker(tr, func() int64 { return 0 })

	seeker.Seek(16)
	require.Equal(t, 16.0, tr.UIPosition())
	require.True(t, seeker.Idle(), "expected seeker to stay idle for a stopped-transport seek")
}

func TestSmoothSeekerPausesThenResumesWhilePlaying(t *testing.T) {
	tr := transport.New(48000)
	tr.SetDeviceOpen(true)
	tr.Start(0, nil)

	seeker := NewSmoothSeeker(tr, func() int64 { return 0 })
	seeker.Seek(32)

	require.Equal(t, transport.Paused, tr.State(), "expected transport paused immediately after seek")

	time.Sleep(SettleDuration * 3)

	require.Equal(t, transport.Playing, tr.State(), "expected transport playing after settle")
	require.True(t, seeker.Idle(), "expected seeker to return to idle after settle completes")
}
