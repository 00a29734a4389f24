package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modular-audio/dawcore/pkg/engine/instrument"
	"github.com/modular-audio/dawcore/pkg/engine/mixer"
	"github.com/modular-audio/dawcore/pkg/framework/scheduler"
)

func newTestGraph(t *testing.T) (*Graph, *mixer.Mixer) {
	t.Helper()
	mix := mixer.NewMixer()
	sched := scheduler.New(48000, 64)
	g := New(48000, 64, 16, mix, sched)
	return g, mix
}

func TestRenderBlockDirectToMasterProducesOutput(t *testing.T) {
	g, mix := newTestGraph(t)
	in := instrument.New(0, 48000, 4, 1, 64)
	require.NoError(t, g.AddInstrument(in, mix.Master().ID))
	require.NoError(t, g.Prepare())

	in.NoteOn(60, 100)
	out := make([]float32, 64*2)
	require.NoError(t, g.RenderBlock(0, 0, out))

	nonZero := false
	for _, v := range out {
		if v != 0 {
			nonZero = true
			break
		}
	}
	require.True(t, nonZero, "expected non-silent output")
}

func TestRenderBlockThroughInsertAppliesGain(t *testing.T) {
	g, mix := newTestGraph(t)
	ins := mixer.New("a", "A")
	ins.Gain = 0
	mix.AddInsert(ins)

	in := instrument.New(0, 48000, 4, 1, 64)
	g.AddInstrument(in, "a")
	g.Prepare()

	in.NoteOn(60, 100)
	out := make([]float32, 64*2)
	g.RenderBlock(0, 0, out)

	for _, v := range out {
		require.Zero(t, v, "expected zero-gain insert to silence its instrument")
	}
}

func TestMutedInsertProducesSilence(t *testing.T) {
	g, mix := newTestGraph(t)
	ins := mixer.New("a", "A")
	ins.Mute = true
	mix.AddInsert(ins)

	in := instrument.New(0, 48000, 4, 1, 64)
	g.AddInstrument(in, "a")
	g.Prepare()

	in.NoteOn(60, 100)
	out := make([]float32, 64*2)
	g.RenderBlock(0, 0, out)

	for _, v := range out {
		require.Zero(t, v, "expected muted insert to be silent at the master bus")
	}
}

func TestUnknownInsertRejected(t *testing.T) {
	g, _ := newTestGraph(t)
	in := instrument.New(0, 48000, 4, 1, 64)
	require.Error(t, g.AddInstrument(in, "nope"), "expected an error routing to an unknown insert")
}

func TestCompensatingDelayDelaysBySpecifiedFrames(t *testing.T) {
	cd := newCompensatingDelay(4)
	l := []float32{1, 0, 0, 0, 0, 0}
	r := []float32{1, 0, 0, 0, 0, 0}
	cd.Process(l, r)
	require.Equal(t, float32(1), l[4])
	require.Equal(t, float32(1), r[4])
	for i, v := range l {
		if i != 4 {
			require.Zerof(t, v, "expected silence elsewhere, got %v at %d", v, i)
		}
	}
}
