package engine

// OfflineRender produces totalFrames of interleaved stereo audio
// starting at startSample, calling RenderBlock once per BlockSize
// chunk in order. It is intentionally single-threaded and
// deterministic at the block level (blocks never reorder relative to
// each other) so it is sample-identical to what a realtime callback
// loop driven at the same rate would produce, given the same
// transport/scheduler state. Per-block instrument rendering is still
// parallelized internally by
// Graph.RenderBlock.
func (e *Engine) OfflineRender(startSample int64, totalFrames int) ([]float32, error) {
	block := e.cfg.BlockSize
	out := make([]float32, totalFrames*2)

	for rendered := 0; rendered < totalFrames; rendered += block {
		n := block
		if rendered+n > totalFrames {
			n = totalFrames - rendered
		}

		blockOut := make([]float32, block*2)
		if err := e.RenderBlock(startSample+int64(rendered), blockOut); err != nil {
			return nil, err
		}
		copy(out[rendered*2:(rendered+n)*2], blockOut[:n*2])
	}

	return out, nil
}
