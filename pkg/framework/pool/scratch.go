package pool

// Default scratch-buffer sizes.
const (
	DefaultLevelMeterSlots  = 64
	DefaultAutomationSlots  = 1024
	DefaultNoteScheduleSlot = 4096
)

// Scratch holds every pre-allocated scratch buffer the audio thread
// touches: per-channel mono scratch (instrument rendering), the
// interleaved stereo mix buffer (device output), level meters, an
// automation lane, and an Int32 note-schedule scratch area. None of
// these are ever resized after construction; NumChannels controls how
// many independent mono scratch buffers are handed out (one per
// concurrently-rendering instrument or insert).
type Scratch struct {
	blockSize int
	mono      [][]float32
	monoInUse []bool

	interleaved  []float32
	levelMeters  []float32
	automation   []float32
	noteSchedule []int32
}

// NewScratch pre-allocates every scratch buffer for a given maximum
// block size and a pool of reusable mono scratch buffers.
func NewScratch(maxBlockSize, numMonoBuffers int) *Scratch {
	mono := make([][]float32, numMonoBuffers)
	for i := range mono {
		mono[i] = make([]float32, maxBlockSize)
	}
	return &Scratch{
		blockSize:    maxBlockSize,
		mono:         mono,
		monoInUse:    make([]bool, numMonoBuffers),
		interleaved:  make([]float32, maxBlockSize*2),
		levelMeters:  make([]float32, DefaultLevelMeterSlots),
		automation:   make([]float32, DefaultAutomationSlots),
		noteSchedule: make([]int32, DefaultNoteScheduleSlot),
	}
}

// AcquireMono returns an index into the mono scratch pool and a slice
// sized to blockSize. Callers must call ReleaseMono when done with the
// buffer for the current block. ok is false if the pool is exhausted.
func (s *Scratch) AcquireMono(blockSize int) (idx int, buf []float32, ok bool) {
	for i, inUse := range s.monoInUse {
		if !inUse {
			s.monoInUse[i] = true
			buf = s.mono[i][:blockSize]
			for j := range buf {
				buf[j] = 0
			}
			return i, buf, true
		}
	}
	return -1, nil, false
}

// ReleaseMono returns a mono scratch buffer to the pool.
func (s *Scratch) ReleaseMono(idx int) {
	s.monoInUse[idx] = false
}

// Interleaved returns the interleaved stereo mix buffer sized to
// 2*blockSize frames.
func (s *Scratch) Interleaved(blockSize int) []float32 {
	return s.interleaved[:blockSize*2]
}

// LevelMeters returns the fixed 64-slot level-meter scratch buffer.
func (s *Scratch) LevelMeters() []float32 { return s.levelMeters }

// Automation returns the fixed 1024-slot automation scratch buffer.
func (s *Scratch) Automation() []float32 { return s.automation }

// NoteSchedule returns the fixed 4096-slot Int32 note-schedule scratch
// buffer, used by the scheduler to stage due event indices within a
// block without allocating a slice per tick.
func (s *Scratch) NoteSchedule() []int32 { return s.noteSchedule }
