package sampler

// Trace is one captured snapshot of a worker's call stack. Slots are
// preallocated at registration; a capture writes frames and lines in place
// and publishes the slot by bumping the owning context's trace count.
type Trace struct {
	// numLines is the number of valid entries in lines/frames. Entries past
	// numLines are stale from earlier captures and must never be read.
	numLines int
	lines    []int
	frames   []FrameRef
}

// TraceBuffer is the fixed-capacity ring of captured traces for one worker.
// It never grows and never overwrites: captures past capacity are dropped.
type TraceBuffer struct {
	traces    []Trace
	capacity  int
	maxFrames int
}

// newTraceBuffer allocates every slot up front so that the capture path is
// allocation-free.
func newTraceBuffer(capacity, maxFrames int) *TraceBuffer {
	b := &TraceBuffer{
		traces:    make([]Trace, capacity),
		capacity:  capacity,
		maxFrames: maxFrames,
	}
	for i := range b.traces {
		b.traces[i].lines = make([]int, maxFrames)
		b.traces[i].frames = make([]FrameRef, maxFrames)
	}
	return b
}

func (b *TraceBuffer) slot(i uint32) *Trace {
	return &b.traces[i]
}
