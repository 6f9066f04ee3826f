package sampler

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/stacklight/stacklight/internal/safe"
)

// trimmedArtifactFrames is subtracted from every accepted capture. The two
// outermost frames of a capture are runtime scaffolding (the goroutine entry
// trampoline and its exit frame), not application code; shortening num_lines
// by two hides them from consumers, who only ever read the first num_lines
// entries of a slot.
const trimmedArtifactFrames = 2

// capturePathFrames is the number of sampler-internal frames sitting between
// the worker's safe point and the capture primitive when a sample is taken:
// Poll, handleSampleRequest, and recordSample. Each of the three is marked
// go:noinline so the offset is fixed, and recordSample passes it as the
// capture skip so the innermost frame of every trace is the caller of Poll.
const capturePathFrames = 3

// ThreadContext is the per-worker sampling state: the trace buffer plus the
// atomic flags and counters that coordinate with the dispatcher. A context is
// exclusively owned by the worker that registered it; the registry holds only
// a non-owning reference for dispatch.
type ThreadContext struct {
	samplingEnabled atomic.Bool
	inHandler       atomic.Bool
	sampleRequested atomic.Bool
	alive           atomic.Bool

	traceCount      atomic.Uint32
	startTraceIndex atomic.Uint32
	startFrameIndex atomic.Uint32

	skippedDuringGC  atomic.Uint64
	skippedReentrant atomic.Uint64

	buf       *TraceBuffer
	capturer  FrameCapturer
	probe     CollectionProbe
	pinHandle PinHandle
	logger    zerolog.Logger
}

// ContextStats is a snapshot of a context's soft-failure counters. The
// counters are diagnostics: they only ever reset on StopSampling(true).
type ContextStats struct {
	SkippedDuringGC  uint64
	SkippedReentrant uint64
}

func newThreadContext(capacity, maxFrames int, capturer FrameCapturer, probe CollectionProbe, logger zerolog.Logger) *ThreadContext {
	return &ThreadContext{
		buf:      newTraceBuffer(capacity, maxFrames),
		capturer: capturer,
		probe:    probe,
		logger:   logger,
	}
}

// StartSampling enables sampling for this worker.
func (tc *ThreadContext) StartSampling() bool {
	tc.samplingEnabled.Store(true)
	return true
}

// StopSampling disables sampling for this worker. When reset is true the
// trace count and both skip counters are zeroed as well.
func (tc *ThreadContext) StopSampling(reset bool) bool {
	tc.samplingEnabled.Store(false)
	if reset {
		tc.traceCount.Store(0)
		tc.skippedDuringGC.Store(0)
		tc.skippedReentrant.Store(0)
	}
	return true
}

// UpdateIndexes marks the current window boundary: traces and frames captured
// before these indices belong to a finished logical layer and are excluded
// from subsequent drains. Negative or overflowing indices are clamped.
func (tc *ThreadContext) UpdateIndexes(frameIndex, traceIndex int) bool {
	fi, _ := safe.IntToUint32(frameIndex)
	ti, _ := safe.IntToUint32(traceIndex)
	tc.startTraceIndex.Store(ti)
	tc.startFrameIndex.Store(fi)
	return true
}

// CurrentTraceIndex returns the number of traces currently published in the
// buffer.
func (tc *ThreadContext) CurrentTraceIndex() int {
	n, _ := safe.Uint32ToInt(tc.traceCount.Load())
	return n
}

// CurrentFrameIndex probes the capture primitive once and reports the calling
// goroutine's current stack depth minus one, or 0 when the depth is at most 1.
func (tc *ThreadContext) CurrentFrameIndex() int {
	frames := make([]FrameRef, tc.buf.maxFrames)
	lines := make([]int, tc.buf.maxFrames)
	n := tc.capturer.Capture(1, frames, lines)
	if n > 1 {
		return n - 1
	}
	return 0
}

// Stats returns a snapshot of the skip counters.
func (tc *ThreadContext) Stats() ContextStats {
	return ContextStats{
		SkippedDuringGC:  tc.skippedDuringGC.Load(),
		SkippedReentrant: tc.skippedReentrant.Load(),
	}
}

// Poll is the worker's safe point. If a sample request is pending it is
// consumed and the capture handler runs on the worker's own stack. Workers
// call this from their main loop; the cost of an idle poll is a single
// atomic load.
//
//go:noinline
func (tc *ThreadContext) Poll() {
	if !tc.sampleRequested.CompareAndSwap(true, false) {
		return
	}
	tc.handleSampleRequest()
}

// requestSample is the dispatcher-side half of the handoff: it only raises a
// flag, the owning worker does the work.
func (tc *ThreadContext) requestSample() {
	tc.sampleRequested.Store(true)
}

// handleSampleRequest enforces the per-worker guards before capturing.
// The inHandler compare-and-swap makes the capture non-reentrant without a
// lock: a request that arrives while a capture is still running on this
// worker is counted and discarded.
//
//go:noinline
func (tc *ThreadContext) handleSampleRequest() {
	if !tc.samplingEnabled.Load() {
		return
	}
	if !tc.inHandler.CompareAndSwap(false, true) {
		tc.skippedReentrant.Add(1)
		return
	}
	tc.recordSample()
	tc.inHandler.Store(false)
}

// recordSample appends one capture to the trace buffer. It runs on every
// profiled worker once per tick, so the happy path is bounded work with no
// allocation: bail out on disabled sampling, an active collection, or a full
// buffer; otherwise capture straight into the next free slot.
//
//go:noinline
func (tc *ThreadContext) recordSample() {
	if !tc.samplingEnabled.Load() {
		return
	}
	if tc.probe.IsCollecting() {
		tc.skippedDuringGC.Add(1)
		return
	}

	count := tc.traceCount.Load()
	startFrame := tc.startFrameIndex.Load()

	if count >= uint32(tc.buf.capacity) {
		// Full buffer: drop silently. Bounded loss is acceptable, growth or
		// overwrite here is not.
		return
	}

	t := tc.buf.slot(count)
	n := tc.capturer.Capture(capturePathFrames, t.frames, t.lines)
	if n-int(startFrame) > trimmedArtifactFrames {
		t.numLines = n - int(startFrame) - trimmedArtifactFrames
		tc.traceCount.Add(1)
	}
}

// ProfileFrames drains every published trace in [startTraceIndex, traceCount)
// with at least one line, in capture order, then resets the trace count to
// the window start, releasing the drained slots for reuse.
//
// The caller must have stopped sampling on this worker first: the calling
// protocol is StopSampling then ProfileFrames. Draining concurrently with a
// still-running capture handler would race on the trace count.
func (tc *ThreadContext) ProfileFrames() [][]FrameLine {
	count := tc.traceCount.Load()
	start := tc.startTraceIndex.Load()

	traces := make([][]FrameLine, 0, diffOrZero(count, start))
	for i := start; i < count; i++ {
		t := tc.buf.slot(i)
		if t.numLines <= 0 {
			continue
		}
		trace := make([]FrameLine, t.numLines)
		for n := 0; n < t.numLines; n++ {
			trace[n] = FrameLine{Frame: t.frames[n], Line: t.lines[n]}
		}
		traces = append(traces, trace)
	}

	tc.traceCount.Store(start)
	return traces
}

func diffOrZero(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return 0
}
