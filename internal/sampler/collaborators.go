package sampler

// FrameRef identifies one call-stack frame in the host runtime. It is an
// opaque token as far as the sampler is concerned; the default capturer
// stores program counters.
type FrameRef = uintptr

// FrameLine is one (frame, source line) pair of a captured trace.
type FrameLine struct {
	Frame FrameRef
	Line  int
}

// FrameCapturer is the frame-capture primitive the sampler depends on.
//
// Capture fills the caller-provided frames and lines buffers with the calling
// goroutine's current stack, innermost frame first, skipping skip frames of
// capture machinery, and returns the number of frames captured. It must not
// block and must be safe to call nested with itself on the same goroutine.
// The default implementation is capture.Runtime.
type FrameCapturer interface {
	Capture(skip int, frames []FrameRef, lines []int) int
	// Symbol resolves a frame reference to a qualified symbol name.
	// Returns false if the reference cannot be resolved.
	Symbol(ref FrameRef) (string, bool)
}

// CollectionProbe reports whether the host runtime is currently in a phase
// during which sampling must be suppressed. It must be cheap and safe to call
// from both the timer goroutine and worker safe points.
type CollectionProbe interface {
	IsCollecting() bool
}

// PinHandle is an opaque keep-alive registration token.
type PinHandle = any

// Pinner keeps frame references reachable while they sit in a trace buffer.
// Pin is called once at worker registration, Release once at deregistration.
type Pinner interface {
	Pin(owner any) (PinHandle, error)
	Release(h PinHandle) error
}

// Scheduler runs a callback later, outside the timer loop, at most once per
// accepted submission. Submissions may be rejected (e.g. after shutdown);
// a rejected tick is dropped, not retried.
type Scheduler interface {
	ScheduleOnce(fn func()) error
}

// idleProbe is the default CollectionProbe. Go's garbage collector runs
// concurrently with the mutators and program-counter frame references stay
// valid throughout a cycle, so no exclusion window is needed.
type idleProbe struct{}

func (idleProbe) IsCollecting() bool { return false }
