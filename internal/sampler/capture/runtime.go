// Package capture provides the default frame-capture primitive, built on the
// Go runtime's caller introspection. Frame references are program counters.
package capture

import (
	"runtime"
)

// machineryFrames is the number of capture-internal frames hidden from every
// capture: Capture itself and the runtime.Callers call it wraps. Capture is
// marked go:noinline so this stays a fixed offset.
const machineryFrames = 2

// Runtime captures the calling goroutine's stack via runtime.Callers. It is
// stateless: all storage is caller-provided, so captures may nest on the same
// goroutine and run concurrently across goroutines.
type Runtime struct{}

// NewRuntime returns the runtime-backed capturer.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// Capture fills frames and lines with the current stack, innermost first,
// and returns the number of frames captured. skip drops additional frames
// beyond the capture machinery itself. frames and lines must have equal
// length; the capture is truncated to that length.
//
// Program counters are written directly into the caller's buffer with no
// allocation. Line resolution walks runtime.CallersFrames, which may
// allocate; workers poll at safe points in normal goroutine context, so the
// async-signal constraints of the original contract are relaxed here.
//
//go:noinline
func (c *Runtime) Capture(skip int, frames []uintptr, lines []int) int {
	n := runtime.Callers(skip+machineryFrames, frames)
	if n == 0 {
		return 0
	}

	iter := runtime.CallersFrames(frames[:n])
	for i := 0; i < n; i++ {
		f, more := iter.Next()
		lines[i] = f.Line
		if !more {
			break
		}
	}
	return n
}

// Symbol resolves a program counter to its fully qualified function name.
func (c *Runtime) Symbol(ref uintptr) (string, bool) {
	fn := runtime.FuncForPC(ref)
	if fn == nil {
		return "", false
	}
	return fn.Name(), true
}
