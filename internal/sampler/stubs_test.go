package sampler

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// stubCapturer returns a fixed-depth synthetic stack on every capture.
type stubCapturer struct {
	depth    int
	baseLine int
	calls    atomic.Int32
}

func (s *stubCapturer) Capture(skip int, frames []FrameRef, lines []int) int {
	s.calls.Add(1)
	n := s.depth
	if n > len(frames) {
		n = len(frames)
	}
	for i := 0; i < n; i++ {
		frames[i] = FrameRef(0x1000 + i)
		lines[i] = s.baseLine + i
	}
	return n
}

func (s *stubCapturer) Symbol(ref FrameRef) (string, bool) {
	return fmt.Sprintf("stub.frame_%#x", uintptr(ref)), true
}

// stubProbe toggles the collecting state from tests.
type stubProbe struct {
	collecting atomic.Bool
}

func (p *stubProbe) IsCollecting() bool {
	return p.collecting.Load()
}

// stubScheduler records submissions without servicing them unless asked.
type stubScheduler struct {
	mu          sync.Mutex
	submissions []func()
	err         error
}

func (s *stubScheduler) ScheduleOnce(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.submissions = append(s.submissions, fn)
	return nil
}

func (s *stubScheduler) submissionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submissions)
}

// runLast services the most recent submission, mimicking the scheduler host
// getting around to the job.
func (s *stubScheduler) runLast() {
	s.mu.Lock()
	fn := s.submissions[len(s.submissions)-1]
	s.mu.Unlock()
	fn()
}

// stubPinner counts pin/release calls and can simulate exhaustion.
type stubPinner struct {
	mu       sync.Mutex
	pins     int
	releases int
	failPin  bool
}

func (p *stubPinner) Pin(owner any) (PinHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failPin {
		return nil, fmt.Errorf("pin table exhausted")
	}
	p.pins++
	return p.pins, nil
}

func (p *stubPinner) Release(h PinHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releases++
	return nil
}

func (p *stubPinner) counts() (pins, releases int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pins, p.releases
}

func newTestContext(capacity, maxFrames, depth int) (*ThreadContext, *stubCapturer, *stubProbe) {
	capt := &stubCapturer{depth: depth, baseLine: 100}
	probe := &stubProbe{}
	tc := newThreadContext(capacity, maxFrames, capt, probe, nopLogger())
	return tc, capt, probe
}
