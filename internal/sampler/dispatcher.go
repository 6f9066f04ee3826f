package sampler

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// dispatcher broadcasts sample requests to every live registered worker.
// It is phase two of the tick handoff: the timer only schedules it, the
// scheduler runs it in normal context, and the broadcast itself only raises
// per-worker flags. jobRegistered guarantees at most one pending broadcast
// at a time regardless of how slowly the scheduler services submissions.
type dispatcher struct {
	reg           *registry
	jobRegistered atomic.Bool
	logger        zerolog.Logger
}

func newDispatcher(reg *registry, logger zerolog.Logger) *dispatcher {
	return &dispatcher{
		reg:    reg,
		logger: logger.With().Str("component", "dispatcher").Logger(),
	}
}

// broadcast walks the registry and requests a sample from each live worker.
// A contended registry mutex skips the whole walk for this tick; a worker
// that has already begun deregistering is skipped by the liveness check even
// if its entry is still present.
func (d *dispatcher) broadcast() {
	if !d.reg.tryForEach(func(tc *ThreadContext) {
		if !tc.alive.Load() {
			return
		}
		tc.requestSample()
	}) {
		d.logger.Debug().Msg("registry contended, skipping broadcast for this tick")
	}
	d.jobRegistered.Store(false)
}

// tryAcquireJob claims the single in-flight broadcast slot. Returns false if
// a broadcast is already pending.
func (d *dispatcher) tryAcquireJob() bool {
	return d.jobRegistered.CompareAndSwap(false, true)
}

// releaseJob returns the in-flight slot without running a broadcast, used
// when a scheduler submission is rejected.
func (d *dispatcher) releaseJob() {
	d.jobRegistered.Store(false)
}
