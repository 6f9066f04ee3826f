package sampler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// timerWorker is the single long-lived background goroutine driving the
// sampling cadence. Once per tick it hands the broadcast to the deferred
// scheduler rather than running it inline, so the walk of the registry never
// happens on the timing-critical path. A rejected submission is logged and
// the tick dropped; the next tick retries naturally.
type timerWorker struct {
	interval time.Duration
	probe    CollectionProbe
	sched    Scheduler
	disp     *dispatcher
	logger   zerolog.Logger
}

func newTimerWorker(interval time.Duration, probe CollectionProbe, sched Scheduler, disp *dispatcher, logger zerolog.Logger) *timerWorker {
	return &timerWorker{
		interval: interval,
		probe:    probe,
		sched:    sched,
		disp:     disp,
		logger:   logger.With().Str("component", "timer").Logger(),
	}
}

// run loops until the context is cancelled. The sleep uses the runtime's
// monotonic clock; cancellation is a hard stop of the blocking sleep, there
// is no cooperative check inside the loop body.
func (w *timerWorker) run(ctx context.Context) {
	w.logger.Debug().Dur("interval", w.interval).Msg("timer worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Msg("timer worker cancelled")
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

// tick submits one broadcast, unless the runtime is collecting or a previous
// broadcast is still pending.
func (w *timerWorker) tick() {
	if w.probe.IsCollecting() {
		return
	}
	if !w.disp.tryAcquireJob() {
		return
	}
	if err := w.sched.ScheduleOnce(w.disp.broadcast); err != nil {
		w.disp.releaseJob()
		w.logger.Error().Err(err).Msg("failed to schedule sample broadcast")
	}
}
