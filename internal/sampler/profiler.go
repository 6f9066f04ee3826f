package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	stkerrors "github.com/stacklight/stacklight/internal/errors"
	"github.com/stacklight/stacklight/internal/sampler/capture"
	"github.com/stacklight/stacklight/internal/sampler/keepalive"
	"github.com/stacklight/stacklight/internal/sampler/schedule"
)

// Options configures a Profiler. Zero-value fields fall back to the design
// defaults: 1ms interval, 2000 traces of up to 512 frames, the runtime
// capturer, an idle collection probe, the keep-alive registry, and an owned
// deferred-scheduling queue.
type Options struct {
	Interval  time.Duration
	MaxTraces int
	MaxFrames int

	Capturer  FrameCapturer
	Probe     CollectionProbe
	Pinner    Pinner
	Scheduler Scheduler

	Logger zerolog.Logger
}

// Default capacities. These mirror the long-standing fixed bounds of the
// sampling engine; Options overrides them per profiler.
const (
	DefaultInterval  = 1 * time.Millisecond
	DefaultMaxTraces = 2000
	DefaultMaxFrames = 512
)

// Profiler is the sampling engine facade: registry, dispatcher, timer and
// lifecycle wired to the collaborator contracts. One Profiler samples any
// number of registered workers.
type Profiler struct {
	opts   Options
	logger zerolog.Logger

	reg   *registry
	disp  *dispatcher
	timer *timerWorker
	lc    lifecycleController

	capturer FrameCapturer
	probe    CollectionProbe
	pinner   Pinner
	sched    Scheduler

	// ownedSched is non-nil when the profiler created its own scheduler and
	// is responsible for closing it on Uninstall.
	ownedSched *schedule.Queue
}

// New creates a Profiler. It performs no background work until Install.
func New(opts Options) *Profiler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxTraces <= 0 {
		opts.MaxTraces = DefaultMaxTraces
	}
	if opts.MaxFrames <= 0 {
		opts.MaxFrames = DefaultMaxFrames
	}

	logger := opts.Logger.With().Str("component", "profiler").Logger()

	p := &Profiler{
		opts:     opts,
		logger:   logger,
		reg:      newRegistry(),
		capturer: opts.Capturer,
		probe:    opts.Probe,
		pinner:   opts.Pinner,
		sched:    opts.Scheduler,
	}
	if p.capturer == nil {
		p.capturer = capture.NewRuntime()
	}
	if p.probe == nil {
		p.probe = idleProbe{}
	}
	if p.pinner == nil {
		p.pinner = keepalive.NewRegistry(opts.Logger)
	}
	if p.sched == nil {
		p.ownedSched = schedule.NewQueue(opts.Logger)
		p.sched = p.ownedSched
	}

	p.disp = newDispatcher(p.reg, opts.Logger)
	p.timer = newTimerWorker(p.opts.Interval, p.probe, p.sched, p.disp, opts.Logger)
	return p
}

// Install starts the background timer worker. It may be called once per
// profiler: a second call, or any call after Uninstall, returns false.
func (p *Profiler) Install() bool {
	ok := p.lc.install(func(ctx context.Context) {
		go p.timer.run(ctx)
	})
	if !ok {
		p.logger.Warn().Msg("install rejected: profiler already installed or torn down")
		return false
	}
	p.logger.Info().
		Dur("interval", p.opts.Interval).
		Int("max_traces", p.opts.MaxTraces).
		Int("max_frames", p.opts.MaxFrames).
		Msg("profiler installed")
	return true
}

// Uninstall hard-cancels the timer worker and shuts down an owned scheduler.
// After Uninstall the profiler cannot be installed again; use per-worker
// StopSampling/StartSampling to pause and resume instead of tearing down.
func (p *Profiler) Uninstall() {
	if p.ownedSched != nil {
		defer stkerrors.DeferClose(p.logger, p.ownedSched, "failed to close scheduler")
	}
	p.lc.uninstall()
	p.logger.Info().Msg("profiler uninstalled")
}

// Start marks the profiler running. Idempotent; returns false before Install.
func (p *Profiler) Start() bool {
	if !p.lc.start() {
		return false
	}
	p.logger.Info().Msg("profiling started")
	return true
}

// IsRunning reports whether Start has been called on an installed profiler.
func (p *Profiler) IsRunning() bool {
	return p.lc.isRunning()
}

// Register creates the calling worker's context and adds it to the registry.
// It must be called by the worker that will be sampled: the returned context
// is owned by that worker, and the worker must arrange for Deregister to run
// on every exit path (normally via defer) so the buffer and keep-alive pin
// are always released.
//
// A pin failure is fatal to the registration attempt and surfaced to the
// caller.
func (p *Profiler) Register() (*ThreadContext, error) {
	tc := newThreadContext(p.opts.MaxTraces, p.opts.MaxFrames, p.capturer, p.probe, p.logger)

	handle, err := p.pinner.Pin(tc.buf)
	if err != nil {
		return nil, fmt.Errorf("failed to pin trace buffer: %w", err)
	}
	tc.pinHandle = handle
	tc.alive.Store(true)

	p.reg.add(tc)
	p.logger.Debug().Int("registered", p.reg.size()).Msg("worker registered")
	return tc, nil
}

// Deregister removes a worker's context from the registry and releases its
// keep-alive pin. Idempotent: deregistering a context that is absent (or nil)
// returns false and mutates nothing.
//
// Sampling is disabled before the registry mutex is taken, so a broadcast
// racing with deregistration sees the disabled flag even if it still finds
// the entry.
func (p *Profiler) Deregister(tc *ThreadContext) bool {
	if tc == nil {
		return false
	}

	tc.samplingEnabled.Store(false)
	tc.alive.Store(false)

	if !p.reg.remove(tc) {
		return false
	}

	if err := p.pinner.Release(tc.pinHandle); err != nil {
		p.logger.Warn().Err(err).Msg("failed to release keep-alive pin")
	}
	p.logger.Debug().Int("registered", p.reg.size()).Msg("worker deregistered")
	return true
}

// RegisteredWorkers reports how many workers are currently registered.
func (p *Profiler) RegisteredWorkers() int {
	return p.reg.size()
}

// ClassForFrame resolves a captured frame reference to its qualified symbol
// name. Returns false when the reference cannot be resolved.
func (p *Profiler) ClassForFrame(ref FrameRef) (string, bool) {
	return p.capturer.Symbol(ref)
}
