package sampler

import (
	"context"
	"sync"
)

// lifecycleState tracks the one-way install/uninstall machine.
type lifecycleState int

const (
	stateUninstalled lifecycleState = iota
	stateInstalled
	stateTornDown
)

// lifecycleController governs the subsystem state machine:
//
//	Uninstalled -> Installed <-> Running/Stopped
//
// Install is one-way: after Uninstall the controller is torn down for the
// remainder of the process lifetime and Install fails. Start/stop of
// sampling is per-worker and does not touch the controller.
type lifecycleController struct {
	mu      sync.Mutex
	state   lifecycleState
	running bool
	cancel  context.CancelFunc
}

// install transitions Uninstalled -> Installed and invokes start with a
// context that uninstall will cancel. Returns false without calling start if
// the controller has ever been installed before.
func (lc *lifecycleController) install(start func(ctx context.Context)) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.state != stateUninstalled {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.cancel = cancel
	lc.state = stateInstalled
	start(ctx)
	return true
}

// uninstall hard-cancels the background work and burns the controller.
// Idempotent; calling it before install still burns any future install.
func (lc *lifecycleController) uninstall() {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.state != stateInstalled {
		lc.state = stateTornDown
		return
	}
	lc.cancel()
	lc.running = false
	lc.state = stateTornDown
}

// start marks the subsystem running. Idempotent; fails only when the
// subsystem is not installed.
func (lc *lifecycleController) start() bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.state != stateInstalled {
		return false
	}
	lc.running = true
	return true
}

// isRunning reports whether start has been called since install.
func (lc *lifecycleController) isRunning() bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.running
}

// isInstalled reports whether the controller is currently installed.
func (lc *lifecycleController) isInstalled() bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.state == stateInstalled
}
