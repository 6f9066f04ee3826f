// Package keepalive implements the pin/release capability that keeps trace
// buffers and the frame references inside them reachable between capture and
// retrieval. Pinning stores a strong reference under a unique handle; the
// garbage collector cannot reclaim a pinned owner until the handle is
// released.
package keepalive

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnknownHandle is returned when releasing a handle that was never pinned
// or was already released.
var ErrUnknownHandle = errors.New("unknown keep-alive handle")

// Registry is a mutex-guarded pin table. Pin and Release are called from
// worker registration and deregistration only, never from the capture path.
type Registry struct {
	mu     sync.Mutex
	pinned map[uuid.UUID]any
	logger zerolog.Logger
}

// NewRegistry creates an empty pin registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		pinned: make(map[uuid.UUID]any),
		logger: logger.With().Str("component", "keepalive").Logger(),
	}
}

// Pin registers owner and returns an opaque handle for later release.
func (r *Registry) Pin(owner any) (any, error) {
	if owner == nil {
		return nil, errors.New("cannot pin nil owner")
	}
	id := uuid.New()

	r.mu.Lock()
	r.pinned[id] = owner
	r.mu.Unlock()

	return id, nil
}

// Release drops the pin for the given handle, making the owner reclaimable.
func (r *Registry) Release(h any) error {
	id, ok := h.(uuid.UUID)
	if !ok {
		return fmt.Errorf("invalid keep-alive handle type %T", h)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pinned[id]; !ok {
		return ErrUnknownHandle
	}
	delete(r.pinned, id)
	return nil
}

// Size reports the number of live pins.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pinned)
}
