package sampler

import (
	"sync"
)

// registry is the process-wide collection of live worker contexts, newest
// first. It is the only state shared across workers; every access from the
// hot dispatch path goes through tryForEach so a contended mutex can never
// stall the timer tick.
type registry struct {
	mu       sync.Mutex
	contexts []*ThreadContext
}

func newRegistry() *registry {
	return &registry{}
}

// add inserts a context at the head of the collection. Callers must only add
// a context once; the profiler facade enforces this by construction (a
// context is created and inserted in the same registration call).
func (r *registry) add(tc *ThreadContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts = append([]*ThreadContext{tc}, r.contexts...)
}

// remove deletes a context from the collection. Removal is idempotent:
// removing an absent context mutates nothing and returns false.
func (r *registry) remove(tc *ThreadContext) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.contexts {
		if c == tc {
			r.contexts = append(r.contexts[:i], r.contexts[i+1:]...)
			return true
		}
	}
	return false
}

// tryForEach visits every registered context under the mutex, but only if the
// mutex can be acquired without blocking. Returns false when the lock was
// contended and the walk was skipped entirely.
func (r *registry) tryForEach(fn func(*ThreadContext)) bool {
	if !r.mu.TryLock() {
		return false
	}
	defer r.mu.Unlock()
	for _, tc := range r.contexts {
		fn(tc)
	}
	return true
}

// size reports the number of registered contexts.
func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contexts)
}
