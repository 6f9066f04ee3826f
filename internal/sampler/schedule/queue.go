// Package schedule implements the deferred-scheduling primitive: callbacks
// submitted from timing-critical context are queued and run later on a
// dedicated service goroutine, each at most once.
package schedule

import (
	"errors"
	"sync"

	"github.com/eapache/queue"
	"github.com/rs/zerolog"
)

// ErrClosed is returned by ScheduleOnce after Close. Submissions are
// rejected, never queued for a dead service goroutine.
var ErrClosed = errors.New("scheduler is closed")

// Queue runs submitted callbacks in FIFO order on a single service
// goroutine. ScheduleOnce never blocks: it appends to the queue and nudges
// the service goroutine via a buffered wake channel.
type Queue struct {
	mu     sync.Mutex
	q      *queue.Queue
	closed bool

	wake   chan struct{}
	done   chan struct{}
	logger zerolog.Logger
}

// NewQueue creates a scheduler and starts its service goroutine.
func NewQueue(logger zerolog.Logger) *Queue {
	s := &Queue{
		q:      queue.New(),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
	go s.service()
	return s
}

// ScheduleOnce queues fn to run on the service goroutine at most once.
// Returns ErrClosed if the scheduler has been shut down.
func (s *Queue) ScheduleOnce(fn func()) error {
	if fn == nil {
		return errors.New("nil callback")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.q.Add(fn)
	// Non-blocking nudge; a single pending wake covers any number of queued
	// callbacks because the service goroutine drains the queue on each wake.
	select {
	case s.wake <- struct{}{}:
	default:
	}
	s.mu.Unlock()

	return nil
}

// Close stops accepting submissions, waits for the service goroutine to run
// the callbacks already accepted, and shuts it down. Idempotent.
func (s *Queue) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.wake)
	s.mu.Unlock()

	<-s.done
	return nil
}

// service drains the queue whenever woken, then exits once the scheduler is
// closed and the backlog is empty.
func (s *Queue) service() {
	defer close(s.done)
	for range s.wake {
		s.drain()
	}
	// Accepted-but-unserviced callbacks still run once on shutdown.
	s.drain()
}

func (s *Queue) drain() {
	for {
		s.mu.Lock()
		if s.q.Length() == 0 {
			s.mu.Unlock()
			return
		}
		fn := s.q.Remove().(func())
		s.mu.Unlock()
		fn()
	}
}
