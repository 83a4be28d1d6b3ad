package datasync

import (
	"context"
	"sync"
)

type queuedOp struct {
	fn   func(ctx context.Context) error
	done chan error
}

// Queue is a single-worker FIFO operation queue. Mutations against the
// shared caches are read-modify-write; running them one at a time, in
// submission order, is what keeps two concurrent creates from both
// reading the same pre-mutation list and dropping each other's record.
type Queue struct {
	mu       sync.RWMutex
	closed   bool
	jobs     chan queuedOp
	finished chan struct{}
}

// NewQueue creates a queue and starts its worker.
func NewQueue(buffer int) *Queue {
	if buffer <= 0 {
		buffer = 64
	}
	q := &Queue{
		jobs:     make(chan queuedOp, buffer),
		finished: make(chan struct{}),
	}
	go q.run()
	return q
}

// Do submits an operation and blocks until it has executed. The caller's
// context only bounds the wait: once enqueued, the operation runs to
// completion even if the caller stops listening.
func (q *Queue) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	op := queuedOp{fn: fn, done: make(chan error, 1)}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.jobs <- op
	queueDepth.Inc()
	q.mu.RUnlock()

	select {
	case err := <-op.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting operations, waits for everything already queued
// to finish, then stops the worker.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	<-q.finished
}

func (q *Queue) run() {
	defer close(q.finished)
	for op := range q.jobs {
		queueDepth.Dec()
		op.done <- op.fn(context.Background())
	}
}
