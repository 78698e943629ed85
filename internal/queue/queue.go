// Package queue implements the unbounded FIFO queues that serialize all
// outbound work. Producers never block on enqueue; a single consumer
// drains each queue at a fixed cadence so the bot never floods the
// transport. Backpressure is deliberately absent: the fixed delay, not
// memory, is the limiting resource here.
package queue

import "sync"

// FIFO is an unbounded first-in-first-out queue safe for concurrent use.
type FIFO[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

// NewFIFO creates an empty queue.
func NewFIFO[T any]() *FIFO[T] {
	q := &FIFO[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an item. It never blocks. Pushing to a closed queue is a
// no-op returning false.
func (q *FIFO[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, item)
	q.cond.Signal()
	return true
}

// Pop removes and returns the oldest item, blocking until one is
// available or the queue is closed. ok is false once the queue is closed
// and drained.
func (q *FIFO[T]) Pop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item = q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Close marks the queue closed and wakes the consumer. Items already
// queued are still delivered.
func (q *FIFO[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued items.
func (q *FIFO[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
