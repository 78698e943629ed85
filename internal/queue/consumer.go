package queue

import "time"

// Consume drains q with a single consumer loop: pop one item, run fn,
// sleep the fixed delay, repeat. A failing item is reported through
// onError and never retried; the loop proceeds to the next item. Consume
// returns when the queue is closed and drained.
//
// Items execute strictly in enqueue order. There is no per-item
// cancellation; once queued, an item runs to completion or fails.
func Consume[T any](q *FIFO[T], delay time.Duration, fn func(T) error, onError func(error)) {
	for {
		item, ok := q.Pop()
		if !ok {
			return
		}
		if err := fn(item); err != nil && onError != nil {
			onError(err)
		}
		time.Sleep(delay)
	}
}
