// Package queue holds pending records between the event handlers and the
// database writer.
package queue

import "sync"

// Queue is a FIFO of rows waiting to be written in batches. It is safe for
// concurrent use.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends items at the tail.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	q.items = append(q.items, items...)
	q.mu.Unlock()
}

// Requeue puts items back at the head, ahead of anything pushed since they
// were drained, so a failed batch is retried in its original order.
func (q *Queue[T]) Requeue(items ...T) {
	if len(items) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	merged := make([]T, 0, len(items)+len(q.items))
	merged = append(merged, items...)
	q.items = append(merged, q.items...)
}

// Drain removes and returns up to max items from the head. max <= 0 takes
// everything. The returned slice is owned by the caller.
func (q *Queue[T]) Drain(max int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if max <= 0 || max >= len(q.items) {
		batch := q.items
		q.items = nil
		return batch
	}
	batch := make([]T, max)
	copy(batch, q.items)
	rest := make([]T, len(q.items)-max)
	copy(rest, q.items[max:])
	q.items = rest
	return batch
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}
