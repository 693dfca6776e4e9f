package audio

import (
	"context"
	"errors"
	"sync"
)

// DefaultQueueCapacity is used when a queue is created with a non-positive
// capacity.
const DefaultQueueCapacity = 64

// ErrQueueClosed is returned by Pop once the queue is closed and drained.
var ErrQueueClosed = errors.New("audio: queue closed")

// Queue is a bounded FIFO of audio chunks. When full, Push discards the
// oldest chunk. Every chunk is returned by at most one Pop.
type Queue struct {
	mu       sync.Mutex
	items    []*Chunk
	capacity int
	drops    uint64
	closed   bool

	notify chan struct{}
	done   chan struct{}
}

// NewQueue creates a queue holding at most capacity chunks.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		items:    make([]*Chunk, 0, capacity),
		capacity: capacity,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Push appends c. It reports whether the oldest chunk was dropped to make
// room. Pushing to a closed queue is a no-op.
func (q *Queue) Push(c *Chunk) (dropped bool) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if len(q.items) == q.capacity {
		q.items[0] = nil
		q.items = append(q.items[:0], q.items[1:]...)
		q.drops++
		dropped = true
	}
	q.items = append(q.items, c)
	q.mu.Unlock()

	q.signal()
	return dropped
}

// Pop removes and returns the oldest chunk, blocking until one is available,
// ctx is done or the queue is closed.
func (q *Queue) Pop(ctx context.Context) (*Chunk, error) {
	for {
		q.mu.Lock()
		if n := len(q.items); n > 0 {
			c := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			if n > 1 {
				q.signal()
			}
			return c, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, ErrQueueClosed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.done:
		case <-q.notify:
		}
	}
}

// Close wakes all blocked Pop calls. Chunks already queued can still be
// popped.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Len returns the number of queued chunks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drops returns how many chunks were discarded because the queue was full.
func (q *Queue) Drops() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.drops
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
