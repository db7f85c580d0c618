package buffered

import "github.com/i5heu/GoSling/internal/queue"

// BufferedQueue is a channel-backed single-producer/multi-consumer queue.
// Consumers split the stream; it is the baseline the broadcast ring is
// measured against.
type BufferedQueue[T any] struct {
	ch chan T
}

func New[T any](bufferSize uint64) *BufferedQueue[T] {
	// Enforce minimum capacity of 1 to ensure proper bounded buffer semantics.
	// A zero-capacity Go channel is an unbuffered synchronization primitive,
	// not a zero-capacity buffer.
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &BufferedQueue[T]{
		ch: make(chan T, bufferSize),
	}
}

// Enqueue blocks while the channel is full.
func (q *BufferedQueue[T]) Enqueue(val T) {
	q.ch <- val
}

func (q *BufferedQueue[T]) Dequeue() (val T, ok bool) {
	select {
	case val = <-q.ch:
		return val, true
	default:
		return val, false
	}
}

// Consumer returns q itself: every consumer competes for the same channel.
func (q *BufferedQueue[T]) Consumer() queue.Consumer[T] {
	return q
}

func (q *BufferedQueue[T]) Capacity() uint64 {
	return uint64(cap(q.ch))
}

func (q *BufferedQueue[T]) UsedSlots() uint64 {
	return uint64(len(q.ch))
}
