// Package spmc is a bounded, lock-free, single-producer/multi-consumer FIFO.
// Consumers split the stream and the producer waits when the ring is full, so
// nothing is ever lost. It is the lossless baseline the broadcast ring is
// measured against.
package spmc

import (
	"runtime"
	"sync/atomic"

	"github.com/i5heu/GoSling/internal/queue"
	"github.com/i5heu/GoSling/pkg/sling"
)

// cell is one slot of the ring. seq == pos means free for the lap that writes
// pos, seq == pos+1 means published.
type cell[T any] struct {
	seq   atomic.Uint64
	value T
}

type paddedCounter struct {
	atomic.Uint64
	_ [sling.CacheLineSize - 8]byte
}

// Ring is the queue. Enqueue must only be called from one goroutine.
type Ring[T any] struct {
	cells    []cell[T]
	mask     uint64
	capacity uint64
	tail     paddedCounter // producer position
	head     paddedCounter // consumer position
}

// New creates a ring with the given capacity rounded up to a power of 2.
func New[T any](capacity uint64) *Ring[T] {
	size := uint64(1)
	for size < capacity {
		size <<= 1
	}
	r := &Ring[T]{
		cells:    make([]cell[T], size),
		mask:     size - 1,
		capacity: size,
	}
	for i := range r.cells {
		r.cells[i].seq.Store(uint64(i))
	}
	return r
}

// Enqueue publishes val, yielding while the slot it needs is still held by a
// consumer of the previous lap.
func (r *Ring[T]) Enqueue(val T) {
	pos := r.tail.Load()
	c := &r.cells[pos&r.mask]
	for c.seq.Load() != pos {
		runtime.Gosched()
	}
	c.value = val
	c.seq.Store(pos + 1)
	r.tail.Store(pos + 1)
}

// Dequeue claims the oldest published value. It gives up after a few lost
// races so callers can decide how to back off.
func (r *Ring[T]) Dequeue() (T, bool) {
	const maxRetries = 16
	var zero T
	for retry := 0; retry < maxRetries; retry++ {
		pos := r.head.Load()
		c := &r.cells[pos&r.mask]
		diff := int64(c.seq.Load()) - int64(pos+1)
		switch {
		case diff == 0:
			if r.head.CompareAndSwap(pos, pos+1) {
				v := c.value
				c.seq.Store(pos + r.capacity)
				return v, true
			}
		case diff < 0:
			// Not yet published for this lap.
			return zero, false
		}
		// diff > 0: head moved under us.
	}
	return zero, false
}

// Consumer returns r itself: all consumers compete on head.
func (r *Ring[T]) Consumer() queue.Consumer[T] {
	return r
}

func (r *Ring[T]) Capacity() uint64 {
	return r.capacity
}

// UsedSlots is approximate while producer and consumers are running.
func (r *Ring[T]) UsedSlots() uint64 {
	return r.tail.Load() - r.head.Load()
}

// FreeSlots is approximate while producer and consumers are running.
func (r *Ring[T]) FreeSlots() uint64 {
	return r.capacity - r.UsedSlots()
}
