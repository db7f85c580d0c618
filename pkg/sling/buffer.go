package sling

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"unsafe"
)

// ErrBusy is returned by TryLock while another Writer holds the buffer.
var ErrBusy = errors.New("sling: buffer already has a writer")

// Buffer is a fixed-size broadcast ring of T values.
//
// A Buffer must not be copied after first use.
type Buffer[T any] struct {
	_ [CacheLineSize]byte

	admitted paddedBool   // true while a Writer is live
	index    paddedUint64 // slot the next Push targets
	version  paddedUint64 // high-water generation, never decreases

	capacity uint64
	slots    []slot
}

// New creates a Buffer with room for capacity messages.
//
// It panics if capacity is less than one or if T contains pointers, strings,
// slices, maps, channels, funcs or interfaces.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		panic("sling: capacity must be >= 1")
	}
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if hasPointers(typ) {
		panic(fmt.Sprintf("sling: element type %s must not contain pointers", typ))
	}

	var zero T
	w := wordsFor(unsafe.Sizeof(zero))
	arena := make([]atomic.Uintptr, capacity*w)
	slots := make([]slot, capacity)
	for i := range slots {
		slots[i].payload = arena[i*w : (i+1)*w : (i+1)*w]
	}

	return &Buffer[T]{
		capacity: uint64(capacity),
		slots:    slots,
	}
}

// TryLock admits the caller as the single writer. It never blocks: if another
// Writer is live it returns ErrBusy straight away.
func (b *Buffer[T]) TryLock() (*Writer[T], error) {
	if !b.admitted.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	return &Writer[T]{buf: b}, nil
}

// NewReader returns an independent reader positioned at slot zero whose
// high-water mark starts at the buffer's current one. Messages already in the
// ring at that generation are treated as consumed.
func (b *Buffer[T]) NewReader() *Reader[T] {
	r := &Reader[T]{buf: b}
	r.version.Store(b.version.Load())
	return r
}

// Cap returns the number of slots.
func (b *Buffer[T]) Cap() int {
	return int(b.capacity)
}

// HighWater returns the largest generation any write has published.
func (b *Buffer[T]) HighWater() uint64 {
	return b.version.Load()
}

// next returns the slot index after i.
func (b *Buffer[T]) next(i uint64) uint64 {
	if i++; i == b.capacity {
		return 0
	}
	return i
}
