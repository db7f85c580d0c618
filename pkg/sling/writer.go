package sling

import "fmt"

// Writer is the single admitted mutator of a Buffer. Obtain one with
// Buffer.TryLock and release it with Close.
//
// A Writer is not safe for concurrent use; it may be handed between goroutines.
type Writer[T any] struct {
	buf    *Buffer[T]
	closed bool
}

// Push stores v in the next slot. It never blocks and never fails. If readers
// have not consumed the message that previously lived in that slot, it is lost.
func (w *Writer[T]) Push(v T) {
	if w.closed {
		panic("sling: push on a closed writer")
	}
	b := w.buf
	i := b.index.Load()
	s := &b.slots[i]

	prev := s.seq.Add(1) - 1
	if prev&1 != 0 {
		panic(fmt.Sprintf("sling: slot %d sequence %d odd at write start", i, prev))
	}

	// Publish the generation this write will commit before touching the
	// payload, so readers judge staleness against it.
	maxUint64(&b.version.Uint64, prev+2)

	storePayload(s.payload, &v)

	if prev = s.seq.Add(1) - 1; prev&1 == 0 {
		panic(fmt.Sprintf("sling: slot %d sequence %d even at write commit", i, prev))
	}

	b.index.Store(b.next(i))
}

// Close releases writer admission so that a later TryLock can succeed.
// Closing twice is a no-op.
func (w *Writer[T]) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.buf.admitted.Store(false)
	return nil
}
