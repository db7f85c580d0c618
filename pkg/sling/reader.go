package sling

import "runtime"

// Status classifies the outcome of Reader.Poll.
type Status uint8

const (
	// Idle means the reader has consumed everything currently available.
	Idle Status = iota
	// Pending means the slot under the cursor is being written; retry shortly.
	Pending
	// Ready means a value was returned.
	Ready
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Reader is a read cursor over a Buffer.
//
// Goroutines sharing one *Reader split the stream between them: each message is
// delivered to at most one of them. Use Clone to get a reader that sees the
// stream on its own.
type Reader[T any] struct {
	buf *Buffer[T]

	_       [CacheLineSize]byte
	cursor  paddedUint64 // next slot to try
	version paddedUint64 // local high-water generation
}

// Pop returns the next unconsumed message, or false if there is none right now.
// A slot that is mid-write also reports false; see Poll to tell the two apart.
func (r *Reader[T]) Pop() (T, bool) {
	v, st := r.Poll()
	return v, st == Ready
}

// Poll is Pop with a three-valued result.
func (r *Reader[T]) Poll() (T, Status) {
	var zero T
	for {
		i, gen, st := r.claim()
		if st != Ready {
			return zero, st
		}
		s := &r.buf.slots[i]
		v := loadPayload[T](s.payload)
		if s.seq.Load() == gen {
			return v, Ready
		}
		// The writer lapped slot i while we copied it. The copy is garbage and
		// the message it held is gone; move on to the next slot.
	}
}

// PopSpin retries Poll up to maxSpin times, yielding the processor between
// attempts, before giving up.
func (r *Reader[T]) PopSpin(maxSpin int) (T, bool) {
	for spin := 0; ; spin++ {
		v, st := r.Poll()
		if st == Ready {
			return v, true
		}
		if spin >= maxSpin {
			return v, false
		}
		runtime.Gosched()
	}
}

// claim advances the cursor past the next readable slot and returns that slot
// with the generation it held when claimed.
func (r *Reader[T]) claim() (uint64, uint64, Status) {
	b := r.buf
	i := r.cursor.Load()
	for {
		seq := b.slots[i].seq.Load()
		if seq&1 != 0 {
			return 0, 0, Pending
		}
		gen := seq &^ 1
		ver := r.version.Load()
		// Slot zero at our high-water means we wrapped back onto data we
		// already saw; anything below it is from an older lap.
		if (i == 0 && gen == ver) || gen < ver {
			return 0, 0, Idle
		}
		maxUint64(&r.version.Uint64, gen)
		if r.cursor.CompareAndSwap(i, b.next(i)) {
			return i, gen, Ready
		}
		i = r.cursor.Load()
	}
}

// Clone returns a new reader starting from r's current cursor and high-water
// mark. The two evolve independently afterwards.
func (r *Reader[T]) Clone() *Reader[T] {
	c := &Reader[T]{buf: r.buf}
	c.cursor.Store(r.cursor.Load())
	c.version.Store(r.version.Load())
	return c
}

// Cursor returns the slot the reader will try next.
func (r *Reader[T]) Cursor() int {
	return int(r.cursor.Load())
}

// HighWater returns the reader's local high-water generation.
func (r *Reader[T]) HighWater() uint64 {
	return r.version.Load()
}
