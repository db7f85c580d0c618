package testbench

import (
	"github.com/i5heu/GoSling/internal/queue"
	"github.com/i5heu/GoSling/pkg/sling"
)

// ReaderMode selects how consumers of a SlingQueue get their read handle.
type ReaderMode int

const (
	// SharedReader hands every consumer the same *sling.Reader, so they split
	// the stream.
	SharedReader ReaderMode = iota
	// ClonedReaders hands each consumer its own clone, so each sees the whole
	// stream.
	ClonedReaders
)

// SlingQueue adapts a sling.Buffer and its single writer to the harness.
type SlingQueue[T any] struct {
	buf    *sling.Buffer[T]
	writer *sling.Writer[T]
	root   *sling.Reader[T]
	mode   ReaderMode
}

// NewSlingQueue builds a buffer, takes its writer and creates the root reader
// before anything is pushed.
func NewSlingQueue[T any](capacity uint64, mode ReaderMode) *SlingQueue[T] {
	buf := sling.New[T](int(capacity))
	w, err := buf.TryLock()
	if err != nil {
		// A buffer nobody else has seen cannot be busy.
		panic(err)
	}
	return &SlingQueue[T]{
		buf:    buf,
		writer: w,
		root:   buf.NewReader(),
		mode:   mode,
	}
}

func (q *SlingQueue[T]) Enqueue(v T) {
	q.writer.Push(v)
}

func (q *SlingQueue[T]) Consumer() queue.Consumer[T] {
	if q.mode == ClonedReaders {
		return readerConsumer[T]{q.root.Clone()}
	}
	return readerConsumer[T]{q.root}
}

func (q *SlingQueue[T]) Capacity() uint64 {
	return uint64(q.buf.Cap())
}

// Close releases the writer.
func (q *SlingQueue[T]) Close() error {
	return q.writer.Close()
}

type readerConsumer[T any] struct {
	r *sling.Reader[T]
}

func (c readerConsumer[T]) Dequeue() (T, bool) {
	return c.r.Pop()
}
