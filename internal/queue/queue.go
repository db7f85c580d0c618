package queue

// Consumer is one read handle. Dequeue returns the next value and true, or the
// zero value and false when nothing is available right now.
type Consumer[T any] interface {
	Dequeue() (T, bool)
}

// QueueValidationInterface is the constraint every implementation driven by the
// testbench must satisfy. The harness is generic over it, so concrete queues
// are called without dynamic dispatch.
type QueueValidationInterface[T any] interface {
	// Enqueue publishes an element. It is only ever called from one goroutine.
	Enqueue(T)

	// Consumer returns the handle one consumer goroutine should read from.
	// Partitioning queues hand every goroutine the same handle; broadcast
	// queues hand each goroutine its own.
	Consumer() Consumer[T]

	// Capacity returns the fixed number of slots.
	Capacity() uint64
}
