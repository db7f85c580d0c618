// Package sling implements a fixed-capacity, single-writer, multi-reader ring
// buffer with broadcast semantics.
//
// Every Reader created with Buffer.NewReader observes every message the Writer
// pushes, provided it keeps up. The Writer never waits for readers: once it has
// wrapped around the ring past a reader's position, the overwritten messages are
// gone and the reader is never told. This silent overrun is the central trade of
// the design; size the buffer for the slowest reader you care about.
//
// Synchronization is a per-slot seqlock. A slot's sequence is odd while the
// writer is copying a payload into it and even when it is stable. Readers copy
// the payload and then re-check the sequence, discarding reads that raced with a
// write. Payloads are copied one machine word at a time with atomic loads and
// stores, so element types must not contain pointers.
//
// Two sharing modes exist for readers:
//
//   - Borrow: hand the same *Reader to several goroutines. They advance one
//     cursor with compare-and-swap and split the stream between them.
//   - Clone: Reader.Clone returns a new reader with its own cursor. Both see
//     the rest of the stream independently.
package sling
