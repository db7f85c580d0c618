package testbench

import "github.com/valyala/fastrand"

// Payload is the fixed-size message pushed by the benchmarks.
type Payload [8]byte

// SequencePayload encodes i little-endian.
func SequencePayload(i int) Payload {
	var p Payload
	for b := 0; b < len(p); b++ {
		p[b] = byte(uint64(i) >> (8 * b))
	}
	return p
}

// RandomPayload ignores i and fills the payload from the fast PRNG.
func RandomPayload(int) Payload {
	var p Payload
	lo, hi := fastrand.Uint32(), fastrand.Uint32()
	for b := 0; b < 4; b++ {
		p[b] = byte(lo >> (8 * b))
		p[4+b] = byte(hi >> (8 * b))
	}
	return p
}

// Index decodes a SequencePayload.
func (p Payload) Index() int {
	var v uint64
	for b := len(p) - 1; b >= 0; b-- {
		v = v<<8 | uint64(p[b])
	}
	return int(v)
}
