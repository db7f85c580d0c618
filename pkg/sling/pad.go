package sling

import (
	"sync/atomic"
	"unsafe"
)

// paddedUint64 occupies a full cache line so that two of them never share one.
type paddedUint64 struct {
	atomic.Uint64
	_ [CacheLineSize - unsafe.Sizeof(atomic.Uint64{})]byte
}

// paddedBool is the atomic.Bool counterpart of paddedUint64.
type paddedBool struct {
	atomic.Bool
	_ [CacheLineSize - unsafe.Sizeof(atomic.Bool{})]byte
}

// maxUint64 raises a to v unless it already holds a larger value.
func maxUint64(a *atomic.Uint64, v uint64) {
	for {
		cur := a.Load()
		if cur >= v || a.CompareAndSwap(cur, v) {
			return
		}
	}
}
