package sling

import (
	"reflect"
	"sync/atomic"
	"unsafe"
)

const wordSize = unsafe.Sizeof(uintptr(0))

// slot is one cell of the ring.
//
// seq is even when the payload is stable and odd while a write is in flight.
// The payload words are only meaningful to a reader that saw the same even seq
// before and after copying them.
type slot struct {
	seq     atomic.Uint64
	payload []atomic.Uintptr
}

// wordsFor returns how many machine words hold size bytes.
func wordsFor(size uintptr) int {
	return int((size + wordSize - 1) / wordSize)
}

// storePayload copies *v into dst a word at a time.
func storePayload[T any](dst []atomic.Uintptr, v *T) {
	src := unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
	for i := range dst {
		var w uintptr
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&w)), wordSize), src[uintptr(i)*wordSize:])
		dst[i].Store(w)
	}
}

// loadPayload is the inverse of storePayload. The result may be torn; callers
// validate it against the slot sequence.
func loadPayload[T any](src []atomic.Uintptr) (v T) {
	dst := unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v))
	for i := range src {
		w := src[i].Load()
		copy(dst[uintptr(i)*wordSize:], unsafe.Slice((*byte)(unsafe.Pointer(&w)), wordSize))
	}
	return v
}

// hasPointers reports whether values of t hold references the garbage collector
// would need to see.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Slice,
		reflect.String, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
