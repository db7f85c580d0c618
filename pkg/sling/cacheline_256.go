//go:build s390x

package sling

// CacheLineSize is the stride used to keep hot atomics on separate cache lines.
const CacheLineSize = 256
