//go:build amd64 || arm64 || ppc64 || ppc64le

package sling

// CacheLineSize is the stride used to keep hot atomics on separate cache lines.
// Adjacent-line prefetch on these targets pulls lines in pairs.
const CacheLineSize = 128
