//go:build arm || mips || mipsle || mips64 || mips64le || riscv64

package sling

// CacheLineSize is the stride used to keep hot atomics on separate cache lines.
const CacheLineSize = 32
