//go:build !(amd64 || arm64 || ppc64 || ppc64le || arm || mips || mipsle || mips64 || mips64le || riscv64 || s390x)

package sling

// CacheLineSize is the stride used to keep hot atomics on separate cache lines.
const CacheLineSize = 64
