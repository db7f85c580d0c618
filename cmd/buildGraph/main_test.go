package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i5heu/GoSling/internal/report"
)

func TestBuildStats(t *testing.T) {
	vals := make([]float64, 100)
	for i := range vals {
		vals[i] = float64(100 - i)
	}
	stats := buildStats(map[float64][]float64{4: vals})
	require.Len(t, stats, 1)
	assert.Equal(t, 4.0, stats[0].consumers)
	assert.Equal(t, 3.0, stats[0].min) // mean of 1..5
	assert.Equal(t, 50.5, stats[0].median)
	assert.Equal(t, 98.0, stats[0].max) // mean of 96..100
	assert.Equal(t, 100.0, vals[0], "input samples must not be reordered")
}

func TestAverageOfRangeFallsBackToMedian(t *testing.T) {
	assert.Equal(t, 2.0, averageOfRange([]float64{1, 2, 3}, 0, 0.05))
	assert.Zero(t, averageOfRange(nil, 0, 1))
}

func TestFormatNs(t *testing.T) {
	assert.Equal(t, "12ns", formatNs(12))
	assert.Equal(t, "1.5µs", formatNs(1500))
	assert.Equal(t, "2.0ms", formatNs(2e6))
	assert.Equal(t, "3.00s", formatNs(3e9))
}

func TestGroupSessions(t *testing.T) {
	sessions := []report.FullReport{{
		SystemInfo: report.SystemInfo{NumCPU: 8, SimulatedCPUCount: 2},
		Benchmarks: []report.BenchmarkResult{
			{Implementation: "SlingSharedReader", Mode: "burst", NumConsumers: 4, NumMessagesConsumed: 1000, ActualElapsed: "1ms"},
			{Implementation: "SlingSharedReader", Mode: "burst", NumConsumers: 4, NumMessagesConsumed: 0, ActualElapsed: "1ms"},
			{Implementation: "Golang Buffered Channel", NumConsumers: 8, NumMessagesConsumed: 10, ActualElapsed: "bogus"},
			{Implementation: "Golang Buffered Channel", NumConsumers: 8, NumMessagesConsumed: 10, ActualElapsed: "10µs"},
		},
	}}

	groups := groupSessions(sessions)
	require.Len(t, groups, 2)
	assert.Equal(t, []float64{1000}, groups[groupKey{cpus: 2, mode: "burst"}]["SlingSharedReader"][4])
	assert.Equal(t, []float64{1000}, groups[groupKey{cpus: 2, mode: "timed"}]["Golang Buffered Channel"][8])
}

func TestRenderPlot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "graph.png")
	data := series{
		"SlingClonedReaders": {4: {10, 12, 11}, 8: {20, 22}},
		"SlingSharedReader":  {4: {30}},
	}
	require.NoError(t, renderPlot("test", data, out))
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
