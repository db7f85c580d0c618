package main

import (
	"fmt"
	"sort"
)

// consumerStats summarizes the samples of one implementation at one consumer count.
type consumerStats struct {
	x         float64 // plotted position
	consumers float64
	min       float64 // average of bottom 5%
	median    float64
	max       float64 // average of top 5%
}

// buildStats computes "average of bottom 5%", median, and "average of top 5%".
func buildStats(byConsumers map[float64][]float64) []consumerStats {
	var out []consumerStats
	for x, vals := range byConsumers {
		if len(vals) == 0 {
			continue
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		out = append(out, consumerStats{
			x:         x,
			consumers: x,
			min:       averageOfRange(sorted, 0.0, 0.05),
			median:    median(sorted),
			max:       averageOfRange(sorted, 0.95, 1.0),
		})
	}
	return out
}

// averageOfRange returns the average of sortedVals in [startFrac, endFrac) of its length,
// falling back to the median when that slice is empty.
func averageOfRange(sortedVals []float64, startFrac, endFrac float64) float64 {
	n := len(sortedVals)
	if n == 0 {
		return 0
	}
	lo := int(float64(n) * startFrac)
	hi := int(float64(n) * endFrac)
	if hi > n {
		hi = n
	}
	if lo >= hi {
		return median(sortedVals)
	}
	sum := 0.0
	for _, v := range sortedVals[lo:hi] {
		sum += v
	}
	return sum / float64(hi-lo)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return 0.5 * (sorted[mid-1] + sorted[mid])
}

// formatNs nicely formats a nanoseconds value in ns, µs, ms, or s.
func formatNs(ns float64) string {
	switch {
	case ns < 1e3:
		return fmt.Sprintf("%.0fns", ns)
	case ns < 1e6:
		return fmt.Sprintf("%.1fµs", ns/1e3)
	case ns < 1e9:
		return fmt.Sprintf("%.1fms", ns/1e6)
	default:
		return fmt.Sprintf("%.2fs", ns/1e9)
	}
}
