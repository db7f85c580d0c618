package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/i5heu/GoSling/internal/report"
)

// series maps implementation -> consumer count -> ns/msg samples.
type series map[string]map[float64][]float64

// groupKey identifies one output graph.
type groupKey struct {
	cpus int
	mode string
}

// groupSessions buckets every result by GOMAXPROCS and mode.
func groupSessions(sessions []report.FullReport) map[groupKey]series {
	groups := make(map[groupKey]series)
	for _, session := range sessions {
		cpus := session.CPUs()
		for _, b := range session.Benchmarks {
			dur, err := time.ParseDuration(b.ActualElapsed)
			if err != nil || b.NumMessagesConsumed == 0 {
				continue
			}
			mode := b.Mode
			if mode == "" {
				mode = "timed"
			}
			key := groupKey{cpus: cpus, mode: mode}
			if groups[key] == nil {
				groups[key] = make(series)
			}
			if groups[key][b.Implementation] == nil {
				groups[key][b.Implementation] = make(map[float64][]float64)
			}
			x := float64(b.NumConsumers)
			nsPerMsg := float64(dur.Nanoseconds()) / float64(b.NumMessagesConsumed)
			groups[key][b.Implementation][x] = append(groups[key][b.Implementation][x], nsPerMsg)
		}
	}
	return groups
}

func main() {
	jsonFile := flag.String("jsonfile", "test-results.json", "Path to JSON file containing test sessions")
	outputPrefix := flag.String("out", "benchmark_graph", "Output graph image filename prefix")
	flag.Parse()

	sessions, err := report.Load(*jsonFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading results: %v\n", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Fprintf(os.Stderr, "No sessions found in %s\n", *jsonFile)
		os.Exit(1)
	}

	groups := groupSessions(sessions)
	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].mode != keys[j].mode {
			return keys[i].mode < keys[j].mode
		}
		return keys[i].cpus < keys[j].cpus
	})

	for _, k := range keys {
		title := fmt.Sprintf("%s runs (5%%-avg-min / Median / 5%%-avg-max) vs. consumers for %d CPU(s)", k.mode, k.cpus)
		filename := fmt.Sprintf("%s_%s_%d.png", *outputPrefix, k.mode, k.cpus)
		if err := renderPlot(title, groups[k], filename); err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering %s: %v\n", filename, err)
			continue
		}
		fmt.Printf("Graph for %s mode, %d CPU(s) saved to %s\n", k.mode, k.cpus, filename)
	}
}
