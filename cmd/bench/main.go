package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/i5heu/GoSling/internal/report"
	"github.com/i5heu/GoSling/internal/testbench"
	"github.com/i5heu/GoSling/pkg/config"
	"github.com/i5heu/GoSling/pkg/sling"
)

const (
	modeTimed = "timed"
	modeBurst = "burst"
)

// outputMarkdownTable loads the JSON file and outputs a Markdown table.
func outputMarkdownTable(jsonFile string, logger *zap.Logger) {
	sessions, err := report.Load(jsonFile)
	if err != nil {
		logger.Fatal("loading results", zap.Error(err))
	}
	if len(sessions) == 0 {
		logger.Fatal("no sessions found", zap.String("file", jsonFile))
	}
	// Use the last session for the table.
	lastSession := sessions[len(sessions)-1]
	implMetaMap := make(map[string]Implementation[testbench.Payload, benchQueue])
	for _, impl := range getImplementations() {
		implMetaMap[impl.name] = impl
	}

	rows := append([]report.BenchmarkResult(nil), lastSession.Benchmarks...)
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Throughput > rows[j].Throughput
	})
	fmt.Println("## Last Session Benchmark Summary")
	fmt.Println()
	fmt.Println("| Implementation       | Package  | Features                          | Mode  | Consumers | Throughput (msgs/sec) |")
	fmt.Println("|----------------------|----------|-----------------------------------|-------|-----------|-----------------------|")
	for _, r := range rows {
		meta := implMetaMap[r.Implementation]
		fmt.Printf("| %-20s | %-8s | %-33s | %-5s | %9d | %21.0f |\n",
			r.Implementation, meta.pkgName, strings.Join(meta.features, ", "), r.Mode, r.NumConsumers, r.Throughput)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	testIterations := flag.Int("iter", 0, "Number of test iterations per setting (0 uses the config value)")
	cpuMaxFlag := flag.Int("cpu", 0, "If non-zero, test only that GOMAXPROCS value; if 0, test common CPU/vCPU values up to runtime.NumCPU()")
	jsonExport := flag.Bool("json", false, "Export results as JSON to test-results.json")
	highConcurrency := flag.Bool("high-concurrency", false, "Include high concurrency consumer counts")
	markdownTable := flag.Bool("markdown-table", false, "Output markdown table from test-results.json and exit")
	jsonFileForMarkdown := flag.String("jsonfile", "test-results.json", "Path to JSON file for markdown table")
	progressFlag := flag.Bool("progress", false, "Display a progress bar with ETA")
	configPath := flag.String("config", "", "YAML file overriding the default bench settings")
	mode := flag.String("mode", modeTimed, "Run mode: timed (fixed duration) or burst (fixed message count)")
	metricsAddr := flag.String("metrics-addr", "", "If set, serve Prometheus metrics on this address")
	debug := flag.Bool("debug", false, "Use a development logger")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error creating logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *markdownTable {
		outputMarkdownTable(*jsonFileForMarkdown, logger)
		return
	}

	if *mode != modeTimed && *mode != modeBurst {
		logger.Fatal("unknown mode", zap.String("mode", *mode))
	}

	cfg := config.Default()
	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Fatal("loading config", zap.Error(err))
		}
	}
	if *testIterations > 0 {
		cfg.Iterations = *testIterations
	}

	metrics := newBenchMetrics()
	if srv := metrics.serve(*metricsAddr, logger); srv != nil {
		defer srv.Shutdown(context.Background())
	}

	cpuSettings := cpuSettingsFor(*cpuMaxFlag, runtime.NumCPU())
	concurrencyConfigs := cfg.ConcurrencySettings(*highConcurrency)
	impls := getImplementations()

	logger.Info("starting bench",
		zap.String("mode", *mode),
		zap.Ints("gomaxprocs", cpuSettings),
		zap.Ints("consumers", consumerCounts(concurrencyConfigs)),
		zap.Uint64("capacity", cfg.Capacity),
		zap.Int("iterations", cfg.Iterations),
	)

	totalTests := len(cpuSettings) * len(concurrencyConfigs) * cfg.Iterations * len(impls)
	var bar *progressbar.ProgressBar
	if *progressFlag {
		bar = progressbar.NewOptions(totalTests,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Progress"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionClearOnFinish(),
		)
	}

	var allSessions []report.FullReport
	for _, cpus := range cpuSettings {
		runtime.GOMAXPROCS(cpus)
		sysInfo := gatherSystemInfo()
		sysInfo.NumCPU = cpus
		sysInfo.SimulatedCPUCount = cpus

		fmt.Printf("\n=============================\n")
		fmt.Printf("GOMAXPROCS = %d\n", cpus)
		fmt.Printf("=============================\n")

		var results []report.BenchmarkResult
		for _, cc := range concurrencyConfigs {
			fmt.Printf("  [Concurrency: producers=1, consumers=%d]\n", cc.NumConsumers)
			for iteration := 1; iteration <= cfg.Iterations; iteration++ {
				fmt.Printf("    iteration %d/%d\n", iteration, cfg.Iterations)
				for _, impl := range impls {
					runtime.GC()
					result := runOne(impl, cfg, cc, *mode)
					results = append(results, result)
					metrics.observe(result, cpus)

					fmt.Printf("    %s => produced=%d, consumed=%d, throughput=%.0f msg/s, took=%s\n",
						impl.name, result.NumMessages, result.NumMessagesConsumed, result.Throughput, result.ActualElapsed)
					logger.Debug("run finished",
						zap.String("implementation", impl.name),
						zap.Int("gomaxprocs", cpus),
						zap.Int("consumers", cc.NumConsumers),
						zap.Int64("produced", result.NumMessages),
						zap.Int64("consumed", result.NumMessagesConsumed),
						zap.Float64("throughput", result.Throughput),
					)
					if bar != nil {
						bar.Add(1)
					}
				}
			}
		}

		allSessions = append(allSessions, report.FullReport{
			SessionTime: time.Now().Format(time.RFC3339),
			SystemInfo:  sysInfo,
			Benchmarks:  results,
		})
	}
	if bar != nil {
		bar.Finish()
	}

	if *jsonExport {
		const filename = "test-results.json"
		if err := report.Append(filename, allSessions...); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
		logger.Info("wrote results", zap.String("file", filename), zap.Int("sessions", len(allSessions)))
	}
}

// runOne builds a fresh queue and measures it once.
func runOne(impl Implementation[testbench.Payload, benchQueue], cfg config.Config, cc config.Concurrency, mode string) report.BenchmarkResult {
	q := impl.newQueue(cfg.Capacity)
	if c, ok := q.(io.Closer); ok {
		defer c.Close()
	}

	result := report.BenchmarkResult{
		Implementation: impl.name,
		Mode:           mode,
		NumConsumers:   cc.NumConsumers,
		Capacity:       q.Capacity(),
		GoVersion:      runtime.Version(),
	}

	var elapsed time.Duration
	switch mode {
	case modeBurst:
		result.NumMessages = int64(cfg.Messages)
		result.NumMessagesConsumed, elapsed = testbench.RunBurst(q, cc.NumConsumers, cfg.Messages, cfg.MaxSpin, testbench.SequencePayload)
	default:
		// Let the previous run's goroutines wind down.
		time.Sleep(250 * time.Millisecond)
		result.TestDuration = cfg.Duration.String()
		result.NumMessages, result.NumMessagesConsumed, elapsed = testbench.RunTimedTest(q, cc, cfg.Duration, testbench.SequencePayload)
	}

	result.ActualElapsed = elapsed.String()
	if elapsed > 0 {
		result.Throughput = float64(result.NumMessagesConsumed) / elapsed.Seconds()
	}
	result.Timestamp = time.Now().Unix()
	return result
}

// cpuSettingsFor returns the GOMAXPROCS values to sweep.
func cpuSettingsFor(cpuMax, trueCPUCount int) []int {
	if cpuMax > 0 {
		if cpuMax > trueCPUCount {
			cpuMax = trueCPUCount
		}
		return []int{cpuMax}
	}
	commonCPUs := []int{1, 2, 3, 4, 6, 8, 12, 16, 32, 48, 56, 64, 96, 128, 192, 256, 384, 512}
	var out []int
	for _, v := range commonCPUs {
		if v <= trueCPUCount {
			out = append(out, v)
		}
	}
	return out
}

func consumerCounts(ccs []config.Concurrency) []int {
	out := make([]int, len(ccs))
	for i, cc := range ccs {
		out[i] = cc.NumConsumers
	}
	return out
}

// gatherSystemInfo collects basic CPU and memory details.
func gatherSystemInfo() report.SystemInfo {
	var cpuModel string
	var cpuSpeed float64
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		cpuModel = infos[0].ModelName
		cpuSpeed = infos[0].Mhz
	}

	var totalMemory uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		totalMemory = vm.Total
	}

	return report.SystemInfo{
		NumCPU:        runtime.NumCPU(),
		TrueCPU:       runtime.NumCPU(),
		CPUModel:      cpuModel,
		CPUSpeedMHz:   cpuSpeed,
		GOARCH:        runtime.GOARCH,
		CacheLineSize: sling.CacheLineSize,
		TotalMemory:   totalMemory,
	}
}
