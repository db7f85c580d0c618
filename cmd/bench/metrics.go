package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/i5heu/GoSling/internal/report"
)

// benchMetrics exposes finished runs to Prometheus so long sessions can be
// watched from a dashboard.
type benchMetrics struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	produced   *prometheus.CounterVec
	consumed   *prometheus.CounterVec
	throughput *prometheus.GaugeVec
}

func newBenchMetrics() *benchMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := []string{"implementation", "mode"}
	return &benchMetrics{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sling_bench_runs_total",
			Help: "Completed benchmark runs.",
		}, labels),
		produced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sling_bench_messages_produced_total",
			Help: "Messages pushed by the producer.",
		}, labels),
		consumed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sling_bench_messages_consumed_total",
			Help: "Messages popped, summed over consumers.",
		}, labels),
		throughput: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sling_bench_throughput_msgs_per_second",
			Help: "Consumed throughput of the latest run.",
		}, append(labels, "consumers", "gomaxprocs")),
	}
}

func (m *benchMetrics) observe(r report.BenchmarkResult, cpus int) {
	m.runs.WithLabelValues(r.Implementation, r.Mode).Inc()
	m.produced.WithLabelValues(r.Implementation, r.Mode).Add(float64(r.NumMessages))
	m.consumed.WithLabelValues(r.Implementation, r.Mode).Add(float64(r.NumMessagesConsumed))
	m.throughput.WithLabelValues(r.Implementation, r.Mode,
		strconv.Itoa(r.NumConsumers), strconv.Itoa(cpus)).Set(r.Throughput)
}

// serve starts the metrics endpoint in the background. The returned server is
// nil when addr is empty.
func (m *benchMetrics) serve(addr string, logger *zap.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
