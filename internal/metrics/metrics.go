// Package metrics keeps per-process run counters and writes them in the
// Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run results used as label values
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// Metrics holds Prometheus counters and histograms for pipeline runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	runsTotal     *prometheus.CounterVec
	fetchesTotal  *prometheus.CounterVec
	mergeFailures prometheus.Counter
	runDuration   prometheus.Histogram
}

// New creates and registers the pipeline metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ytmerger_runs_total",
		Help: "Total number of pipeline runs by result",
	}, []string{"result"})
	fetchesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ytmerger_fetches_total",
		Help: "Total number of stream fetches by stream kind and result",
	}, []string{"stream", "result"})
	mergeFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytmerger_merge_failures_total",
		Help: "Total number of failed ffmpeg merges",
	})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ytmerger_run_duration_seconds",
		Help:    "Wall time of pipeline runs that reached a download",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	registry.MustRegister(runsTotal, fetchesTotal, mergeFailures, runDuration)

	return &Metrics{
		registry:      registry,
		runsTotal:     runsTotal,
		fetchesTotal:  fetchesTotal,
		mergeFailures: mergeFailures,
		runDuration:   runDuration,
	}
}

// ObserveRun records a finished run
func (m *Metrics) ObserveRun(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(result).Inc()
	if d > 0 {
		m.runDuration.Observe(d.Seconds())
	}
}

// ObserveFetch records one fetch of stream ("video" or "audio")
func (m *Metrics) ObserveFetch(stream string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailed
	}
	m.fetchesTotal.WithLabelValues(stream, result).Inc()
}

// IncMergeFailures increments the merge failure counter.
func (m *Metrics) IncMergeFailures() {
	if m == nil {
		return
	}
	m.mergeFailures.Inc()
}

// Registry exposes the private registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile atomically writes the current values to path.
// An empty path is a no-op.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
