package tilematch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector receives counters from a run.
// Implement this interface to integrate with a monitoring system.
type MetricsCollector interface {
	// RecordSource is called after pass 1 with the source row count and
	// the number of rows left without a cell id.
	RecordSource(rows, failures int)

	// RecordReference is called after pass 2.
	RecordReference(scanned, matched int)

	// RecordExport is called after the workbook is written.
	RecordExport(rows int)

	// RecordRun is called once per run. err is nil if successful.
	RecordRun(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSource(int, int)          {}
func (NoopMetricsCollector) RecordReference(int, int)       {}
func (NoopMetricsCollector) RecordExport(int)               {}
func (NoopMetricsCollector) RecordRun(time.Duration, error) {}

// PrometheusCollector implements MetricsCollector on a private registry.
type PrometheusCollector struct {
	registry *prometheus.Registry

	sourceRows    prometheus.Counter
	parseFailures prometheus.Counter
	refScanned    prometheus.Counter
	refMatched    prometheus.Counter
	mergedRows    prometheus.Counter
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

// NewPrometheusCollector creates a collector and registers its metrics.
func NewPrometheusCollector() *PrometheusCollector {
	p := &PrometheusCollector{
		registry: prometheus.NewRegistry(),
		sourceRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tilematch_source_rows_total",
			Help: "Source rows read",
		}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tilematch_parse_failures_total",
			Help: "Source rows without a cell id",
		}),
		refScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tilematch_reference_rows_scanned_total",
			Help: "Reference rows examined",
		}),
		refMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tilematch_reference_rows_matched_total",
			Help: "Reference rows kept by the cell filter",
		}),
		mergedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tilematch_merged_rows_total",
			Help: "Rows written to the exported workbook",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tilematch_runs_total",
			Help: "Completed runs by status",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tilematch_run_duration_seconds",
			Help:    "Wall time of a run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
	}

	p.registry.MustRegister(
		p.sourceRows,
		p.parseFailures,
		p.refScanned,
		p.refMatched,
		p.mergedRows,
		p.runs,
		p.runDuration,
	)
	return p
}

// Registry returns the registry holding the collector's metrics.
func (p *PrometheusCollector) Registry() *prometheus.Registry {
	return p.registry
}

// WriteTextfile writes the metrics in the text exposition format, for the
// node exporter textfile collector.
func (p *PrometheusCollector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}

// RecordSource implements MetricsCollector.
func (p *PrometheusCollector) RecordSource(rows, failures int) {
	p.sourceRows.Add(float64(rows))
	p.parseFailures.Add(float64(failures))
}

// RecordReference implements MetricsCollector.
func (p *PrometheusCollector) RecordReference(scanned, matched int) {
	p.refScanned.Add(float64(scanned))
	p.refMatched.Add(float64(matched))
}

// RecordExport implements MetricsCollector.
func (p *PrometheusCollector) RecordExport(rows int) {
	p.mergedRows.Add(float64(rows))
}

// RecordRun implements MetricsCollector.
func (p *PrometheusCollector) RecordRun(d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.runs.WithLabelValues(status).Inc()
	p.runDuration.Observe(d.Seconds())
}
