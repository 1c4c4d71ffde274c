package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "water_balance"

// Metrics holds the Prometheus counters, histograms, and gauges for one batch run.
// Runs are short-lived, so metrics live in their own registry and are flushed
// to a node_exporter textfile with WriteTextfile.
type Metrics struct {
	RowsRead            prometheus.Counter
	RowsDropped         prometheus.Counter
	RecordsAggregated   *prometheus.CounterVec // labels: kind={annual,seasonal}
	RecordsPublished    prometheus.Counter
	CatchmentsProcessed prometheus.Counter
	CatchmentsFailed    prometheus.Counter
	ArchiveExtractions  *prometheus.CounterVec // labels: outcome={extracted,skipped,missing,corrupt,error}
	RunDuration         prometheus.Histogram
	LastRunTimestamp    prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates all run metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Daily rows read from timeseries files.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Daily rows dropped for missing discharge volume.",
		}),
		RecordsAggregated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_aggregated_total",
			Help:      "Balance records produced by period kind.",
		}, []string{"kind"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Balance records written to Kafka.",
		}),
		CatchmentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catchments_processed_total",
			Help:      "Catchments processed successfully.",
		}),
		CatchmentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catchments_failed_total",
			Help:      "Catchments skipped because of an error.",
		}),
		ArchiveExtractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_extractions_total",
			Help:      "Dataset archive extraction attempts by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete command run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RowsRead,
		m.RowsDropped,
		m.RecordsAggregated,
		m.RecordsPublished,
		m.CatchmentsProcessed,
		m.CatchmentsFailed,
		m.ArchiveExtractions,
		m.RunDuration,
		m.LastRunTimestamp,
	)

	return m
}

// Registry exposes the underlying registry, e.g. for testutil.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format to path,
// creating parent directories as needed. The write is atomic.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
