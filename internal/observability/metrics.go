package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const metricsJob = "covid_data_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for one
// extract run. A batch job has no scrape target, so completed runs push
// these to a Pushgateway when one is configured.
type Metrics struct {
	RowsFetched       *prometheus.CounterVec // label: feed
	RowsWritten       *prometheus.CounterVec // label: extract
	CountyRowsDropped prometheus.Counter
	RunDuration       prometheus.Histogram
	LastSuccess       prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates all run metrics on a dedicated registry, keeping
// the Pushgateway payload free of default Go runtime collectors.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.registry.MustRegister(
		m.RowsFetched,
		m.RowsWritten,
		m.CountyRowsDropped,
		m.RunDuration,
		m.LastSuccess,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so
// parallel tests cannot collide on a shared registry.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "rows_fetched_total",
			Help:      "Rows fetched per upstream feed.",
		}, []string{"feed"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "rows_written_total",
			Help:      "Rows written per extract variant.",
		}, []string{"extract"}),
		CountyRowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_etl",
			Name:      "county_rows_dropped_total",
			Help:      "County rows dropped for referencing an unknown state name.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_etl",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		registry: prometheus.NewRegistry(),
	}
}

// Push sends the run's metrics to a Prometheus Pushgateway. Called once
// after a successful run; a push failure is the caller's to log, not a
// reason to fail the job.
func (m *Metrics) Push(gatewayURL string) error {
	if err := push.New(gatewayURL, metricsJob).Gatherer(m.registry).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
