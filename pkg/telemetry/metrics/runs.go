package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/clausewatch/pkg/config"
)

// RunMetrics tracks evaluate-all runs, scheduled or manual.
//
// Metrics:
//   - clausewatch_engine_runs_total: runs by result
//   - clausewatch_engine_run_contracts: contracts evaluated by the last run
//   - clausewatch_engine_last_run_timestamp_seconds: completion time of the last run
type RunMetrics struct {
	runsTotal     *prometheus.CounterVec
	lastContracts prometheus.Gauge
	lastRun       prometheus.Gauge
	runDuration   prometheus.Histogram
}

// NewRunMetrics creates and registers run metrics.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of evaluate-all runs",
			},
			[]string{"result"},
		),

		lastContracts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_contracts",
				Help:      "Number of contracts evaluated by the last run",
			},
		),

		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run completed",
			},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Duration of evaluate-all runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8), // 10ms to ~2.7m
			},
		),
	}

	registry.MustRegister(
		rm.runsTotal,
		rm.lastContracts,
		rm.lastRun,
		rm.runDuration,
	)

	return rm
}

// RecordRun records a completed run.
func (rm *RunMetrics) RecordRun(result string, contracts int, duration time.Duration) {
	rm.runsTotal.WithLabelValues(result).Inc()
	rm.lastContracts.Set(float64(contracts))
	rm.lastRun.SetToCurrentTime()
	rm.runDuration.Observe(duration.Seconds())
}
