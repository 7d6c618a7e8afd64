package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/clausewatch/pkg/config"
)

// ComplianceMetrics tracks contract evaluations.
//
// Metrics:
//   - clausewatch_engine_evaluations_total: evaluations by outcome
//   - clausewatch_engine_evaluation_duration_seconds: evaluation duration
//   - clausewatch_engine_clauses_evaluated_total: clauses evaluated
//   - clausewatch_engine_issues_total: issues raised by severity
type ComplianceMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	clausesTotal       prometheus.Counter
	issuesTotal        *prometheus.CounterVec
}

// NewComplianceMetrics creates and registers compliance metrics.
func NewComplianceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ComplianceMetrics {
	cm := &ComplianceMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of contract evaluations",
			},
			[]string{"outcome"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of contract evaluation in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		clausesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "clauses_evaluated_total",
				Help:      "Total number of clauses evaluated",
			},
		),

		issuesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "issues_total",
				Help:      "Total number of clause issues raised",
			},
			[]string{"severity"},
		),
	}

	registry.MustRegister(
		cm.evaluationsTotal,
		cm.evaluationDuration,
		cm.clausesTotal,
		cm.issuesTotal,
	)

	return cm
}

// RecordEvaluation records a contract evaluation.
func (cm *ComplianceMetrics) RecordEvaluation(outcome string, clauses int, duration time.Duration) {
	cm.evaluationsTotal.WithLabelValues(outcome).Inc()
	cm.evaluationDuration.Observe(duration.Seconds())
	if clauses > 0 {
		cm.clausesTotal.Add(float64(clauses))
	}
}

// RecordIssue records one issue.
func (cm *ComplianceMetrics) RecordIssue(severity string) {
	cm.issuesTotal.WithLabelValues(severity).Inc()
}
