package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/clausewatch/pkg/config"
)

// RuleMetrics tracks rule matching and rule pack loading.
//
// Metrics:
//   - clausewatch_engine_rule_hits_total: times a rule matched a clause
//   - clausewatch_engine_rule_misses_total: times a rule did not match
//   - clausewatch_engine_rules_loaded: loaded rules by state
//   - clausewatch_engine_rule_reloads_total: load attempts by result
//   - clausewatch_engine_rule_reload_duration_seconds: load duration
type RuleMetrics struct {
	hitsTotal      *prometheus.CounterVec
	missesTotal    *prometheus.CounterVec
	loaded         *prometheus.GaugeVec
	reloadsTotal   *prometheus.CounterVec
	reloadDuration prometheus.Histogram
}

// NewRuleMetrics creates and registers rule metrics.
func NewRuleMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RuleMetrics {
	rm := &RuleMetrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_hits_total",
				Help:      "Total number of clauses a rule matched",
			},
			[]string{"rule_id"},
		),

		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_misses_total",
				Help:      "Total number of clauses a rule did not match",
			},
			[]string{"rule_id"},
		),

		loaded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_loaded",
				Help:      "Number of loaded rules by state",
			},
			[]string{"state"},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_reloads_total",
				Help:      "Total number of rule pack load attempts",
			},
			[]string{"result"},
		),

		reloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_reload_duration_seconds",
				Help:      "Duration of rule pack loading in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),
	}

	registry.MustRegister(
		rm.hitsTotal,
		rm.missesTotal,
		rm.loaded,
		rm.reloadsTotal,
		rm.reloadDuration,
	)

	return rm
}

// RecordOutcome records a rule hit or miss.
func (rm *RuleMetrics) RecordOutcome(ruleID string, matched bool) {
	if matched {
		rm.hitsTotal.WithLabelValues(ruleID).Inc()
		return
	}
	rm.missesTotal.WithLabelValues(ruleID).Inc()
}

// SetLoaded sets the loaded rule gauges.
func (rm *RuleMetrics) SetLoaded(active, inactive int) {
	rm.loaded.WithLabelValues("active").Set(float64(active))
	rm.loaded.WithLabelValues("inactive").Set(float64(inactive))
}

// RecordReload records a load attempt.
func (rm *RuleMetrics) RecordReload(result string, duration time.Duration) {
	rm.reloadsTotal.WithLabelValues(result).Inc()
	rm.reloadDuration.Observe(duration.Seconds())
}
