package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/clausewatch/pkg/config"
)

// OtherLabel replaces label values past the cardinality limit.
const OtherLabel = "other"

// Collector owns every clausewatch metric. It satisfies the metrics
// recorder interfaces of the engine and the rule manager.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	complianceMetrics *ComplianceMetrics
	ruleMetrics       *RuleMetrics
	runMetrics        *RunMetrics

	// Cardinality tracking for rule_id labels
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a metrics collector registering into registry. A nil
// registry gets a fresh one, keeping the process-wide default registry
// untouched.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "clausewatch",
//		Subsystem: "engine",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}
	if cfg.MaxRuleLabels <= 0 {
		cfg.MaxRuleLabels = config.DefaultMetricsRuleLabels
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		complianceMetrics:  NewComplianceMetrics(cfg, registry),
		ruleMetrics:        NewRuleMetrics(cfg, registry),
		runMetrics:         NewRunMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(cfg.MaxRuleLabels),
	}
}

// RecordEvaluation records one contract evaluation.
//
// Parameters:
//   - outcome: "success" or "cancelled"
//   - clauses: number of clauses evaluated
//   - duration: evaluation duration
func (c *Collector) RecordEvaluation(outcome string, clauses int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.complianceMetrics.RecordEvaluation(outcome, clauses, duration)
}

// RecordRuleOutcome records whether one active rule matched one clause.
func (c *Collector) RecordRuleOutcome(ruleID string, matched bool) {
	if !c.config.Enabled {
		return
	}

	if !c.cardinalityLimiter.Allow(fmt.Sprintf("rule:%s", ruleID)) {
		ruleID = OtherLabel
	}
	c.ruleMetrics.RecordOutcome(ruleID, matched)
}

// RecordIssue records one issue raised on a clause.
func (c *Collector) RecordIssue(severity string) {
	if !c.config.Enabled {
		return
	}

	c.complianceMetrics.RecordIssue(severity)
}

// RecordRulesLoaded sets the active and inactive rule gauges.
func (c *Collector) RecordRulesLoaded(active, inactive int) {
	if !c.config.Enabled {
		return
	}

	c.ruleMetrics.SetLoaded(active, inactive)
}

// RecordReload records a rule load or reload attempt.
//
// Parameters:
//   - result: "success" or "failure"
//   - duration: time spent loading and compiling the rule pack
func (c *Collector) RecordReload(result string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.ruleMetrics.RecordReload(result, duration)
}

// RecordRun records a completed evaluate-all run.
//
// Parameters:
//   - result: "success" or "failure"
//   - contracts: number of contracts evaluated
//   - duration: run duration
func (c *Collector) RecordRun(result string, contracts int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.runMetrics.RecordRun(result, contracts, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes every registered metric to path in Prometheus text
// format. The file is replaced atomically. An empty path or a disabled
// collector writes nothing.
func (c *Collector) WriteTextfile(path string) error {
	if !c.config.Enabled || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %q: %w", path, err)
	}
	return nil
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether a label set may be used: it was seen before, or
// the limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
