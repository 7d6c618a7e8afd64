package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/clausewatch/pkg/compliance/engine"
	"mercator-hq/clausewatch/pkg/compliance/manager"
	"mercator-hq/clausewatch/pkg/config"
)

// The collector must plug into the engine and the rule manager.
var (
	_ engine.MetricsRecorder  = (*Collector)(nil)
	_ manager.MetricsRecorder = (*Collector)(nil)
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		Subsystem:       "engine",
		DurationBuckets: []float64{0.001, 0.01, 0.1, 1},
		MaxRuleLabels:   100,
	}
}

func TestCollector_NewCollectorDefaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	collector := NewCollector(cfg, nil)

	if collector.Registry() == nil {
		t.Fatal("expected a registry")
	}
	if cfg.Namespace != "clausewatch" || cfg.Subsystem != "engine" {
		t.Errorf("unexpected names %q/%q", cfg.Namespace, cfg.Subsystem)
	}
	if len(cfg.DurationBuckets) == 0 {
		t.Error("expected default buckets")
	}
}

func TestCollector_RecordEvaluation(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordEvaluation(engine.OutcomeSuccess, 4, 2*time.Millisecond)
	collector.RecordEvaluation(engine.OutcomeSuccess, 3, 5*time.Millisecond)
	collector.RecordEvaluation(engine.OutcomeCancelled, 0, time.Millisecond)

	cm := collector.complianceMetrics
	if got := testutil.ToFloat64(cm.evaluationsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("success evaluations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(cm.evaluationsTotal.WithLabelValues("cancelled")); got != 1 {
		t.Errorf("cancelled evaluations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(cm.clausesTotal); got != 7 {
		t.Errorf("clauses = %v, want 7", got)
	}
	if got := testutil.CollectAndCount(cm.evaluationDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestCollector_RecordIssue(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	for _, sev := range []string{"high", "high", "medium"} {
		collector.RecordIssue(sev)
	}

	issues := collector.complianceMetrics.issuesTotal
	if got := testutil.ToFloat64(issues.WithLabelValues("high")); got != 2 {
		t.Errorf("high issues = %v, want 2", got)
	}
	if got := testutil.ToFloat64(issues.WithLabelValues("medium")); got != 1 {
		t.Errorf("medium issues = %v, want 1", got)
	}
}

func TestCollector_RecordRuleOutcome(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRuleOutcome("rule-1", true)
	collector.RecordRuleOutcome("rule-1", false)
	collector.RecordRuleOutcome("rule-1", false)

	rm := collector.ruleMetrics
	if got := testutil.ToFloat64(rm.hitsTotal.WithLabelValues("rule-1")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.missesTotal.WithLabelValues("rule-1")); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
}

func TestCollector_RuleCardinalityLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRuleLabels = 2
	collector := NewCollector(cfg, prometheus.NewRegistry())

	for _, id := range []string{"rule-1", "rule-2", "rule-3", "rule-4", "rule-1"} {
		collector.RecordRuleOutcome(id, true)
	}

	hits := collector.ruleMetrics.hitsTotal
	if got := testutil.ToFloat64(hits.WithLabelValues("rule-1")); got != 2 {
		t.Errorf("rule-1 hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(hits.WithLabelValues(OtherLabel)); got != 2 {
		t.Errorf("other hits = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(hits); got != 3 {
		t.Errorf("hit series = %d, want 3", got)
	}
}

func TestCollector_RulesLoadedAndReload(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRulesLoaded(9, 1)
	collector.RecordReload(manager.ResultSuccess, 3*time.Millisecond)
	collector.RecordReload(manager.ResultFailure, time.Millisecond)
	collector.RecordRulesLoaded(8, 2)

	rm := collector.ruleMetrics
	if got := testutil.ToFloat64(rm.loaded.WithLabelValues("active")); got != 8 {
		t.Errorf("active = %v, want 8", got)
	}
	if got := testutil.ToFloat64(rm.loaded.WithLabelValues("inactive")); got != 2 {
		t.Errorf("inactive = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rm.reloadsTotal.WithLabelValues(manager.ResultFailure)); got != 1 {
		t.Errorf("failed reloads = %v, want 1", got)
	}
}

func TestCollector_RecordRun(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRun("success", 5, time.Second)

	rm := collector.runMetrics
	if got := testutil.ToFloat64(rm.runsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.lastContracts); got != 5 {
		t.Errorf("contracts = %v, want 5", got)
	}
	if got := testutil.ToFloat64(rm.lastRun); got <= 0 {
		t.Errorf("last run timestamp = %v, want > 0", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordEvaluation("success", 3, time.Millisecond)
	collector.RecordIssue("high")
	collector.RecordRuleOutcome("rule-1", true)
	collector.RecordRulesLoaded(1, 0)
	collector.RecordRun("success", 1, time.Millisecond)

	if got := testutil.ToFloat64(collector.complianceMetrics.clausesTotal); got != 0 {
		t.Errorf("clauses = %v, want 0", got)
	}
	if got := testutil.CollectAndCount(collector.ruleMetrics.hitsTotal); got != 0 {
		t.Errorf("hit series = %d, want 0", got)
	}

	path := filepath.Join(t.TempDir(), "clausewatch.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("disabled collector wrote a textfile")
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordEvaluation("success", 2, time.Millisecond)
	collector.RecordIssue("low")

	path := filepath.Join(t.TempDir(), "clausewatch.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`test_engine_evaluations_total{outcome="success"} 1`,
		`test_engine_clauses_evaluated_total 2`,
		`test_engine_issues_total{severity="low"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q", want)
		}
	}

	if err := collector.WriteTextfile(""); err != nil {
		t.Errorf("empty path should be a no-op, got %v", err)
	}
}

func TestCollector_ExpositionNames(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordIssue("high")

	expected := `
# HELP test_engine_issues_total Total number of clause issues raised
# TYPE test_engine_issues_total counter
test_engine_issues_total{severity="high"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "test_engine_issues_total"); err != nil {
		t.Error(err)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("expected first two label sets to be allowed")
	}
	if cl.Allow("c") {
		t.Error("expected third label set to be rejected")
	}
	if !cl.Allow("a") {
		t.Error("expected known label set to stay allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("count = %d, want 2", cl.Count())
	}
}
