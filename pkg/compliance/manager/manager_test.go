package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mercator-hq/clausewatch/pkg/compliance/rules"
	"mercator-hq/clausewatch/pkg/compliance/source"
)

const packV1 = `name: uk-commercial
version: "1"
rules:
  - id: rule-1
    name: Limitation of Liability Reasonableness
    severity: High
    pattern: '\b(any|all)\s+(liability|damages)\b'
  - id: rule-9
    name: Proper Governing Law Clause
    severity: Medium
    pattern: '\bgoverning\s+law\b'
`

const packV2 = `name: uk-commercial
version: "2"
rules:
  - id: rule-1
    name: Limitation of Liability Reasonableness
    severity: High
    pattern: '\b(any|all)\s+(liability|damages)\b'
  - id: rule-9
    name: Proper Governing Law Clause
    severity: Medium
    pattern: '\bgoverning\s+law\b'
  - id: rule-7
    name: Unclear Definition of Confidential Information
    severity: Low
    pattern: '\bconfidentiality\b'
`

const packBroken = `name: uk-commercial
rules:
  - id: rule-1
    severity: High
    pattern: '(unclosed'
`

func testRules() []rules.Rule {
	return []rules.Rule{
		{ID: "rule-1", Severity: "High", Active: true, Pattern: `\ball\s+liability\b`},
		{ID: "rule-2", Severity: "High", Active: false, Pattern: `\bpersonal\s+data\b`},
	}
}

type recordingMetrics struct {
	mu       sync.Mutex
	results  map[string]int
	active   int
	inactive int
}

func (m *recordingMetrics) RecordRulesLoaded(active, inactive int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active, m.inactive = active, inactive
}

func (m *recordingMetrics) RecordReload(result string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = map[string]int{}
	}
	m.results[result]++
}

func TestNewManager(t *testing.T) {
	if _, err := NewManager(nil, nil, nil); err == nil {
		t.Error("NewManager(nil source) error = nil")
	}

	mgr, err := NewManager(source.NewMemorySource("test", testRules()), nil, nil)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if mgr.Store().Snapshot().Len() != 0 {
		t.Error("store should be empty before Load")
	}
	if !mgr.Status().LoadedAt.IsZero() || mgr.Pack() != nil {
		t.Error("status should be empty before Load")
	}
}

func TestManager_Load(t *testing.T) {
	metrics := &recordingMetrics{}
	mgr, _ := NewManager(source.NewMemorySource("test", testRules()), nil, nil, WithMetrics(metrics))

	if err := mgr.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	status := mgr.Status()
	if status.RuleCount != 2 || status.ActiveCount != 1 {
		t.Errorf("RuleCount = %d, ActiveCount = %d", status.RuleCount, status.ActiveCount)
	}
	if status.PackName != "test" || status.Version == "" || status.LoadedAt.IsZero() {
		t.Errorf("status = %+v", status)
	}
	if metrics.results[ResultSuccess] != 1 || metrics.active != 1 || metrics.inactive != 1 {
		t.Errorf("metrics = %+v", metrics)
	}
	if mgr.Pack().Name != "test" {
		t.Errorf("Pack().Name = %q", mgr.Pack().Name)
	}
}

func TestManager_LoadFailure(t *testing.T) {
	bad := []rules.Rule{{ID: "x", Severity: "High", Active: true, Pattern: "("}}
	mgr, _ := NewManager(source.NewMemorySource("bad", bad), nil, nil)

	err := mgr.Load(context.Background())
	var cfgErr *rules.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Load() error = %v, want *rules.ConfigurationError", err)
	}
	if mgr.Store().Snapshot().Len() != 0 {
		t.Error("failed Load() installed rules")
	}
	if mgr.Status().LastError == nil {
		t.Error("LastError not recorded")
	}
}

func TestManager_ReloadKeepsPreviousRulesOnFailure(t *testing.T) {
	src := source.NewMemorySource("test", testRules())
	metrics := &recordingMetrics{}
	mgr, _ := NewManager(src, nil, nil, WithMetrics(metrics))
	if err := mgr.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	before := mgr.Store().Snapshot()

	src.Set(append(testRules(), rules.Rule{ID: "rule-3", Severity: "urgent", Active: true, Pattern: "x"}))
	if err := mgr.Reload(context.Background()); err == nil {
		t.Fatal("Reload() error = nil for an invalid pack")
	}

	if mgr.Store().Snapshot() != before {
		t.Error("failed reload replaced the rule set")
	}
	status := mgr.Status()
	if status.LastError == nil || status.Failures != 1 {
		t.Errorf("status = %+v", status)
	}
	if metrics.results[ResultFailure] != 1 {
		t.Errorf("failure reloads = %d, want 1", metrics.results[ResultFailure])
	}

	src.Set(append(testRules(), rules.Rule{ID: "rule-3", Severity: "Low", Active: true, Pattern: "x"}))
	if err := mgr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if mgr.Store().Snapshot().Len() != 3 || mgr.Status().LastError != nil {
		t.Errorf("after good reload: Len = %d, LastError = %v", mgr.Store().Snapshot().Len(), mgr.Status().LastError)
	}
	if before.Len() != 2 {
		t.Error("earlier snapshot changed")
	}
}

func TestManager_Validate(t *testing.T) {
	src := source.NewMemorySource("test", testRules())
	mgr, _ := NewManager(src, nil, nil)

	set, err := mgr.Validate(context.Background())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if set.Len() != 2 {
		t.Errorf("Len() = %d, want 2", set.Len())
	}
	if mgr.Store().Snapshot().Len() != 0 {
		t.Error("Validate() installed rules")
	}
}

func TestManager_WatchWithoutPath(t *testing.T) {
	mgr, _ := NewManager(source.NewMemorySource("test", testRules()), nil, nil)
	if err := mgr.Watch(context.Background()); !errors.Is(err, ErrNoWatchPath) {
		t.Errorf("Watch() error = %v, want ErrNoWatchPath", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestManager_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte(packV1), 0644); err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions()
	opts.WatchPath = dir
	opts.Debounce = 20 * time.Millisecond

	mgr, _ := NewManager(source.NewFileSource(dir, nil, nil), opts, nil)
	if err := mgr.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Watch(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte(packBroken), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return mgr.Status().Failures > 0 })
	if mgr.Store().Snapshot().Len() != 2 {
		t.Error("broken pack replaced the rules")
	}

	if err := os.WriteFile(path, []byte(packV2), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return mgr.Store().Snapshot().Len() == 3 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}
