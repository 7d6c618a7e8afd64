package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/clausewatch/pkg/cli"
	"mercator-hq/clausewatch/pkg/contract"
	"mercator-hq/clausewatch/pkg/report"
)

func resetEvaluateFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		evaluateFlags.file = ""
		evaluateFlags.all = false
		evaluateFlags.format = ""
		evaluateFlags.output = ""
		evaluateFlags.failOn = ""
		evaluateFlags.alternatives = false
	}
	reset()
	t.Cleanup(reset)
}

func TestEvaluateStoredContract(t *testing.T) {
	newTestEnv(t).apply(t)
	resetEvaluateFlags(t)
	evaluateFlags.format = "json"

	cmd, out := newTestCommand()
	if err := runEvaluate(cmd, []string{"c-1"}); err != nil {
		t.Fatalf("runEvaluate() error = %v", err)
	}

	var r report.Report
	if err := json.Unmarshal(out.Bytes(), &r); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out.String())
	}
	if r.Contract.ID != "c-1" {
		t.Errorf("contract = %q, want c-1", r.Contract.ID)
	}
	if r.Summary.Issues != 2 {
		t.Errorf("issues = %d, want 2", r.Summary.Issues)
	}
	if r.Summary.Compliance != contract.ComplianceMajor {
		t.Errorf("compliance = %q, want %q", r.Summary.Compliance, contract.ComplianceMajor)
	}
	if r.RuleSetVersion == "" {
		t.Error("report has no rule set version")
	}

	first := r.Contract.Clauses[0]
	if len(first.Issues) != 1 || first.Issues[0].RuleID != "liability" {
		t.Errorf("clause-1 issues = %+v, want the liability rule", first.Issues)
	}
}

func TestEvaluateAllWritesReports(t *testing.T) {
	env := newTestEnv(t)
	env.apply(t)
	resetEvaluateFlags(t)
	evaluateFlags.all = true
	evaluateFlags.output = env.reportDir

	cmd, out := newTestCommand()
	if err := runEvaluate(cmd, nil); err != nil {
		t.Fatalf("runEvaluate() error = %v", err)
	}

	for _, name := range []string{"c-1.txt", "c-2.txt"} {
		path := filepath.Join(env.reportDir, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("report %s not written: %v", name, err)
		}
		if !strings.Contains(out.String(), path) {
			t.Errorf("output does not list %s:\n%s", path, out.String())
		}
	}
}

func TestEvaluateFile(t *testing.T) {
	newTestEnv(t).apply(t)
	resetEvaluateFlags(t)
	evaluateFlags.file = fixture(t, "contracts.yaml")
	evaluateFlags.format = "json"

	cmd, out := newTestCommand()
	if err := runEvaluate(cmd, []string{"c-2"}); err != nil {
		t.Fatalf("runEvaluate() error = %v", err)
	}

	var r report.Report
	if err := json.Unmarshal(out.Bytes(), &r); err != nil {
		t.Fatalf("output is not a JSON report: %v", err)
	}
	// c-2 has content only; its clauses come from the section headings.
	if len(r.Contract.Clauses) != 2 {
		t.Fatalf("clauses = %d, want 2 extracted from content", len(r.Contract.Clauses))
	}
	// The only rule matching c-2 is inactive.
	if r.Summary.Issues != 0 || r.Summary.Compliance != contract.ComplianceCompliant {
		t.Errorf("summary = %+v, want compliant", r.Summary)
	}
}

func TestEvaluateFailOn(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		failOn   string
		wantCode int
	}{
		{name: "high issue fails", ids: []string{"c-1"}, failOn: "high", wantCode: cli.ExitIssues},
		{name: "low threshold includes high", ids: []string{"c-1", "c-2"}, failOn: "low", wantCode: cli.ExitIssues},
		{name: "clean contract passes", ids: []string{"c-2"}, failOn: "low", wantCode: cli.ExitOK},
		{name: "no threshold", ids: []string{"c-1"}, failOn: "", wantCode: cli.ExitOK},
		{name: "invalid severity", ids: []string{"c-1"}, failOn: "critical", wantCode: cli.ExitConfigFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newTestEnv(t).apply(t)
			resetEvaluateFlags(t)
			evaluateFlags.failOn = tt.failOn

			cmd, _ := newTestCommand()
			err := runEvaluate(cmd, tt.ids)
			if got := cli.ExitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d (err = %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestEvaluateAlternatives(t *testing.T) {
	newTestEnv(t).apply(t)
	resetEvaluateFlags(t)
	evaluateFlags.format = "json"
	evaluateFlags.alternatives = true

	cmd, out := newTestCommand()
	if err := runEvaluate(cmd, []string{"c-1"}); err != nil {
		t.Fatalf("runEvaluate() error = %v", err)
	}

	var r report.Report
	if err := json.Unmarshal(out.Bytes(), &r); err != nil {
		t.Fatalf("output is not a JSON report: %v", err)
	}
	got := map[string]bool{}
	for _, alt := range r.Alternatives {
		got[alt.StandardClauseID] = true
	}
	if !got["std-1"] || !got["std-2"] {
		t.Errorf("alternatives = %+v, want std-1 and std-2", r.Alternatives)
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
		args  []string
		check func(t *testing.T, err error)
	}{
		{
			name: "nothing selected",
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Fatal("expected error")
				}
			},
		},
		{
			name:  "all with ids",
			setup: func() { evaluateFlags.all = true },
			args:  []string{"c-1"},
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Fatal("expected error")
				}
			},
		},
		{
			name: "unknown contract",
			args: []string{"missing"},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, contract.ErrNotFound) {
					t.Errorf("err = %v, want ErrNotFound", err)
				}
			},
		},
		{
			name:  "unknown format",
			setup: func() { evaluateFlags.format = "xml" },
			args:  []string{"c-1"},
			check: func(t *testing.T, err error) {
				if cli.ExitCode(err) != cli.ExitConfigFail {
					t.Errorf("err = %v, want a config error", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newTestEnv(t).apply(t)
			resetEvaluateFlags(t)
			if tt.setup != nil {
				tt.setup()
			}
			cmd, _ := newTestCommand()
			tt.check(t, runEvaluate(cmd, tt.args))
		})
	}
}

func TestEvaluateInvalidRulesFails(t *testing.T) {
	env := newTestEnv(t)
	env.rulesPath = fixture(t, "invalid-rules.yaml")
	env.apply(t)
	resetEvaluateFlags(t)

	cmd, out := newTestCommand()
	err := runEvaluate(cmd, []string{"c-1"})
	if err == nil {
		t.Fatal("runEvaluate() with invalid rules should fail")
	}
	if out.Len() != 0 {
		t.Errorf("no report should be written, got:\n%s", out.String())
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("dedupe() = %v, want %v", got, want)
	}
}
