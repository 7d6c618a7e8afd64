package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/clausewatch/pkg/cli"
	"mercator-hq/clausewatch/pkg/contract"
)

func resetContractsFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		contractsFlags.format = "text"
		contractsFlags.limit = contract.DefaultRecentLimit
	}
	reset()
	t.Cleanup(reset)
}

func decodeContracts(t *testing.T, data []byte) []string {
	t.Helper()
	var cs []contract.Contract
	if err := json.Unmarshal(data, &cs); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, data)
	}
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestListContracts(t *testing.T) {
	newTestEnv(t).apply(t)
	resetContractsFlags(t)
	contractsFlags.format = "json"

	cmd, out := newTestCommand()
	if err := listContracts(cmd, nil); err != nil {
		t.Fatalf("listContracts() error = %v", err)
	}
	if got := strings.Join(decodeContracts(t, out.Bytes()), ","); got != "c-1,c-2" {
		t.Errorf("contracts = %s, want c-1,c-2", got)
	}
}

func TestRecentContracts(t *testing.T) {
	newTestEnv(t).apply(t)
	resetContractsFlags(t)
	contractsFlags.format = "json"
	contractsFlags.limit = 1

	cmd, out := newTestCommand()
	if err := recentContracts(cmd, nil); err != nil {
		t.Fatalf("recentContracts() error = %v", err)
	}
	if got := strings.Join(decodeContracts(t, out.Bytes()), ","); got != "c-1" {
		t.Errorf("recent = %s, want c-1", got)
	}
}

func TestShowContract(t *testing.T) {
	newTestEnv(t).apply(t)
	resetContractsFlags(t)

	cmd, out := newTestCommand()
	if err := showContract(cmd, []string{"c-1"}); err != nil {
		t.Fatalf("showContract() error = %v", err)
	}
	if !strings.Contains(out.String(), "Service Agreement - TechCorp") {
		t.Errorf("output missing contract name:\n%s", out.String())
	}
}

func TestListClauses(t *testing.T) {
	newTestEnv(t).apply(t)
	resetContractsFlags(t)
	contractsFlags.format = "csv"

	cmd, out := newTestCommand()
	if err := listClauses(cmd, []string{"c-1"}); err != nil {
		t.Fatalf("listClauses() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want header and 2 clauses:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[1], "clause-1,") {
		t.Errorf("first clause row = %q", lines[1])
	}
}

func TestImportContractsSQLite(t *testing.T) {
	env := newTestEnv(t)
	env.backend = "sqlite"
	env.contractsPath = filepath.Join(t.TempDir(), "contracts.db")
	env.apply(t)
	resetContractsFlags(t)

	cmd, out := newTestCommand()
	if err := importContracts(cmd, []string{fixture(t, "contracts.yaml")}); err != nil {
		t.Fatalf("importContracts() error = %v", err)
	}
	if !strings.Contains(out.String(), "Imported 2 contract(s)") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	contractsFlags.format = "json"
	cmd, out = newTestCommand()
	if err := listContracts(cmd, nil); err != nil {
		t.Fatalf("listContracts() error = %v", err)
	}
	if got := strings.Join(decodeContracts(t, out.Bytes()), ","); got != "c-1,c-2" {
		t.Errorf("stored contracts = %s, want c-1,c-2", got)
	}
}

func TestImportContractsReadOnlyBackend(t *testing.T) {
	newTestEnv(t).apply(t)
	resetContractsFlags(t)

	cmd, _ := newTestCommand()
	err := importContracts(cmd, []string{fixture(t, "contracts.yaml")})
	if cli.ExitCode(err) != cli.ExitConfigFail {
		t.Errorf("importContracts() into the file backend = %v, want a config error", err)
	}
}
