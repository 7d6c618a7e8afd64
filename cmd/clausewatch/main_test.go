package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// testEnv describes the configuration file a test runs against. Paths
// default to the fixtures in testdata.
type testEnv struct {
	rulesPath     string
	backend       string
	contractsPath string
	libraryPath   string
	reportDir     string
	extra         string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		rulesPath:     fixture(t, "rules.yaml"),
		backend:       "file",
		contractsPath: fixture(t, "contracts.yaml"),
		libraryPath:   fixture(t, "library.yaml"),
		reportDir:     filepath.Join(t.TempDir(), "reports"),
	}
}

// apply writes the configuration and points --config at it for the rest
// of the test.
func (e *testEnv) apply(t *testing.T) {
	t.Helper()

	body := fmt.Sprintf(`rules:
  path: %q
contracts:
  backend: %q
  path: %q
library:
  path: %q
report:
  output_dir: %q
telemetry:
  logging:
    level: error
%s`, e.rulesPath, e.backend, e.contractsPath, e.libraryPath, e.reportDir, e.extra)

	path := filepath.Join(t.TempDir(), "clausewatch.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfgFile, verbose, logLevel, logFormat = path, false, "", ""
	t.Cleanup(func() {
		cfgFile, verbose, logLevel, logFormat = "", false, "", ""
	})
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("fixture %s: %v", name, err)
	}
	return path
}

// newTestCommand returns a command whose output is captured. Logs are
// discarded.
func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetContext(context.Background())
	return cmd, &out
}
