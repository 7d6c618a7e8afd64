package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/clausewatch/pkg/cli"
	"mercator-hq/clausewatch/pkg/compliance/manager"
	"mercator-hq/clausewatch/pkg/contract"
	"mercator-hq/clausewatch/pkg/contract/storage"
	"mercator-hq/clausewatch/pkg/telemetry/health"
)

var checkFlags struct {
	format  string
	timeout time.Duration
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that configured components are usable",
	Long: `Check the configuration and every component it points at: the rule
source compiles, the contract store opens and lists, the clause library
loads and the report directory is writable. Nothing is evaluated.

The command exits non-zero when any check fails, so it can gate a
deployment or a CI job.

Examples:
  clausewatch check
  clausewatch check --config prod.yaml --format json`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json, csv")
	checkCmd.Flags().DurationVar(&checkFlags.timeout, "timeout", 10*time.Second, "timeout for each check")
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	checker := health.New(checkFlags.timeout)
	checker.RegisterCheck("rules", a.checkRules)
	checker.RegisterCheck("contracts", a.checkContracts)
	checker.RegisterCheck("reports", a.checkReportDir)
	if a.cfg.Library.Path != "" {
		checker.RegisterCheck("library", func(ctx context.Context) error {
			_, err := contract.LoadLibrary(a.cfg.Library.Path)
			return err
		})
	}

	status := checker.Run(commandContext(cmd))

	table := &cli.Table{Header: []string{"check", "status", "duration", "message"}, Data: status}
	for _, r := range status.Checks {
		table.Append(r.Name, r.Status, r.Duration.Round(time.Millisecond).String(), r.Message)
	}
	if err := writeOutput(cmd, checkFlags.format, table); err != nil {
		return err
	}

	if !status.Ready() {
		failed := 0
		for _, r := range status.Checks {
			if r.Status != health.StatusOK {
				failed++
			}
		}
		return cli.NewCommandError("check", fmt.Errorf("%d of %d checks failed", failed, len(status.Checks)))
	}
	return nil
}

// checkRules loads and compiles the rule pack without activating it.
func (a *app) checkRules(ctx context.Context) error {
	src, err := newRuleSource(a.cfg, a.logger)
	if err != nil {
		return err
	}
	mgr, err := manager.NewManager(src, &manager.Options{Compile: compileOptions(a.cfg)}, a.logger)
	if err != nil {
		return err
	}
	set, err := mgr.Validate(ctx)
	if err != nil {
		return err
	}
	if set.ActiveLen() == 0 {
		return fmt.Errorf("rule pack has no active rules")
	}
	return nil
}

// checkContracts opens the contract store and lists it.
func (a *app) checkContracts(ctx context.Context) error {
	store, err := storage.New(storageConfig(a.cfg), a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.List(ctx)
	return err
}

// checkReportDir creates the report directory and a scratch file in it.
func (a *app) checkReportDir(ctx context.Context) error {
	dir := a.cfg.Report.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".clausewatch-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}
