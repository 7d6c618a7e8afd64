package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/clausewatch/pkg/cli"
	"mercator-hq/clausewatch/pkg/contract"
	"mercator-hq/clausewatch/pkg/contract/storage"
	"mercator-hq/clausewatch/pkg/report"
	"mercator-hq/clausewatch/pkg/schedule"
	"mercator-hq/clausewatch/pkg/telemetry/logging"
	"mercator-hq/clausewatch/pkg/telemetry/tracing"
)

var evaluateFlags struct {
	file         string
	all          bool
	format       string
	output       string
	failOn       string
	alternatives bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [contract-id...]",
	Short: "Evaluate contracts against the compliance rules",
	Long: `Evaluate contracts against the active compliance rules and print a report
for each one.

Contracts are taken from the configured contract store by ID, from every
contract in the store with --all, or from a contract document with --file.
Every clause is matched against every active rule; a clause that matches
gets one issue per matching rule, most severe first.

With --output, reports are written to one file per contract in the given
directory instead of standard output. With --fail-on, the command exits
with code 2 when any contract has an issue of that severity or above.

Examples:
  # Evaluate one stored contract
  clausewatch evaluate c-1001

  # Evaluate a contract document without storing it
  clausewatch evaluate --file techcorp.yaml

  # Evaluate everything as JSON with standard clause alternatives
  clausewatch evaluate --all --format json --alternatives

  # CI gate: fail on any high severity issue
  clausewatch evaluate --all --fail-on high --output reports/`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateFlags.file, "file", "f", "", "contract document (YAML or JSON) to evaluate")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.all, "all", false, "evaluate every stored contract")
	evaluateCmd.Flags().StringVar(&evaluateFlags.format, "format", "", "report format: text, json, csv (default from config)")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.output, "output", "o", "", "directory to write one report file per contract")
	evaluateCmd.Flags().StringVar(&evaluateFlags.failOn, "fail-on", "", "exit with code 2 on issues at or above this severity (high, medium, low)")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.alternatives, "alternatives", false, "suggest standard clauses from the clause library")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if evaluateFlags.file == "" && !evaluateFlags.all && len(args) == 0 {
		return fmt.Errorf("specify contract IDs, --file or --all")
	}
	if evaluateFlags.all && (len(args) > 0 || evaluateFlags.file != "") {
		return fmt.Errorf("--all cannot be combined with contract IDs or --file")
	}

	var threshold contract.Severity
	if evaluateFlags.failOn != "" {
		sev, err := contract.ParseSeverity(evaluateFlags.failOn)
		if err != nil {
			return cli.NewConfigError("--fail-on", err.Error())
		}
		threshold = sev
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	format := evaluateFlags.format
	if format == "" {
		format = a.cfg.Report.Format
	}
	exporter, err := report.NewExporter(format)
	if err != nil {
		return cli.NewConfigError("--format", err.Error())
	}

	ctx, span := a.startSpan(commandContext(cmd), "evaluate")
	defer span.End()
	ctx = logging.WithEvaluationID(ctx, uuid.New().String())

	if err := a.loadRules(ctx); err != nil {
		tracing.SetError(span, err)
		return err
	}
	if err := a.newEngine(); err != nil {
		return err
	}

	contracts, err := a.selectContracts(ctx, args)
	if err != nil {
		tracing.SetError(span, err)
		return err
	}

	var lib *contract.Library
	if evaluateFlags.alternatives {
		if err := a.loadLibrary(); err != nil {
			return err
		}
		lib = a.library
	}

	selected, err := storage.NewMemoryStore(contracts)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	runCfg := schedule.EvaluateAllConfig{
		OutputDir: evaluateFlags.output,
		Format:    format,
		Library:   lib,
	}
	var progress cli.ProgressReporter
	if len(contracts) > 1 {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr())
		runCfg.Progress = cli.ProgressFunc(progress)
	}

	summary, runErr := schedule.EvaluateAll(ctx, selected, a.engine, runCfg, a.logger)
	if progress != nil {
		progress.Finish()
	}

	result := resultSuccess
	if runErr != nil {
		result = resultFailure
	}
	a.metrics.RecordRun(result, summary.Evaluated, summary.Duration)
	tracing.SetRunAttributes(span, summary.RunID, summary.Contracts, summary.Failed, summary.Issues)
	tracing.SetStatus(span, runErr)

	out := cmd.OutOrStdout()
	if evaluateFlags.output != "" {
		for _, path := range summary.Files {
			fmt.Fprintln(out, path)
		}
	} else if err := exporter.Export(ctx, summary.Reports, out); err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	if runErr != nil {
		return cli.NewCommandError("evaluate", runErr)
	}

	if threshold != "" {
		failing := 0
		for _, r := range summary.Reports {
			if r.HasIssuesAtLeast(threshold) {
				failing++
			}
		}
		if failing > 0 {
			return &cli.IssuesFoundError{Threshold: string(threshold), Contracts: failing}
		}
	}
	return nil
}

// selectContracts returns the contracts named by the evaluate flags and
// arguments, in argument order. Repeated IDs are evaluated once.
func (a *app) selectContracts(ctx context.Context, ids []string) ([]*contract.Contract, error) {
	ids = dedupe(ids)

	if evaluateFlags.file != "" {
		cs, err := storage.LoadContracts(evaluateFlags.file)
		if err != nil {
			return nil, cli.NewCommandError("evaluate", err)
		}
		if len(cs) == 0 {
			return nil, cli.NewCommandError("evaluate", fmt.Errorf("no contracts in %s", evaluateFlags.file))
		}
		if len(ids) == 0 {
			return cs, nil
		}
		doc, err := storage.NewMemoryStore(cs)
		if err != nil {
			return nil, cli.NewCommandError("evaluate", err)
		}
		return getAll(ctx, doc, ids)
	}

	if err := a.openStore(); err != nil {
		return nil, err
	}
	if evaluateFlags.all {
		cs, err := a.store.List(ctx)
		if err != nil {
			return nil, cli.NewCommandError("evaluate", err)
		}
		return cs, nil
	}
	return getAll(ctx, a.store, ids)
}

func getAll(ctx context.Context, store contract.Store, ids []string) ([]*contract.Contract, error) {
	out := make([]*contract.Contract, 0, len(ids))
	for _, id := range ids {
		c, err := store.Get(ctx, id)
		if err != nil {
			return nil, cli.NewCommandError("evaluate", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
