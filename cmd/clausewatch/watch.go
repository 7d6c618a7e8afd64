package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/clausewatch/pkg/cli"
	"mercator-hq/clausewatch/pkg/schedule"
	"mercator-hq/clausewatch/pkg/telemetry/tracing"
)

var watchFlags struct {
	cron   string
	runNow bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload rules on change and re-evaluate contracts on a schedule",
	Long: `Run until interrupted, keeping the rules current and the reports fresh.

With rules.watch set, rule pack files are watched and reloaded after a
change. A reload that fails keeps the previous rules. SIGHUP forces a
reload from any source, including git.

With schedule.cron (or --cron) set, every stored contract is re-evaluated
on that schedule and a report written to report.output_dir. A git rule
source is reloaded before each scheduled run.

Examples:
  # Hot reload and nightly re-evaluation from the config file
  clausewatch watch

  # Re-evaluate every six hours, starting with a run right away
  clausewatch watch --cron "0 */6 * * *" --run-now`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.cron, "cron", "", "override schedule.cron")
	watchCmd.Flags().BoolVar(&watchFlags.runNow, "run-now", false, "run a re-evaluation immediately")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	if watchFlags.cron != "" {
		a.cfg.Schedule.Cron = watchFlags.cron
	}
	watchFiles := a.cfg.Rules.Watch && a.cfg.Rules.Source != "git"
	if !watchFiles && a.cfg.Schedule.Cron == "" && !watchFlags.runNow {
		return cli.NewConfigError("schedule.cron", "nothing to do: enable rules.watch or set a schedule")
	}

	ctx := commandContext(cmd)
	if err := a.loadRules(ctx); err != nil {
		return err
	}
	if err := a.newEngine(); err != nil {
		return err
	}
	if err := a.openStore(); err != nil {
		return err
	}
	if a.cfg.Library.Path != "" {
		if err := a.loadLibrary(); err != nil {
			return err
		}
	}

	scheduler := schedule.NewScheduler(a.cfg.Schedule.Cron, "re-evaluate", a.evaluateAllJob(), a.logger)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewConfigError("schedule.cron", err.Error())
	}
	defer scheduler.Stop()

	out := cmd.OutOrStdout()
	if watchFlags.runNow {
		if err := scheduler.RunNow(ctx); err != nil {
			fmt.Fprintf(out, "✗ Initial run failed: %v\n", err)
		}
	}

	errCh := make(chan error, 1)
	if watchFiles {
		go func() { errCh <- a.rules.Watch(ctx) }()
		fmt.Fprintf(out, "✓ Watching rules in %s\n", a.cfg.Rules.Path)
	}
	if next := scheduler.NextRun(); next != nil {
		fmt.Fprintf(out, "✓ Next re-evaluation at %s\n", next.Format("2006-01-02 15:04:05 MST"))
	}

	reload, stopReload := cli.ReloadSignal()
	defer stopReload()

	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\n✓ Stopped")
			return nil

		case err := <-errCh:
			if err != nil {
				return cli.NewCommandError("watch", err)
			}
			errCh = nil

		case <-reload:
			a.logger.Info("reload requested by signal")
			if err := a.rules.Reload(ctx); err != nil {
				a.logger.Error("rule reload failed, keeping previous rules", "error", err)
			}
		}
	}
}

// evaluateAllJob re-evaluates every stored contract, recording the run in
// metrics and traces. The metrics textfile is rewritten after each run.
func (a *app) evaluateAllJob() schedule.Job {
	cfg := schedule.EvaluateAllConfig{
		OutputDir: a.cfg.Report.OutputDir,
		Format:    a.cfg.Report.Format,
		Library:   a.library,
	}

	return func(ctx context.Context) error {
		ctx, span := a.tracer.Start(ctx, "schedule.run")
		defer span.End()

		if a.cfg.Rules.Source == "git" {
			if err := a.rules.Reload(ctx); err != nil {
				a.logger.Warn("rule reload failed, evaluating with previous rules", "error", err)
			}
		}
		status := a.rules.Status()
		tracing.NewAttributeBuilder().WithRules(status.Version, status.Origin).Apply(span)

		summary, err := schedule.EvaluateAll(ctx, a.store, a.engine, cfg, a.logger)

		result := resultSuccess
		if err != nil {
			result = resultFailure
		}
		a.metrics.RecordRun(result, summary.Evaluated, summary.Duration)
		tracing.SetRunAttributes(span, summary.RunID, summary.Contracts, summary.Failed, summary.Issues)
		tracing.SetStatus(span, err)

		if werr := a.metrics.WriteTextfile(a.cfg.Telemetry.Metrics.Textfile); werr != nil {
			a.logger.Warn("failed to write metrics textfile", "error", werr)
		}
		return err
	}
}
