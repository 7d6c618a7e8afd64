package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/clausewatch/pkg/compliance/engine"
	"mercator-hq/clausewatch/pkg/contract"
	"mercator-hq/clausewatch/pkg/report"
)

// ContractEvaluator produces detailed evaluation results.
// *engine.Engine implements it.
type ContractEvaluator interface {
	EvaluateDetailed(ctx context.Context, c *contract.Contract) (*engine.Result, error)
}

// EvaluateAllConfig configures a full re-evaluation run.
type EvaluateAllConfig struct {
	// OutputDir receives one report file per contract. Empty disables
	// writing.
	OutputDir string

	// Format is the report format: text, json or csv.
	Format string

	// Library, when set, adds standard clause alternatives to reports.
	Library *contract.Library

	// Progress, when set, is called after each contract with the number
	// of contracts processed so far.
	Progress func(done, total int)
}

// RunSummary describes a completed re-evaluation run.
type RunSummary struct {
	RunID     string
	Contracts int
	Evaluated int
	Failed    int
	Issues    int
	Files     []string
	Reports   []*report.Report
	Duration  time.Duration
}

// EvaluateAll evaluates every contract in store against the current rules
// and writes a report for each. A failing contract does not stop the run;
// failures are joined into the returned error. Cancellation stops the run.
func EvaluateAll(ctx context.Context, store contract.Store, eval ContractEvaluator, cfg EvaluateAllConfig, logger *slog.Logger) (*RunSummary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	summary := &RunSummary{RunID: uuid.New().String()}
	logger = logger.With("run_id", summary.RunID)

	contracts, err := store.List(ctx)
	if err != nil {
		return summary, fmt.Errorf("list contracts: %w", err)
	}
	summary.Contracts = len(contracts)

	var errs []error
	for i, c := range contracts {
		if cfg.Progress != nil && i > 0 {
			cfg.Progress(i, len(contracts))
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res, err := eval.EvaluateDetailed(ctx, c)
		if err != nil {
			if ctx.Err() != nil {
				return summary, err
			}
			summary.Failed++
			errs = append(errs, err)
			logger.Warn("contract evaluation failed", "contract_id", c.ID, "error", err)
			continue
		}

		r := report.FromResult(res)
		r.AddAlternatives(cfg.Library, 1)

		// A contract counts as evaluated only once its report is out.
		if cfg.OutputDir != "" {
			path, err := report.WriteFile(ctx, cfg.OutputDir, r, cfg.Format)
			if err != nil {
				summary.Failed++
				errs = append(errs, fmt.Errorf("contract %s: %w", c.ID, err))
				logger.Warn("report write failed", "contract_id", c.ID, "error", err)
				continue
			}
			summary.Files = append(summary.Files, path)
		}

		summary.Evaluated++
		summary.Issues += r.Summary.Issues
		summary.Reports = append(summary.Reports, r)
	}

	if cfg.Progress != nil && len(contracts) > 0 {
		cfg.Progress(len(contracts), len(contracts))
	}

	summary.Duration = time.Since(start)
	logger.Info("re-evaluation completed",
		"contracts", summary.Contracts,
		"evaluated", summary.Evaluated,
		"failed", summary.Failed,
		"issues", summary.Issues,
		"duration_ms", summary.Duration.Milliseconds(),
	)
	return summary, errors.Join(errs...)
}

// EvaluateAllJob wraps EvaluateAll as a Job.
func EvaluateAllJob(store contract.Store, eval ContractEvaluator, cfg EvaluateAllConfig, logger *slog.Logger) Job {
	return func(ctx context.Context) error {
		_, err := EvaluateAll(ctx, store, eval, cfg, logger)
		return err
	}
}
