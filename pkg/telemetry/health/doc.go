// Package health runs readiness checks for the `clausewatch check` command.
//
// Each component the configuration points at registers a CheckFunc. Run
// executes them concurrently, bounds each with a timeout and aggregates
// the results: "ready" when every check passes, "degraded" otherwise.
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("rules", func(ctx context.Context) error {
//		_, err := mgr.Validate(ctx)
//		return err
//	})
//	status := checker.Run(ctx)
package health
