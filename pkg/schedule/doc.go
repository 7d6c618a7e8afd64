// Package schedule runs periodic contract re-evaluation.
//
// A Scheduler wraps robfig/cron and runs one Job on a standard five-field
// cron expression. EvaluateAllJob is the job used by the watch command: it
// evaluates every stored contract against the current rule set and writes
// a report per contract.
//
//	job := schedule.EvaluateAllJob(store, eng, schedule.EvaluateAllConfig{
//	    OutputDir: "reports",
//	    Format:    report.FormatJSON,
//	}, logger)
//	s := schedule.NewScheduler("0 6 * * *", "evaluate-all", job, logger)
//	if err := s.Start(ctx); err != nil {
//	    return err
//	}
//	defer s.Stop()
package schedule
