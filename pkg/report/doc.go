// Package report turns evaluated contracts into compliance reports and
// exports them as text, JSON or CSV.
//
//	res, err := eng.EvaluateDetailed(ctx, c)
//	if err != nil {
//	    return err
//	}
//	r := report.FromResult(res)
//	r.AddAlternatives(library, 1)
//
//	path, err := report.WriteFile(ctx, "reports", r, report.FormatJSON)
//
// WriteFile replaces an existing report for the same contract atomically.
package report
