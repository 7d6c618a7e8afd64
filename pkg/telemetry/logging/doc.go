// Package logging provides structured logging that keeps contract text out
// of log output.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Redaction of clause and contract text logged under sensitive keys
//   - Context fields (evaluation, contract, clause, rule set version)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:      "info",
//	    Format:     "json",
//	    RedactText: true,
//	})
//
//	ctx = logging.WithContractID(ctx, "1")
//	logger.InfoContext(ctx, "clause flagged",
//	    "clause_id", "1-2",
//	    "text", clause.Text, // logged as [redacted 212 bytes]
//	)
//
//	// Components take a *slog.Logger
//	eng, err := engine.New(cfg, store, logger.Slog())
//
// Redaction and context fields are applied by Handler, so they also cover
// records written through Slog().
package logging
