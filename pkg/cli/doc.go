/*
Package cli provides command-line utilities for the clausewatch command.

Output Formatting:

List commands build a Table and hand it to a formatter selected by --format:

	table := &cli.Table{Header: []string{"id", "name", "severity"}}
	table.Append("rule-1", "Limitation of Liability", "high")
	if err := cli.NewFormatter(cli.FormatCSV).FormatTo(os.Stdout, table); err != nil {
		return err
	}

Progress Reporting:

	progress := cli.NewProgressReporter(os.Stderr)
	cfg.Progress = cli.ProgressFunc(progress)
	...
	progress.Finish()

Exit Codes:

ExitCode maps command errors to process exit codes. An IssuesFoundError
(evaluate --fail-on) exits with 2 and a ConfigError with 3.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
