package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/clausewatch/pkg/cli"
)

// defaultConfigFile is read when --config is not given and the file exists.
const defaultConfigFile = "clausewatch.yaml"

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "clausewatch",
	Short: "clausewatch - contract clause compliance evaluator",
	Long: `clausewatch evaluates the clauses of commercial contracts against a pack of
regulatory compliance rules and reports every issue it finds.

Each rule names a regulation (GDPR, CCPA, ...), a severity and a pattern.
A clause that matches an active rule's pattern gets an issue carrying the
rule's guidance. Contracts are then summarized as Compliant, Minor Issues
or Major Issues.

Exit codes:
  0  success
  1  command failed
  2  issues found at or above --fail-on
  3  invalid configuration`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code for its error.
func Execute() {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitCode(err))
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./"+defaultConfigFile+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log format (json, text, console)")
}
