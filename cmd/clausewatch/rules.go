package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/clausewatch/pkg/cli"
	"mercator-hq/clausewatch/pkg/compliance/rules"
)

var rulesFlags struct {
	format string
	active bool
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the loaded compliance rules",
	Long: `Inspect the compliance rules loaded from the configured rule source.

Examples:
  # List every rule
  clausewatch rules list

  # Only active rules, as CSV
  clausewatch rules list --active --format csv

  # Show one rule with its guidance
  clausewatch rules show gdpr-unlimited-liability`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in store order",
	Args:  cobra.NoArgs,
	RunE:  listRules,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <rule-id>",
	Short: "Show one rule",
	Args:  cobra.ExactArgs(1),
	RunE:  showRule,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesShowCmd)

	rulesCmd.PersistentFlags().StringVar(&rulesFlags.format, "format", "text", "output format: text, json, csv")
	rulesListCmd.Flags().BoolVar(&rulesFlags.active, "active", false, "only list active rules")
}

func listRules(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	if err := a.loadRules(commandContext(cmd)); err != nil {
		return err
	}

	set := a.rules.Store().Snapshot()
	compiled := set.All()
	if rulesFlags.active {
		compiled = set.ListActive()
	}

	table := &cli.Table{Header: []string{"id", "name", "severity", "regulation", "category", "active"}}
	records := make([]rules.Rule, 0, len(compiled))
	for _, cr := range compiled {
		r := cr.Rule()
		records = append(records, r)
		table.Append(r.ID, r.Name, cr.Severity().Label(), r.Regulation, r.Category, strconv.FormatBool(cr.Active()))
	}
	table.Data = records

	if err := writeOutput(cmd, rulesFlags.format, table); err != nil {
		return err
	}
	if rulesFlags.format == "text" {
		status := a.rules.Status()
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d rules (%d active), version %s from %s\n",
			status.RuleCount, status.ActiveCount, status.Version, status.Origin)
	}
	return nil
}

func showRule(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	if err := a.loadRules(commandContext(cmd)); err != nil {
		return err
	}

	cr, err := a.rules.Store().Get(args[0])
	if err != nil {
		return cli.NewCommandError("rules show", err)
	}
	r := cr.Rule()

	table := &cli.Table{Header: []string{"field", "value"}, Data: r}
	table.Append("id", r.ID)
	table.Append("name", r.Name)
	table.Append("severity", cr.Severity().Label())
	table.Append("regulation", r.Regulation)
	table.Append("category", r.Category)
	table.Append("active", strconv.FormatBool(r.Active))
	table.Append("pattern", r.Pattern)
	table.Append("description", r.Description)
	table.Append("guidance", r.Guidance)
	if r.NonCompliantExample != "" {
		table.Append("non-compliant example", r.NonCompliantExample)
	}
	if r.CompliantExample != "" {
		table.Append("compliant example", r.CompliantExample)
	}
	return writeOutput(cmd, rulesFlags.format, table)
}
