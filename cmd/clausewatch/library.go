package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/clausewatch/pkg/cli"
	"mercator-hq/clausewatch/pkg/contract"
)

var libraryFlags struct {
	format   string
	category string
}

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Browse the standard clause library",
	Long: `Browse the library of pre-approved standard clauses. Evaluation suggests
these clauses as alternatives when --alternatives is set.

Examples:
  # List every standard clause
  clausewatch library list

  # Only data protection clauses
  clausewatch library list --category "Data Protection"

  # Full text of one clause
  clausewatch library show std-dp-001`,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List standard clauses",
	Args:  cobra.NoArgs,
	RunE:  listLibrary,
}

var libraryShowCmd = &cobra.Command{
	Use:   "show <clause-id>",
	Short: "Show one standard clause",
	Args:  cobra.ExactArgs(1),
	RunE:  showLibraryClause,
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryShowCmd)

	libraryCmd.PersistentFlags().StringVar(&libraryFlags.format, "format", "text", "output format: text, json, csv")
	libraryListCmd.Flags().StringVar(&libraryFlags.category, "category", "", "only list clauses in this category")
}

func openLibrary(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.loadLibrary(); err != nil {
		a.shutdown()
		return nil, err
	}
	return a, nil
}

func listLibrary(cmd *cobra.Command, args []string) error {
	a, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	clauses := a.library.List()
	if libraryFlags.category != "" {
		clauses = a.library.ByCategory(libraryFlags.category)
	}

	table := &cli.Table{
		Header: []string{"id", "title", "category", "rating", "regulations"},
		Data:   clauses,
	}
	for _, c := range clauses {
		table.Append(c.ID, c.Title, c.Category, formatRating(c.ComplianceRating), regulationNames(c))
	}
	return writeOutput(cmd, libraryFlags.format, table)
}

func showLibraryClause(cmd *cobra.Command, args []string) error {
	a, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	c, err := a.library.Get(args[0])
	if err != nil {
		return cli.NewCommandError("library show", err)
	}

	table := &cli.Table{Header: []string{"field", "value"}, Data: c}
	table.Append("id", c.ID)
	table.Append("title", c.Title)
	table.Append("category", c.Category)
	table.Append("rating", formatRating(c.ComplianceRating))
	table.Append("regulations", regulationNames(c))
	table.Append("tags", strings.Join(c.Tags, ", "))
	table.Append("guidance", c.UsageGuidance)
	table.Append("text", c.Text)
	return writeOutput(cmd, libraryFlags.format, table)
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// regulationNames lists the regulations a clause satisfies.
func regulationNames(c contract.StandardClause) string {
	names := make([]string, 0, len(c.Regulations))
	for _, r := range c.Regulations {
		if r.Compliant {
			names = append(names, r.Name)
		}
	}
	return strings.Join(names, ", ")
}
