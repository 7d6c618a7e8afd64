package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/clausewatch/pkg/cli"
	"mercator-hq/clausewatch/pkg/contract"
	"mercator-hq/clausewatch/pkg/contract/storage"
)

var contractsFlags struct {
	format string
	limit  int
}

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Browse and import stored contracts",
	Long: `Browse the contracts in the configured contract store, or import contract
documents into a SQLite store.

Examples:
  # List contracts in store order
  clausewatch contracts list

  # The three most recently added contracts
  clausewatch contracts recent --limit 3

  # Clauses of one contract, as JSON
  clausewatch contracts clauses c-1001 --format json

  # Load contract documents into the database
  clausewatch contracts import contracts/ --config sqlite.yaml`,
}

var contractsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contracts in store order",
	Args:  cobra.NoArgs,
	RunE:  listContracts,
}

var contractsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recently added contracts",
	Args:  cobra.NoArgs,
	RunE:  recentContracts,
}

var contractsShowCmd = &cobra.Command{
	Use:   "show <contract-id>",
	Short: "Show one contract",
	Args:  cobra.ExactArgs(1),
	RunE:  showContract,
}

var contractsClausesCmd = &cobra.Command{
	Use:   "clauses <contract-id>",
	Short: "List the clauses of a contract",
	Args:  cobra.ExactArgs(1),
	RunE:  listClauses,
}

var contractsImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import contract documents into the store",
	Long: `Import every contract in a YAML or JSON document, or in a directory of
documents, into the configured store. A contract whose ID is already stored
is replaced. The file backend is read-only and cannot be imported into.`,
	Args: cobra.ExactArgs(1),
	RunE: importContracts,
}

func init() {
	rootCmd.AddCommand(contractsCmd)
	contractsCmd.AddCommand(contractsListCmd)
	contractsCmd.AddCommand(contractsRecentCmd)
	contractsCmd.AddCommand(contractsShowCmd)
	contractsCmd.AddCommand(contractsClausesCmd)
	contractsCmd.AddCommand(contractsImportCmd)

	contractsCmd.PersistentFlags().StringVar(&contractsFlags.format, "format", "text", "output format: text, json, csv")
	contractsRecentCmd.Flags().IntVarP(&contractsFlags.limit, "limit", "n", contract.DefaultRecentLimit, "maximum number of contracts")
}

// openContracts builds an app with the contract store open.
func openContracts(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.openStore(); err != nil {
		a.shutdown()
		return nil, err
	}
	return a, nil
}

func contractTable(cs []*contract.Contract) *cli.Table {
	table := &cli.Table{
		Header: []string{"id", "name", "type", "added", "status", "compliance", "clauses"},
		Data:   cs,
	}
	for _, c := range cs {
		table.Append(c.ID, c.Name, c.Type, c.DateAdded.Format("2006-01-02"),
			c.Status, c.Compliance, strconv.Itoa(len(c.Clauses)))
	}
	return table
}

func listContracts(cmd *cobra.Command, args []string) error {
	a, err := openContracts(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	cs, err := a.store.List(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("contracts list", err)
	}
	return writeOutput(cmd, contractsFlags.format, contractTable(cs))
}

func recentContracts(cmd *cobra.Command, args []string) error {
	a, err := openContracts(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	cs, err := a.store.Recent(commandContext(cmd), contractsFlags.limit)
	if err != nil {
		return cli.NewCommandError("contracts recent", err)
	}
	return writeOutput(cmd, contractsFlags.format, contractTable(cs))
}

func showContract(cmd *cobra.Command, args []string) error {
	a, err := openContracts(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	c, err := a.store.Get(commandContext(cmd), args[0])
	if err != nil {
		return cli.NewCommandError("contracts show", err)
	}

	table := &cli.Table{Header: []string{"field", "value"}, Data: c}
	table.Append("id", c.ID)
	table.Append("name", c.Name)
	table.Append("type", c.Type)
	table.Append("added", c.DateAdded.Format("2006-01-02"))
	table.Append("status", c.Status)
	table.Append("compliance", c.Compliance)
	table.Append("parties", strings.Join(c.Parties, ", "))
	if c.ExpiryDate != nil {
		table.Append("expires", c.ExpiryDate.Format("2006-01-02"))
	}
	if c.Value != nil {
		table.Append("value", strconv.FormatFloat(*c.Value, 'f', 2, 64))
	}
	table.Append("clauses", strconv.Itoa(len(c.Clauses)))
	table.Append("versions", strconv.Itoa(len(c.Versions)))
	return writeOutput(cmd, contractsFlags.format, table)
}

func listClauses(cmd *cobra.Command, args []string) error {
	a, err := openContracts(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	clauses, err := a.store.Clauses(commandContext(cmd), args[0])
	if err != nil {
		return cli.NewCommandError("contracts clauses", err)
	}

	table := &cli.Table{
		Header: []string{"id", "title", "type", "severity", "issues"},
		Data:   clauses,
	}
	for _, c := range clauses {
		table.Append(c.ID, c.Title, c.Type, c.Severity.Label(), strconv.Itoa(len(c.Issues)))
	}
	return writeOutput(cmd, contractsFlags.format, table)
}

func importContracts(cmd *cobra.Command, args []string) error {
	a, err := openContracts(cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	dst, ok := a.store.(storage.Writer)
	if !ok {
		return cli.NewConfigError("contracts.backend",
			fmt.Sprintf("backend %q is read-only; import needs sqlite or memory", a.cfg.Contracts.Backend))
	}

	src, err := storage.LoadContracts(args[0])
	if err != nil {
		return cli.NewCommandError("contracts import", err)
	}

	n, err := storage.Import(commandContext(cmd), dst, src)
	if err != nil {
		return cli.NewCommandError("contracts import", err)
	}
	a.logger.Info("contracts imported", "path", args[0], "count", n, "backend", a.cfg.Contracts.Backend)
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d contract(s) from %s\n", n, args[0])
	return nil
}
