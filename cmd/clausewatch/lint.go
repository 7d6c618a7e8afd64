package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"mercator-hq/clausewatch/pkg/cli"
	"mercator-hq/clausewatch/pkg/compliance/rules"
	"mercator-hq/clausewatch/pkg/compliance/source"
)

var lintFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate rule pack files",
	Long: `Validate compliance rule packs without evaluating anything.

The lint command parses rule pack files and compiles every rule:
  - YAML syntax and unknown fields
  - Missing or duplicate rule IDs (also across the files of a directory)
  - Unknown severities
  - Patterns that do not compile or that match the empty string

Examples:
  # Lint single file
  clausewatch lint --file rules/gdpr.yaml

  # Lint directory
  clausewatch lint --dir rules/

  # Strict mode (warnings as errors)
  clausewatch lint --dir rules/ --strict

  # JSON output for CI/CD
  clausewatch lint --dir rules/ --format json`,
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "rule pack file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of rule pack files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the validation result for one rule pack file.
type LintResult struct {
	File     string      `json:"file"`
	Valid    bool        `json:"valid"`
	Pack     string      `json:"pack,omitempty"`
	Version  string      `json:"version,omitempty"`
	Rules    int         `json:"rules"`
	Active   int         `json:"active"`
	Errors   []LintIssue `json:"errors,omitempty"`
	Warnings []LintIssue `json:"warnings,omitempty"`
}

// LintIssue is one problem found in a rule pack.
type LintIssue struct {
	Line    int    `json:"line,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func lintRules(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}
	if lintFlags.format != "text" && lintFlags.format != "json" {
		return fmt.Errorf("unknown output format %q (valid: text, json)", lintFlags.format)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := compileOptions(cfg)

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list rule files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no rule pack files found")
	}
	sort.Strings(files)

	results := make([]LintResult, 0, len(files)+1)
	var packs []*source.Pack
	for _, file := range files {
		result, pack := lintFile(file, opts)
		results = append(results, result)
		if pack != nil && result.Valid {
			packs = append(packs, pack)
		}
	}
	if len(packs) > 1 {
		if result, ok := lintCombined(lintFlags.dir, packs, opts); !ok {
			results = append(results, result)
		}
	}

	out := cmd.OutOrStdout()
	if lintFlags.format == "json" {
		if err := writeOutput(cmd, "json", results); err != nil {
			return err
		}
	} else {
		writeLintText(out, results, lintFlags.strict)
	}

	failed := 0
	for _, r := range results {
		if !r.Valid || (lintFlags.strict && len(r.Warnings) > 0) {
			failed++
		}
	}
	if failed > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("%d of %d rule pack(s) failed validation", failed, len(results)))
	}
	return nil
}

// lintFile parses and compiles one pack file. The parsed pack is returned
// even when rules fail to compile.
func lintFile(path string, opts rules.CompileOptions) (LintResult, *source.Pack) {
	result := LintResult{File: path}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, LintIssue{Message: err.Error()})
		return result, nil
	}

	pack, err := source.ParsePack(data, path)
	if err != nil {
		issue := LintIssue{Message: err.Error()}
		var pe *source.ParseError
		if errors.As(err, &pe) {
			issue.Line = pe.Line
			issue.Message = pe.Message
		}
		result.Errors = append(result.Errors, issue)
		return result, nil
	}

	result.Pack = pack.Name
	result.Version = pack.Version
	result.Rules = len(pack.Rules)

	set, err := rules.NewRuleSet(pack.Rules, opts)
	if err != nil {
		result.Errors = append(result.Errors, ruleIssues(err)...)
		return result, pack
	}

	result.Valid = true
	result.Active = set.ActiveLen()
	result.Warnings = packWarnings(pack, set)
	return result, pack
}

// lintCombined compiles the rules of every valid pack together, catching
// IDs defined in more than one file.
func lintCombined(dir string, packs []*source.Pack, opts rules.CompileOptions) (LintResult, bool) {
	var all []rules.Rule
	for _, p := range packs {
		all = append(all, p.Rules...)
	}
	_, err := rules.NewRuleSet(all, opts)
	if err == nil {
		return LintResult{}, true
	}
	return LintResult{
		File:   dir,
		Rules:  len(all),
		Errors: ruleIssues(err),
	}, false
}

func ruleIssues(err error) []LintIssue {
	var list *rules.ErrorList
	errs := []error{err}
	if errors.As(err, &list) {
		errs = list.Errors
	}

	issues := make([]LintIssue, 0, len(errs))
	for _, e := range errs {
		issue := LintIssue{Message: e.Error()}
		var ce *rules.ConfigurationError
		if errors.As(e, &ce) {
			issue.Rule = ce.RuleID
			if issue.Rule == "" {
				issue.Rule = fmt.Sprintf("#%d", ce.Index)
			}
			issue.Field = ce.Field
			issue.Message = ce.Message
			if ce.Cause != nil {
				issue.Message += ": " + ce.Cause.Error()
			}
		}
		issues = append(issues, issue)
	}
	return issues
}

func packWarnings(pack *source.Pack, set *rules.RuleSet) []LintIssue {
	var warnings []LintIssue
	if len(pack.Rules) == 0 {
		warnings = append(warnings, LintIssue{Message: "rule pack defines no rules"})
	} else if set.ActiveLen() == 0 {
		warnings = append(warnings, LintIssue{Message: "rule pack has no active rules"})
	}
	for _, r := range pack.Rules {
		if r.Guidance == "" {
			warnings = append(warnings, LintIssue{Rule: r.ID, Field: "guidance", Message: "rule has no guidance"})
		}
		if r.Regulation == "" {
			warnings = append(warnings, LintIssue{Rule: r.ID, Field: "regulation", Message: "rule names no regulation"})
		}
	}
	return warnings
}

func writeLintText(w io.Writer, results []LintResult, strict bool) {
	for _, r := range results {
		switch {
		case !r.Valid:
			fmt.Fprintf(w, "✗ %s\n", r.File)
		case strict && len(r.Warnings) > 0:
			fmt.Fprintf(w, "✗ %s (%d rules, %d active)\n", r.File, r.Rules, r.Active)
		default:
			fmt.Fprintf(w, "✓ %s (%d rules, %d active)\n", r.File, r.Rules, r.Active)
		}

		for _, e := range r.Errors {
			fmt.Fprintf(w, "  error: %s\n", formatLintIssue(e))
		}
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", formatLintIssue(warn))
		}
	}
}

func formatLintIssue(i LintIssue) string {
	msg := i.Message
	if i.Field != "" {
		msg = i.Field + ": " + msg
	}
	if i.Rule != "" {
		msg = "rule " + i.Rule + ": " + msg
	}
	if i.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", i.Line, msg)
	}
	return msg
}
