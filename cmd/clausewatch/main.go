// clausewatch evaluates contract clauses against regulatory compliance rules.
//
// It loads a pack of rules (each a pattern, a severity and the regulation it
// enforces), matches them against the clauses of stored contracts, and
// reports the issues found:
//   - Rule packs read from files or pinned to a git revision
//   - Contracts read from YAML/JSON documents or a SQLite database
//   - Reports in text, JSON or CSV, with standard clause alternatives
//   - Hot reload of rule packs and scheduled re-evaluation
//
// Usage:
//
//	# Evaluate one stored contract
//	clausewatch evaluate c-1001
//
//	# Evaluate every stored contract, failing the build on high issues
//	clausewatch evaluate --all --fail-on high
//
//	# Validate rule packs
//	clausewatch lint --dir rules/
//
//	# Reload rules on change and re-evaluate nightly
//	clausewatch watch --config clausewatch.yaml
package main

func main() {
	Execute()
}
