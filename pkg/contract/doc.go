// Package contract defines the contract data model shared by the compliance
// engine, storage backends and reports: contracts, clauses, clause issues,
// match spans and the standard clause library.
//
// Clause.HasIssues and Clause.Severity are derived values. They are refreshed
// by Clause.Recompute and are never set on their own.
//
// Contracts are read through the Store interface. Backends live in the
// storage subpackage; every lookup miss matches ErrNotFound:
//
//	c, err := store.Get(ctx, "1")
//	if errors.Is(err, contract.ErrNotFound) {
//		// no such contract
//	}
//
// ExtractClauses splits raw contract content into clauses on numbered
// section headings, for contracts that arrive without a clause breakdown.
package contract
