// Package engine evaluates contract clauses against compliance rules.
//
// The engine reads one snapshot of a rules.Store per evaluation, matches each
// active rule's pattern against every clause, and returns an annotated copy of
// the contract. Each rule that matches a clause produces exactly one
// contract.ClauseIssue, and issues are ordered by severity (high first) with
// ties kept in rule store order. The input contract is never modified.
//
// # Basic Usage
//
//	store, err := rules.NewMemoryStore(ruleList, rules.DefaultCompileOptions())
//	if err != nil {
//	    return err
//	}
//
//	eng, err := engine.New(engine.DefaultEngineConfig(), store, logger)
//	if err != nil {
//	    return err
//	}
//
//	annotated, err := eng.Evaluate(ctx, c)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(annotated.Compliance)
//
// # Parallelism
//
// EngineConfig.Workers evaluates clauses of one contract concurrently. Output
// order always matches input order and results are identical to a sequential
// run.
package engine
