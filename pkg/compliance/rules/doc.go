// Package rules holds compliance rules and the store the engine reads them from.
//
// A Rule is the authored record. Compile turns it into a CompiledRule: the
// severity is parsed, the pattern is compiled once, and patterns that could
// never be evaluated safely are rejected. Stores are built from compiled
// rules only, so a bad pattern fails store construction with a
// *ConfigurationError and evaluation never meets it.
//
//	store, err := rules.NewMemoryStore(packRules, rules.DefaultCompileOptions())
//	if err != nil {
//		var cfgErr *rules.ConfigurationError
//		if errors.As(err, &cfgErr) {
//			log.Printf("rule %s: %s", cfgErr.RuleID, cfgErr.Message)
//		}
//		return err
//	}
//
// # Ordering
//
// Rules keep insertion order. ListActive returns active rules in that order,
// and the engine uses it to break ties between issues of equal severity.
//
// # Snapshots
//
// A RuleSet is immutable. MemoryStore mutations (Add, Deactivate, Activate,
// Replace) build a new RuleSet and swap it in, so a snapshot taken for one
// evaluation is never changed underneath it.
package rules
