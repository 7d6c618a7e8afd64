// Package manager keeps the live compliance rule store in step with a rule
// source.
//
// Load installs the first rule set. Reload re-reads the source and swaps in
// the new rules only when every rule compiles; otherwise the previous rules
// stay active and the failure is recorded in Status. Watch uses fsnotify to
// trigger a debounced Reload whenever a rule pack file changes.
//
//	src := source.NewFileSource("rules/", nil, logger)
//	mgr, err := manager.NewManager(src, manager.DefaultOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := mgr.Load(ctx); err != nil {
//	    return err
//	}
//	eng, err := engine.New(engine.DefaultEngineConfig(), mgr.Store(), logger)
//
// Evaluations already in flight keep the rule set snapshot they started
// with.
package manager
