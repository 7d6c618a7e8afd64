// Package metrics provides Prometheus metrics collection for clausewatch.
//
// # Metrics Categories
//
//   - Compliance Metrics: evaluations, clause counts, issues by severity
//   - Rule Metrics: per-rule hits and misses, loaded rule counts, reloads
//   - Run Metrics: scheduled evaluation runs and the last run time
//
// clausewatch is a CLI rather than a server, so metrics are not scraped over
// HTTP. WriteTextfile writes the registry in Prometheus text format for the
// node_exporter textfile collector.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	eng, err := engine.New(engineCfg, store, logger, engine.WithMetrics(collector))
//	...
//	err = collector.WriteTextfile(cfg.Telemetry.Metrics.Textfile)
//
// # Cardinality
//
// rule_id labels are capped by MetricsConfig.MaxRuleLabels. Rules past the
// cap are counted under rule_id="other".
package metrics
