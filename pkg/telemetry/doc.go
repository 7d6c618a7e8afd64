// Package telemetry groups the observability packages used by clausewatch.
//
// # Components
//
//   - logging: structured logging that keeps clause text out of log output
//   - metrics: Prometheus counters and histograms for evaluations, rules and
//     scheduled runs, written to a node_exporter textfile
//   - tracing: OpenTelemetry spans for loads, evaluations and runs, exported
//     over OTLP/gRPC
//   - health: readiness checks for the components a configuration points at
//
// # Usage
//
//	log, err := logging.New(logging.Config{Level: "info", Format: "json", RedactText: true})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//
//	ctx, span := tracer.Start(ctx, "schedule.run")
//	defer span.End()
//
//	collector.RecordRun("success", summary.Evaluated, summary.Duration)
//	_ = collector.WriteTextfile(cfg.Telemetry.Metrics.Textfile)
//
// Metrics and tracing become no-ops when disabled in configuration; callers
// use them unconditionally.
package telemetry
