// Package tracing provides OpenTelemetry tracing for clausewatch.
//
// When tracing is enabled, spans are exported over OTLP gRPC. When it is
// disabled, New returns a Tracer backed by the noop provider, so components
// can always be handed a tracer.
//
// # Span Hierarchy
//
//	cli.<command>
//	└── schedule.run
//	    └── compliance.evaluate
//	        └── compliance.clause
//	rules.load / rules.reload
//
// # Joining a Parent Trace
//
// A CI job or wrapper script can pass its trace context through the
// TRACEPARENT and TRACESTATE environment variables. ExtractFromEnv reads
// them, so clausewatch spans become children of the caller's span.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version.Version)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	eng, err := engine.New(engineCfg, store, logger, engine.WithTracer(tracer))
package tracing
