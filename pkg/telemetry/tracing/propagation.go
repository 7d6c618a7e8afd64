package tracing

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Environment variables carrying W3C trace context into a command.
const (
	EnvTraceParent = "TRACEPARENT"
	EnvTraceState  = "TRACESTATE"
	EnvBaggage     = "BAGGAGE"
)

// Propagator returns the global text map propagator.
func Propagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// ExtractFromMap extracts trace context from a string map.
func ExtractFromMap(ctx context.Context, carrier map[string]string) context.Context {
	return Propagator().Extract(ctx, propagation.MapCarrier(carrier))
}

// InjectToMap injects trace context into a string map.
func InjectToMap(ctx context.Context, carrier map[string]string) {
	Propagator().Inject(ctx, propagation.MapCarrier(carrier))
}

// ExtractFromEnv returns ctx carrying the trace context found in the
// TRACEPARENT, TRACESTATE and BAGGAGE environment variables. An absent or
// malformed TRACEPARENT leaves ctx unchanged.
func ExtractFromEnv(ctx context.Context) context.Context {
	traceparent := strings.TrimSpace(os.Getenv(EnvTraceParent))
	if !ValidateTraceParent(traceparent) {
		return ctx
	}

	carrier := map[string]string{"traceparent": traceparent}
	if v := os.Getenv(EnvTraceState); v != "" {
		carrier["tracestate"] = v
	}
	if v := os.Getenv(EnvBaggage); v != "" {
		carrier["baggage"] = v
	}
	return ExtractFromMap(ctx, carrier)
}

// ValidateTraceParent reports whether traceparent is well formed:
// version-trace_id-parent_id-trace_flags with 2, 32, 16 and 2 hex digits
// and non-zero IDs.
//
// Example: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
func ValidateTraceParent(traceparent string) bool {
	parts := strings.Split(traceparent, "-")
	if len(parts) != 4 {
		return false
	}

	for i, want := range []int{2, 32, 16, 2} {
		if len(parts[i]) != want || !isHexString(parts[i]) {
			return false
		}
	}

	if parts[1] == "00000000000000000000000000000000" {
		return false
	}
	if parts[2] == "0000000000000000" {
		return false
	}
	return true
}

// isHexString checks if a string contains only hexadecimal characters.
func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
