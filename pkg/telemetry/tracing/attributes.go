package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by clausewatch spans.
const (
	// Contract attributes
	AttrContractID         = "contract.id"
	AttrContractCompliance = "contract.compliance"
	AttrClauseID           = "clause.id"
	AttrClausesCount       = "clauses.count"
	AttrIssuesCount        = "issues.count"

	// Rule attributes
	AttrRulesVersion = "rules.version"
	AttrRulesCount   = "rules.count"
	AttrRulesActive  = "rules.active"
	AttrRulesSource  = "rules.source"

	// Run attributes
	AttrRunID        = "run.id"
	AttrRunContracts = "run.contracts"
	AttrRunFailed    = "run.failed"
	AttrRunTrigger   = "run.trigger"

	// Command attributes
	AttrCommand = "cli.command"
)

// SetRunAttributes records the outcome of an evaluate-all run.
func SetRunAttributes(span trace.Span, runID string, contracts, failed, issues int) {
	span.SetAttributes(
		attribute.String(AttrRunID, runID),
		attribute.Int(AttrRunContracts, contracts),
		attribute.Int(AttrRunFailed, failed),
		attribute.Int(AttrIssuesCount, issues),
	)
}

// AddEvent adds a named event with attributes to the span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// AttributeBuilder provides a fluent interface for building span attributes.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates a new attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithCommand adds the CLI command name.
func (ab *AttributeBuilder) WithCommand(command string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrCommand, command))
	return ab
}

// WithContract adds the contract ID.
func (ab *AttributeBuilder) WithContract(id string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrContractID, id))
	return ab
}

// WithRules adds the rule set version and source.
func (ab *AttributeBuilder) WithRules(version, source string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrRulesVersion, version),
		attribute.String(AttrRulesSource, source),
	)
	return ab
}

// WithCustom adds a custom attribute.
func (ab *AttributeBuilder) WithCustom(key string, value interface{}) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		// Fall back to string representation
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to a span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}
