package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// EvaluationIDKey is the context key for evaluation run IDs.
	EvaluationIDKey contextKey = "evaluation_id"

	// ContractIDKey is the context key for contract IDs.
	ContractIDKey contextKey = "contract_id"

	// ClauseIDKey is the context key for clause IDs.
	ClauseIDKey contextKey = "clause_id"

	// RuleSetVersionKey is the context key for the rule set version.
	RuleSetVersionKey contextKey = "rule_set_version"
)

// contextKeys lists the keys extracted into log records, in output order.
var contextKeys = []contextKey{EvaluationIDKey, ContractIDKey, ClauseIDKey, RuleSetVersionKey}

// WithEvaluationID adds an evaluation ID to the context.
func WithEvaluationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, EvaluationIDKey, id)
}

// GetEvaluationID retrieves the evaluation ID from the context.
func GetEvaluationID(ctx context.Context) string {
	return getString(ctx, EvaluationIDKey)
}

// WithContractID adds a contract ID to the context.
func WithContractID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContractIDKey, id)
}

// GetContractID retrieves the contract ID from the context.
func GetContractID(ctx context.Context) string {
	return getString(ctx, ContractIDKey)
}

// WithClauseID adds a clause ID to the context.
func WithClauseID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ClauseIDKey, id)
}

// GetClauseID retrieves the clause ID from the context.
func GetClauseID(ctx context.Context) string {
	return getString(ctx, ClauseIDKey)
}

// WithRuleSetVersion adds a rule set version to the context.
func WithRuleSetVersion(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, RuleSetVersionKey, version)
}

// GetRuleSetVersion retrieves the rule set version from the context.
func GetRuleSetVersion(ctx context.Context) string {
	return getString(ctx, RuleSetVersionKey)
}

func getString(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// extractContextFields extracts the log fields stored in ctx as key-value
// pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any
	for _, key := range contextKeys {
		if v := getString(ctx, key); v != "" {
			fields = append(fields, string(key), v)
		}
	}
	return fields
}

func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v := getString(ctx, key); v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}
