package logging

import (
	"context"
	"testing"
)

func TestContextFields(t *testing.T) {
	tests := []struct {
		name string
		set  func(context.Context, string) context.Context
		get  func(context.Context) string
		key  string
	}{
		{name: "evaluation id", set: WithEvaluationID, get: GetEvaluationID, key: "evaluation_id"},
		{name: "contract id", set: WithContractID, get: GetContractID, key: "contract_id"},
		{name: "clause id", set: WithClauseID, get: GetClauseID, key: "clause_id"},
		{name: "rule set version", set: WithRuleSetVersion, get: GetRuleSetVersion, key: "rule_set_version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.get(context.Background()); got != "" {
				t.Errorf("empty context returned %q", got)
			}

			ctx := tt.set(context.Background(), "value")
			if got := tt.get(ctx); got != "value" {
				t.Errorf("got %q, want value", got)
			}

			fields := extractContextFields(ctx)
			if len(fields) != 2 || fields[0] != tt.key || fields[1] != "value" {
				t.Errorf("extractContextFields() = %v", fields)
			}
		})
	}
}

func TestExtractContextFields_Order(t *testing.T) {
	ctx := WithRuleSetVersion(context.Background(), "v1")
	ctx = WithContractID(ctx, "7")
	ctx = WithEvaluationID(ctx, "e")

	fields := extractContextFields(ctx)
	want := []any{"evaluation_id", "e", "contract_id", "7", "rule_set_version", "v1"}
	if len(fields) != len(want) {
		t.Fatalf("fields = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d = %v, want %v", i, fields[i], want[i])
		}
	}
}
