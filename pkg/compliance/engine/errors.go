package engine

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrNoRuleStore indicates the engine has no usable rule store.
	ErrNoRuleStore = errors.New("no rule store")

	// ErrNilContract indicates Evaluate was called without a contract.
	ErrNilContract = errors.New("contract cannot be nil")
)

// EvaluationError reports an evaluation that was abandoned. No partial
// result accompanies it.
type EvaluationError struct {
	ContractID string
	Message    string
	Cause      error
}

// Error returns the error message.
func (e *EvaluationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("contract %s: %s: %v", e.ContractID, e.Message, e.Cause)
	}
	return fmt.Sprintf("contract %s: %s", e.ContractID, e.Message)
}

// Unwrap returns the underlying cause.
func (e *EvaluationError) Unwrap() error {
	return e.Cause
}
