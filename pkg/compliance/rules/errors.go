package rules

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched by lookups of rule IDs that are not in the store.
	ErrNotFound = errors.New("rule not found")

	// ErrDuplicateRule is returned when a rule ID is already present.
	ErrDuplicateRule = errors.New("duplicate rule id")
)

// ConfigurationError reports a rule that cannot be loaded: a pattern that
// does not compile, an unknown severity, a missing or duplicate ID. It is
// raised when a store is built, never during evaluation.
type ConfigurationError struct {
	// RuleID is the offending rule's ID (may be empty when the ID is missing).
	RuleID string

	// Index is the rule's position in the input, starting at 0.
	Index int

	// Field is the rule field at fault (e.g. "pattern", "severity").
	Field string

	// Message describes the problem.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	parts := []string{"rule configuration error"}
	if e.RuleID != "" {
		parts = append(parts, fmt.Sprintf("in rule %q", e.RuleID))
	} else {
		parts = append(parts, fmt.Sprintf("in rule #%d", e.Index))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("at %s:", e.Field))
	}
	parts = append(parts, e.Message)
	msg := strings.Join(parts, " ")
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NotFoundError reports a rule ID that is not in the store.
type NotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("rule %q not found", e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ErrorList collects every configuration problem found while building a
// rule set, so a rule pack can be fixed in one pass.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *ErrorList) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the list.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil for an empty list and the list itself otherwise.
func (e *ErrorList) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
