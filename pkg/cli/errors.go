package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitIssues     = 2
	ExitConfigFail = 3
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IssuesFoundError reports that an evaluation found issues at or above the
// --fail-on threshold. It is not a failure of the command itself.
type IssuesFoundError struct {
	Threshold string
	Contracts int
}

func (e *IssuesFoundError) Error() string {
	return fmt.Sprintf("%d contract(s) have issues of %s severity or above", e.Contracts, e.Threshold)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var issues *IssuesFoundError
	if errors.As(err, &issues) {
		return ExitIssues
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigFail
	}
	return ExitError
}
