package source

import (
	"fmt"
	"regexp"
	"strconv"
)

// LoadError represents an error reading a rule pack: a missing file, a
// permission problem, a size limit or an encoding failure.
type LoadError struct {
	// Path is the file, directory or repository path that failed to load
	Path string

	// Message describes the error
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load rule pack %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load rule pack %q: %s", e.Path, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError represents a malformed rule pack document.
type ParseError struct {
	// Path is the file that failed to parse
	Path string

	// Line is the line number where the error occurred (1-indexed), 0 if unknown
	Line int

	// Message describes the parsing error
	Message string

	// Cause is the underlying decoder error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %q at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %q: %s", e.Path, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

func newParseError(path string, err error) *ParseError {
	pe := &ParseError{Path: path, Message: err.Error(), Cause: err}
	if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}
