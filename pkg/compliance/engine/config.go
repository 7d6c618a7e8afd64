package engine

import (
	"fmt"
)

// EngineConfig contains configuration for the compliance evaluation engine.
type EngineConfig struct {
	// Workers is the number of clauses evaluated in parallel within one
	// contract. 1 evaluates clauses sequentially.
	// Default: 1.
	Workers int

	// MaxMatchesPerRule caps how many match spans are recorded for one rule
	// in one clause. It never changes whether the rule fires. 0 records all.
	// Default: 0.
	MaxMatchesPerRule int

	// IncludeMatches attaches match spans to each issue.
	// Default: true.
	IncludeMatches bool

	// ExtractClauses splits a contract's content into clauses when the
	// contract arrives without any.
	// Default: true.
	ExtractClauses bool
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Workers:           1,
		MaxMatchesPerRule: 0,
		IncludeMatches:    true,
		ExtractClauses:    true,
	}
}

// Validate validates the engine configuration.
func (c *EngineConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Workers > 256 {
		return fmt.Errorf("%w: workers cannot exceed 256, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.MaxMatchesPerRule < 0 {
		return fmt.Errorf("%w: max matches per rule cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// WithWorkers sets the number of parallel clause workers.
func (c *EngineConfig) WithWorkers(n int) *EngineConfig {
	c.Workers = n
	return c
}

// WithMaxMatchesPerRule sets the per-rule span cap.
func (c *EngineConfig) WithMaxMatchesPerRule(max int) *EngineConfig {
	c.MaxMatchesPerRule = max
	return c
}

// WithIncludeMatches enables or disables match spans on issues.
func (c *EngineConfig) WithIncludeMatches(enabled bool) *EngineConfig {
	c.IncludeMatches = enabled
	return c
}

// WithExtractClauses enables or disables clause extraction from content.
func (c *EngineConfig) WithExtractClauses(enabled bool) *EngineConfig {
	c.ExtractClauses = enabled
	return c
}
