package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "rules.path").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All field errors are
// collected and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateContracts(&cfg.Contracts)...)
	errs = append(errs, validateReport(&cfg.Report)...)
	errs = append(errs, validateSchedule(&cfg.Schedule)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	switch cfg.Source {
	case "file":
		if cfg.Path == "" {
			errs = append(errs, FieldError{Field: "rules.path", Message: "must be specified for the file source"})
		}
	case "git":
		if cfg.Git.Repository == "" {
			errs = append(errs, FieldError{Field: "rules.git.repository", Message: "must be specified for the git source"})
		}
		if cfg.Watch {
			errs = append(errs, FieldError{Field: "rules.watch", Message: "is only supported for the file source"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "rules.source",
			Message: fmt.Sprintf("must be one of: file, git (got %q)", cfg.Source),
		})
	}

	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{Field: "rules.debounce", Message: "cannot be negative"})
	}
	if cfg.MaxFileSize <= 0 {
		errs = append(errs, FieldError{Field: "rules.max_file_size", Message: "must be positive"})
	}
	return errs
}

func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError
	if cfg.Workers < 1 || cfg.Workers > 256 {
		errs = append(errs, FieldError{
			Field:   "engine.workers",
			Message: fmt.Sprintf("must be between 1 and 256 (got %d)", cfg.Workers),
		})
	}
	if cfg.MaxMatchesPerRule < 0 {
		errs = append(errs, FieldError{Field: "engine.max_matches_per_rule", Message: "cannot be negative"})
	}
	return errs
}

func validateContracts(cfg *ContractsConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "file", "sqlite":
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "contracts.path",
				Message: fmt.Sprintf("must be specified for the %s backend", cfg.Backend),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "contracts.backend",
			Message: fmt.Sprintf("must be one of: memory, file, sqlite (got %q)", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" {
		if cfg.SQLite.Driver != "sqlite" && cfg.SQLite.Driver != "sqlite3" {
			errs = append(errs, FieldError{
				Field:   "contracts.sqlite.driver",
				Message: fmt.Sprintf("must be one of: sqlite, sqlite3 (got %q)", cfg.SQLite.Driver),
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{Field: "contracts.sqlite.busy_timeout", Message: "cannot be negative"})
		}
	}
	return errs
}

func validateReport(cfg *ReportConfig) []FieldError {
	var errs []FieldError
	switch cfg.Format {
	case "text", "json", "csv":
	default:
		errs = append(errs, FieldError{
			Field:   "report.format",
			Message: fmt.Sprintf("must be one of: text, json, csv (got %q)", cfg.Format),
		})
	}
	return errs
}

func validateSchedule(cfg *ScheduleConfig) []FieldError {
	if cfg.Cron == "" {
		return nil
	}
	if _, err := cron.ParseStandard(cfg.Cron); err != nil {
		return []FieldError{{Field: "schedule.cron", Message: fmt.Sprintf("invalid cron expression: %v", err)}}
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level),
		})
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of: json, text, console (got %q)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Namespace == "" {
			errs = append(errs, FieldError{Field: "telemetry.metrics.namespace", Message: "must be specified when metrics are enabled"})
		}
		for i := 1; i < len(cfg.Metrics.DurationBuckets); i++ {
			if cfg.Metrics.DurationBuckets[i] <= cfg.Metrics.DurationBuckets[i-1] {
				errs = append(errs, FieldError{Field: "telemetry.metrics.duration_buckets", Message: "must be strictly increasing"})
				break
			}
		}
		if cfg.Metrics.MaxRuleLabels < 1 {
			errs = append(errs, FieldError{Field: "telemetry.metrics.max_rule_labels", Message: "must be positive"})
		}
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "must be specified when tracing is enabled"})
		}
		if cfg.Tracing.Timeout <= 0 {
			errs = append(errs, FieldError{Field: "telemetry.tracing.timeout", Message: "must be positive"})
		}
	}
	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("must be one of: always, never, ratio (got %q)", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: fmt.Sprintf("must be between 0.0 and 1.0 (got %g)", cfg.Tracing.SampleRatio),
		})
	}
	return errs
}
