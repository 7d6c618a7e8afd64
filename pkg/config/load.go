package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "CLAUSEWATCH_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded over DefaultConfig, remaining defaults are applied and
// the result is validated. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration over the defaults without validating it.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	// The contract path default depends on the backend the file selects.
	cfg.Contracts.Path = ""

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CLAUSEWATCH_SECTION_FIELD (e.g., CLAUSEWATCH_RULES_PATH) and
// always take precedence over the file.
//
// An empty path skips the file and starts from the defaults.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = DefaultConfig()
		cfg.Contracts.Path = ""
	} else {
		var err error
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Values that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Rules overrides
	envString("RULES_SOURCE", &cfg.Rules.Source)
	envString("RULES_PATH", &cfg.Rules.Path)
	envString("RULES_GIT_REPOSITORY", &cfg.Rules.Git.Repository)
	envString("RULES_GIT_REF", &cfg.Rules.Git.Ref)
	envBool("RULES_CASE_INSENSITIVE", &cfg.Rules.CaseInsensitive)
	envBool("RULES_WATCH", &cfg.Rules.Watch)
	envDuration("RULES_DEBOUNCE", &cfg.Rules.Debounce)
	if val := os.Getenv(EnvPrefix + "RULES_MAX_FILE_SIZE"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Rules.MaxFileSize = n
		}
	}

	// Engine overrides
	envInt("ENGINE_WORKERS", &cfg.Engine.Workers)
	envInt("ENGINE_MAX_MATCHES_PER_RULE", &cfg.Engine.MaxMatchesPerRule)
	envBool("ENGINE_INCLUDE_MATCHES", &cfg.Engine.IncludeMatches)
	envBool("ENGINE_EXTRACT_CLAUSES", &cfg.Engine.ExtractClauses)

	// Contracts overrides
	envString("CONTRACTS_BACKEND", &cfg.Contracts.Backend)
	envString("CONTRACTS_PATH", &cfg.Contracts.Path)
	envString("CONTRACTS_SQLITE_DRIVER", &cfg.Contracts.SQLite.Driver)
	envDuration("CONTRACTS_SQLITE_BUSY_TIMEOUT", &cfg.Contracts.SQLite.BusyTimeout)

	// Library, report and schedule overrides
	envString("LIBRARY_PATH", &cfg.Library.Path)
	envString("REPORT_FORMAT", &cfg.Report.Format)
	envString("REPORT_OUTPUT_DIR", &cfg.Report.OutputDir)
	envString("SCHEDULE_CRON", &cfg.Schedule.Cron)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	envBool("TELEMETRY_LOGGING_REDACT_TEXT", &cfg.Telemetry.Logging.RedactText)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
	envString("TELEMETRY_METRICS_TEXTFILE", &cfg.Telemetry.Metrics.Textfile)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envString("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
	envBool("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
