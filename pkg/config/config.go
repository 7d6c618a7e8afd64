package config

import "time"

// Config is the root configuration structure for clausewatch.
type Config struct {
	// Rules configures where compliance rules are loaded from and how they
	// are compiled and reloaded.
	Rules RulesConfig `yaml:"rules"`

	// Engine configures clause evaluation.
	Engine EngineConfig `yaml:"engine"`

	// Contracts selects the contract store backend.
	Contracts ContractsConfig `yaml:"contracts"`

	// Library points at an optional standard clause library.
	Library LibraryConfig `yaml:"library"`

	// Report configures report output.
	Report ReportConfig `yaml:"report"`

	// Schedule configures periodic re-evaluation in watch mode.
	Schedule ScheduleConfig `yaml:"schedule"`

	// Telemetry contains configuration for logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RulesConfig contains rule source configuration.
type RulesConfig struct {
	// Source is where rule packs come from.
	// Options: "file", "git"
	// Default: "file"
	Source string `yaml:"source"`

	// Path is a rule pack file or directory for the file source, or the
	// path inside the repository for the git source.
	// Default: "./rules"
	Path string `yaml:"path"`

	// Git configures the git source.
	Git GitConfig `yaml:"git"`

	// CaseInsensitive compiles rule patterns case-insensitively.
	// Default: true
	CaseInsensitive bool `yaml:"case_insensitive"`

	// Watch reloads rules when pack files change (file source only).
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period before a reload after file changes.
	// Default: 250ms
	Debounce time.Duration `yaml:"debounce"`

	// MaxFileSize is the largest rule pack file accepted, in bytes.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`
}

// GitConfig configures a git rule source.
type GitConfig struct {
	// Repository is the path to a local git repository.
	// Default: "."
	Repository string `yaml:"repository"`

	// Ref is the revision rule packs are read at.
	// Default: "HEAD"
	Ref string `yaml:"ref"`
}

// EngineConfig contains evaluation engine configuration.
type EngineConfig struct {
	// Workers is the number of clauses evaluated concurrently.
	// Default: 1
	Workers int `yaml:"workers"`

	// MaxMatchesPerRule caps the spans recorded per rule and clause
	// (0 = all).
	// Default: 0
	MaxMatchesPerRule int `yaml:"max_matches_per_rule"`

	// IncludeMatches records match spans on issues.
	// Default: true
	IncludeMatches bool `yaml:"include_matches"`

	// ExtractClauses splits contract content into clauses when a contract
	// has none.
	// Default: true
	ExtractClauses bool `yaml:"extract_clauses"`
}

// ContractsConfig selects the contract store.
type ContractsConfig struct {
	// Backend is the contract store.
	// Options: "memory", "file", "sqlite"
	// Default: "file"
	Backend string `yaml:"backend"`

	// Path is the contract document file or directory (file, memory) or
	// the database file (sqlite).
	// Default: "./contracts" (file, memory), "./data/contracts.db" (sqlite)
	Path string `yaml:"path"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite connection settings.
type SQLiteConfig struct {
	// Driver is the database/sql driver.
	// Options: "sqlite" (modernc.org/sqlite), "sqlite3" (mattn/go-sqlite3)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// BusyTimeout is how long to wait for a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// LibraryConfig locates the standard clause library.
type LibraryConfig struct {
	// Path is a YAML clause library. Empty disables alternatives.
	Path string `yaml:"path"`
}

// ReportConfig contains report output configuration.
type ReportConfig struct {
	// Format is the report format.
	// Options: "text", "json", "csv"
	// Default: "text"
	Format string `yaml:"format"`

	// OutputDir receives report files written by scheduled runs and by
	// evaluate --output.
	// Default: "./reports"
	OutputDir string `yaml:"output_dir"`
}

// ScheduleConfig configures periodic re-evaluation.
type ScheduleConfig struct {
	// Cron is a standard five-field cron expression. Empty disables
	// scheduled runs.
	// Example: "0 6 * * *" (daily at 6 AM)
	Cron string `yaml:"cron"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactText replaces clause and contract text in log fields.
	// Default: true
	RedactText bool `yaml:"redact_text"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "clausewatch"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "engine"
	Subsystem string `yaml:"subsystem"`

	// Textfile is written in Prometheus text format after each command
	// and scheduled run, for the node_exporter textfile collector.
	// Empty disables the export.
	Textfile string `yaml:"textfile"`

	// DurationBuckets defines histogram buckets for evaluation duration
	// (seconds).
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5]
	DurationBuckets []float64 `yaml:"duration_buckets"`

	// MaxRuleLabels caps the distinct rule_id label values; further rules
	// are counted as "other".
	// Default: 1000
	MaxRuleLabels int `yaml:"max_rule_labels"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS to the collector.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout bounds exporter calls.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service name in traces.
	// Default: "clausewatch"
	ServiceName string `yaml:"service_name"`
}
