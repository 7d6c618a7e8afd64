package config

import "time"

// Default values for configuration fields.
const (
	// Rules defaults
	DefaultRulesSource          = "file"
	DefaultRulesPath            = "./rules"
	DefaultRulesGitRepository   = "."
	DefaultRulesGitRef          = "HEAD"
	DefaultRulesCaseInsensitive = true
	DefaultRulesDebounce        = 250 * time.Millisecond
	DefaultRulesMaxFileSize     = int64(10 * 1024 * 1024)

	// Engine defaults
	DefaultEngineWorkers        = 1
	DefaultEngineIncludeMatches = true
	DefaultEngineExtract        = true

	// Contracts defaults
	DefaultContractsBackend     = "file"
	DefaultContractsPath        = "./contracts"
	DefaultContractsSQLitePath  = "./data/contracts.db"
	DefaultSQLiteDriver         = "sqlite"
	DefaultSQLiteBusyTimeout    = 5 * time.Second

	// Report defaults
	DefaultReportFormat    = "text"
	DefaultReportOutputDir = "./reports"

	// Telemetry defaults
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultLogRedactText      = true
	DefaultMetricsEnabled     = true
	DefaultMetricsNamespace   = "clausewatch"
	DefaultMetricsSubsystem   = "engine"
	DefaultMetricsRuleLabels  = 1000
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingInsecure    = true
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingServiceName = "clausewatch"
)

// DefaultDurationBuckets are the evaluation duration histogram buckets in
// seconds.
var DefaultDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// DefaultConfig returns a configuration with every default applied.
// Boolean defaults are only set here: LoadConfig decodes the file over
// this value, so a boolean left out of the file keeps its default.
func DefaultConfig() *Config {
	cfg := &Config{
		Rules: RulesConfig{
			CaseInsensitive: DefaultRulesCaseInsensitive,
		},
		Engine: EngineConfig{
			IncludeMatches: DefaultEngineIncludeMatches,
			ExtractClauses: DefaultEngineExtract,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactText: DefaultLogRedactText},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{Insecure: DefaultTracingInsecure},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset non-boolean field with its default.
func ApplyDefaults(cfg *Config) {
	// Rules defaults
	if cfg.Rules.Source == "" {
		cfg.Rules.Source = DefaultRulesSource
	}
	if cfg.Rules.Path == "" && cfg.Rules.Source == "file" {
		cfg.Rules.Path = DefaultRulesPath
	}
	if cfg.Rules.Git.Repository == "" {
		cfg.Rules.Git.Repository = DefaultRulesGitRepository
	}
	if cfg.Rules.Git.Ref == "" {
		cfg.Rules.Git.Ref = DefaultRulesGitRef
	}
	if cfg.Rules.Debounce == 0 {
		cfg.Rules.Debounce = DefaultRulesDebounce
	}
	if cfg.Rules.MaxFileSize == 0 {
		cfg.Rules.MaxFileSize = DefaultRulesMaxFileSize
	}

	// Engine defaults
	if cfg.Engine.Workers == 0 {
		cfg.Engine.Workers = DefaultEngineWorkers
	}

	// Contracts defaults
	if cfg.Contracts.Backend == "" {
		cfg.Contracts.Backend = DefaultContractsBackend
	}
	if cfg.Contracts.Path == "" {
		switch cfg.Contracts.Backend {
		case "sqlite":
			cfg.Contracts.Path = DefaultContractsSQLitePath
		case "file":
			cfg.Contracts.Path = DefaultContractsPath
		}
	}
	if cfg.Contracts.SQLite.Driver == "" {
		cfg.Contracts.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.Contracts.SQLite.BusyTimeout == 0 {
		cfg.Contracts.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// Report defaults
	if cfg.Report.Format == "" {
		cfg.Report.Format = DefaultReportFormat
	}
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = DefaultReportOutputDir
	}

	// Logging defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}

	// Metrics defaults
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if cfg.Telemetry.Metrics.MaxRuleLabels == 0 {
		cfg.Telemetry.Metrics.MaxRuleLabels = DefaultMetricsRuleLabels
	}

	// Tracing defaults
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 && cfg.Telemetry.Tracing.Sampler != "ratio" {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}
