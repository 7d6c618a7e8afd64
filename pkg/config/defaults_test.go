package config

import "testing"

func TestApplyDefaults_ContractPathFollowsBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    string
	}{
		{"file", DefaultContractsPath},
		{"sqlite", DefaultContractsSQLitePath},
		{"memory", ""},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &Config{Contracts: ContractsConfig{Backend: tt.backend}}
			ApplyDefaults(cfg)
			if cfg.Contracts.Path != tt.want {
				t.Errorf("path = %q, want %q", cfg.Contracts.Path, tt.want)
			}
		})
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Engine:    EngineConfig{Workers: 3},
		Report:    ReportConfig{Format: "csv"},
		Telemetry: TelemetryConfig{Metrics: MetricsConfig{DurationBuckets: []float64{1}}},
	}
	ApplyDefaults(cfg)

	if cfg.Engine.Workers != 3 {
		t.Errorf("workers = %d, want 3", cfg.Engine.Workers)
	}
	if cfg.Report.Format != "csv" {
		t.Errorf("format = %q, want csv", cfg.Report.Format)
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) != 1 {
		t.Errorf("buckets = %v, want [1]", cfg.Telemetry.Metrics.DurationBuckets)
	}
}

func TestDefaultConfig_BucketsAreCopied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telemetry.Metrics.DurationBuckets[0] = 42
	if DefaultDurationBuckets[0] == 42 {
		t.Error("DefaultConfig shares the default bucket slice")
	}
}
