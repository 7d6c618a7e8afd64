package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		fields []string
	}{
		{
			name:   "unknown rule source",
			modify: func(c *Config) { c.Rules.Source = "s3" },
			fields: []string{"rules.source"},
		},
		{
			name:   "file source without path",
			modify: func(c *Config) { c.Rules.Path = "" },
			fields: []string{"rules.path"},
		},
		{
			name: "git source without repository",
			modify: func(c *Config) {
				c.Rules.Source = "git"
				c.Rules.Git.Repository = ""
			},
			fields: []string{"rules.git.repository"},
		},
		{
			name: "negative limits",
			modify: func(c *Config) {
				c.Rules.Debounce = -1
				c.Rules.MaxFileSize = 0
				c.Engine.MaxMatchesPerRule = -1
			},
			fields: []string{"rules.debounce", "rules.max_file_size", "engine.max_matches_per_rule"},
		},
		{
			name:   "too many workers",
			modify: func(c *Config) { c.Engine.Workers = 257 },
			fields: []string{"engine.workers"},
		},
		{
			name: "sqlite driver",
			modify: func(c *Config) {
				c.Contracts.Backend = "sqlite"
				c.Contracts.SQLite.Driver = "postgres"
			},
			fields: []string{"contracts.sqlite.driver"},
		},
		{
			name: "memory backend needs no path",
			modify: func(c *Config) {
				c.Contracts.Backend = "memory"
				c.Contracts.Path = ""
			},
		},
		{
			name: "logging",
			modify: func(c *Config) {
				c.Telemetry.Logging.Level = "trace"
				c.Telemetry.Logging.Format = "xml"
			},
			fields: []string{"telemetry.logging.level", "telemetry.logging.format"},
		},
		{
			name:   "unsorted buckets",
			modify: func(c *Config) { c.Telemetry.Metrics.DurationBuckets = []float64{1, 0.5} },
			fields: []string{"telemetry.metrics.duration_buckets"},
		},
		{
			name: "buckets ignored when metrics disabled",
			modify: func(c *Config) {
				c.Telemetry.Metrics.Enabled = false
				c.Telemetry.Metrics.DurationBuckets = []float64{1, 0.5}
			},
		},
		{
			name: "tracing",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Endpoint = ""
				c.Telemetry.Tracing.Sampler = "sometimes"
				c.Telemetry.Tracing.SampleRatio = 1.5
			},
			fields: []string{"telemetry.tracing.endpoint", "telemetry.tracing.sampler", "telemetry.tracing.sample_ratio"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)

			if len(tt.fields) == 0 {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			got := make([]string, len(verr.Errors))
			for i, fe := range verr.Errors {
				got[i] = fe.Field
			}
			if strings.Join(got, ",") != strings.Join(tt.fields, ",") {
				t.Errorf("fields = %v, want %v", got, tt.fields)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("unexpected single error message %q", got)
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	got := multi.Error()
	if !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: worse\n") {
		t.Errorf("unexpected multi error message %q", got)
	}
}
