// Package config provides configuration management for clausewatch.
//
// Configuration is loaded from a YAML file, decoded over the defaults and
// validated. Every field error is collected into one ValidationError.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("clausewatch.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("clausewatch.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CLAUSEWATCH_SECTION_FIELD:
//
//   - CLAUSEWATCH_RULES_PATH overrides rules.path
//   - CLAUSEWATCH_CONTRACTS_BACKEND overrides contracts.backend
//   - CLAUSEWATCH_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
package config
