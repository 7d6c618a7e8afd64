package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/clausewatch/pkg/cli"
	"mercator-hq/clausewatch/pkg/compliance/engine"
	"mercator-hq/clausewatch/pkg/compliance/manager"
	"mercator-hq/clausewatch/pkg/compliance/rules"
	"mercator-hq/clausewatch/pkg/compliance/source"
	"mercator-hq/clausewatch/pkg/config"
	"mercator-hq/clausewatch/pkg/contract"
	"mercator-hq/clausewatch/pkg/contract/storage"
	"mercator-hq/clausewatch/pkg/telemetry/logging"
	"mercator-hq/clausewatch/pkg/telemetry/metrics"
	"mercator-hq/clausewatch/pkg/telemetry/tracing"
)

// Run results reported to the metrics collector.
const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// app holds the components built from configuration. Commands create the
// parts they need and call shutdown when done.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer

	rules   *manager.Manager
	engine  *engine.Engine
	store   contract.Store
	library *contract.Library
}

// loadConfig reads the configuration file named by --config, or
// ./clausewatch.yaml when present, applies environment overrides and then
// the logging flags.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}

	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if logFormat != "" {
		cfg.Telemetry.Logging.Format = logFormat
	}
	return cfg, nil
}

// newApp loads configuration and sets up logging, metrics and tracing.
// Logs go to the command's error stream.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	lg, err := logging.New(logging.Config{
		Level:      cfg.Telemetry.Logging.Level,
		Format:     cfg.Telemetry.Logging.Format,
		AddSource:  cfg.Telemetry.Logging.AddSource,
		RedactText: cfg.Telemetry.Logging.RedactText,
		Writer:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger := lg.Slog()
	slog.SetDefault(logger)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}

	return &app{
		cfg:     cfg,
		log:     lg,
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		tracer:  tracer,
	}, nil
}

// newRuleSource builds the configured rule pack source.
func newRuleSource(cfg *config.Config, logger *slog.Logger) (source.Source, error) {
	files := source.DefaultFileConfig()
	files.MaxFileSize = cfg.Rules.MaxFileSize

	switch cfg.Rules.Source {
	case "git":
		return source.NewGitSource(source.GitConfig{
			Repository: cfg.Rules.Git.Repository,
			Ref:        cfg.Rules.Git.Ref,
			Path:       cfg.Rules.Path,
		}, files, logger)
	default:
		return source.NewFileSource(cfg.Rules.Path, files, logger), nil
	}
}

func compileOptions(cfg *config.Config) rules.CompileOptions {
	return rules.CompileOptions{CaseInsensitive: cfg.Rules.CaseInsensitive}
}

// loadRules creates the rule manager and loads the rule pack.
func (a *app) loadRules(ctx context.Context) error {
	src, err := newRuleSource(a.cfg, a.logger)
	if err != nil {
		return cli.NewConfigError("rules", err.Error())
	}

	opts := &manager.Options{
		Compile:  compileOptions(a.cfg),
		Debounce: a.cfg.Rules.Debounce,
	}
	if a.cfg.Rules.Watch && a.cfg.Rules.Source != "git" {
		opts.WatchPath = a.cfg.Rules.Path
	}

	mgr, err := manager.NewManager(src, opts, a.logger,
		manager.WithMetrics(a.metrics),
		manager.WithTracer(a.tracer),
	)
	if err != nil {
		return cli.NewConfigError("rules", err.Error())
	}
	if err := mgr.Load(ctx); err != nil {
		return cli.NewCommandError("load rules", err)
	}
	a.rules = mgr
	return nil
}

// newEngine creates the evaluator over the loaded rules. loadRules must
// have succeeded.
func (a *app) newEngine() error {
	cfg := &engine.EngineConfig{
		Workers:           a.cfg.Engine.Workers,
		MaxMatchesPerRule: a.cfg.Engine.MaxMatchesPerRule,
		IncludeMatches:    a.cfg.Engine.IncludeMatches,
		ExtractClauses:    a.cfg.Engine.ExtractClauses,
	}
	eng, err := engine.New(cfg, a.rules.Store(), a.logger,
		engine.WithMetrics(a.metrics),
		engine.WithTracer(a.tracer),
	)
	if err != nil {
		return cli.NewConfigError("engine", err.Error())
	}
	a.engine = eng
	return nil
}

// storageConfig maps the contracts section to a storage configuration.
func storageConfig(cfg *config.Config) storage.Config {
	c := cfg.Contracts
	sc := storage.Config{Backend: c.Backend, Path: c.Path}
	if c.Backend == storage.BackendSQLite {
		sc.SQLite = &storage.SQLiteConfig{
			Path:        c.Path,
			Driver:      c.SQLite.Driver,
			BusyTimeout: c.SQLite.BusyTimeout,
		}
	}
	return sc
}

// openStore opens the configured contract store.
func (a *app) openStore() error {
	store, err := storage.New(storageConfig(a.cfg), a.logger)
	if err != nil {
		return cli.NewCommandError("open contracts", err)
	}
	a.store = store
	return nil
}

// loadLibrary loads the standard clause library.
func (a *app) loadLibrary() error {
	if a.cfg.Library.Path == "" {
		return cli.NewConfigError("library.path", "no clause library configured")
	}
	lib, err := contract.LoadLibrary(a.cfg.Library.Path)
	if err != nil {
		return cli.NewCommandError("load library", err)
	}
	a.library = lib
	return nil
}

// startSpan starts the root span of a command, continuing any trace passed
// in through TRACEPARENT.
func (a *app) startSpan(ctx context.Context, command string) (context.Context, trace.Span) {
	ctx = tracing.ExtractFromEnv(ctx)
	return a.tracer.Start(ctx, "cli."+command,
		tracing.NewAttributeBuilder().WithCommand(command).Build(),
	)
}

// shutdown closes the contract store, writes the metrics textfile and
// flushes spans and logs. Failures are logged.
func (a *app) shutdown() {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	errs = append(errs, a.metrics.WriteTextfile(a.cfg.Telemetry.Metrics.Textfile))

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Telemetry.Tracing.Timeout)
	errs = append(errs, a.tracer.Shutdown(ctx))
	cancel()

	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown incomplete", "error", err)
	}
	_ = a.log.Shutdown()
}

// commandContext returns the command's context, or a background context
// when the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// writeOutput renders data to the command's output stream in format.
func writeOutput(cmd *cobra.Command, format string, data interface{}) error {
	f, err := cli.ParseOutputFormat(format)
	if err != nil {
		return err
	}
	return cli.NewFormatter(f).FormatTo(cmd.OutOrStdout(), data)
}
