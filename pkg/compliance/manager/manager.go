package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"mercator-hq/clausewatch/pkg/compliance/rules"
	"mercator-hq/clausewatch/pkg/compliance/source"
	"mercator-hq/clausewatch/pkg/telemetry/tracing"
)

// Reload results reported to the MetricsRecorder.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// ErrNoWatchPath indicates Watch was called without a path to watch.
var ErrNoWatchPath = errors.New("no watch path configured")

// Options configures a Manager.
type Options struct {
	// Compile controls how rule patterns are compiled.
	Compile rules.CompileOptions

	// WatchPath is the file or directory Watch observes. Empty disables
	// file watching.
	WatchPath string

	// Debounce is the quiet period before a watched change triggers a reload.
	Debounce time.Duration
}

// DefaultOptions returns the default manager options.
func DefaultOptions() *Options {
	return &Options{
		Compile:  rules.DefaultCompileOptions(),
		Debounce: 250 * time.Millisecond,
	}
}

// MetricsRecorder receives rule loading measurements.
type MetricsRecorder interface {
	RecordRulesLoaded(active, inactive int)
	RecordReload(result string, duration time.Duration)
}

// SpanStarter starts trace spans.
type SpanStarter interface {
	Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// Option configures optional Manager collaborators.
type Option func(*Manager)

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(mgr *Manager) {
		if m != nil {
			mgr.metrics = m
		}
	}
}

// WithTracer sets the tracer used for reload spans.
func WithTracer(t SpanStarter) Option {
	return func(mgr *Manager) {
		if t != nil {
			mgr.tracer = t
		}
	}
}

// Status describes the rules currently installed.
type Status struct {
	PackName    string
	PackVersion string
	Origin      string
	Version     string
	RuleCount   int
	ActiveCount int
	LoadedAt    time.Time
	Reloads     int
	Failures    int
	LastError   error
}

// Manager loads rule packs from a source into a live rule store and keeps
// them current. A reload is all-or-nothing: when the new pack fails to load
// or compile, the previously installed rules stay in place.
type Manager struct {
	source  source.Source
	opts    *Options
	store   *rules.MemoryStore
	logger  *slog.Logger
	metrics MetricsRecorder
	tracer  SpanStarter

	// loadMu serialises loads so two reloads never interleave.
	loadMu sync.Mutex

	// State
	mu       sync.RWMutex
	pack     *source.Pack
	loaded   bool
	reloads  int
	failures int
	lastErr  error

	watchMu  sync.Mutex
	watching bool
}

// NewManager creates a rule manager. The store starts empty until Load.
func NewManager(src source.Source, opts *Options, logger *slog.Logger, options ...Option) (*Manager, error) {
	if src == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		source:  src,
		opts:    opts,
		store:   rules.NewMemoryStoreFromSet(nil, opts.Compile),
		logger:  logger,
		metrics: noopRecorder{},
		tracer:  noop.NewTracerProvider().Tracer("clausewatch/manager"),
	}
	for _, o := range options {
		o(m)
	}
	return m, nil
}

// Load performs the initial load. Unlike Reload, there is no previous rule
// set to fall back on, so a failure leaves the store empty.
func (m *Manager) Load(ctx context.Context) error {
	return m.apply(ctx, "load")
}

// Reload loads the source again and atomically installs the result.
// On failure the previous rules remain active and the error is returned.
func (m *Manager) Reload(ctx context.Context) error {
	return m.apply(ctx, "reload")
}

func (m *Manager) apply(ctx context.Context, op string) error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	start := time.Now()
	ctx, span := m.tracer.Start(ctx, "rules."+op)
	defer span.End()

	pack, set, err := m.build(ctx)
	duration := time.Since(start)
	if err != nil {
		m.mu.Lock()
		m.failures++
		m.lastErr = err
		m.mu.Unlock()

		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
		m.metrics.RecordReload(ResultFailure, duration)

		if op == "reload" {
			m.logger.Error("failed to reload rules, keeping previous rules",
				"error", err,
				"version", m.store.Snapshot().Version(),
				"duration_ms", duration.Milliseconds(),
			)
		} else {
			m.logger.Error("failed to load rules",
				"error", err,
				"duration_ms", duration.Milliseconds(),
			)
		}
		return err
	}

	m.store.Swap(set)

	m.mu.Lock()
	m.pack = pack
	m.loaded = true
	m.reloads++
	m.lastErr = nil
	m.mu.Unlock()

	stats := set.Stats()
	span.SetAttributes(
		attribute.String(tracing.AttrRulesVersion, stats.Version),
		attribute.Int(tracing.AttrRulesCount, stats.Rules),
		attribute.Int(tracing.AttrRulesActive, stats.Active),
	)
	m.metrics.RecordReload(ResultSuccess, duration)
	m.metrics.RecordRulesLoaded(stats.Active, stats.Rules-stats.Active)

	m.logger.Info("rules loaded",
		"pack", pack.Name,
		"origin", pack.Origin,
		"version", stats.Version,
		"count", stats.Rules,
		"active", stats.Active,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}

// build loads and compiles the source without touching the live store.
func (m *Manager) build(ctx context.Context) (*source.Pack, *rules.RuleSet, error) {
	pack, err := m.source.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	set, err := rules.NewRuleSet(pack.Rules, m.opts.Compile)
	if err != nil {
		return nil, nil, fmt.Errorf("rule pack %q: %w", pack.Origin, err)
	}
	return pack, set, nil
}

// Validate loads and compiles the source without installing anything.
func (m *Manager) Validate(ctx context.Context) (*rules.RuleSet, error) {
	_, set, err := m.build(ctx)
	return set, err
}

// Store returns the live rule store. It stays the same object across
// reloads, so an engine built on it always sees the current rules.
func (m *Manager) Store() *rules.MemoryStore {
	return m.store
}

// Pack returns the most recently installed pack, or nil before Load.
func (m *Manager) Pack() *source.Pack {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pack == nil {
		return nil
	}
	p := *m.pack
	p.Rules = append([]rules.Rule(nil), m.pack.Rules...)
	return &p
}

// Status reports the installed rules and reload history.
func (m *Manager) Status() Status {
	stats := m.store.Stats()

	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		Version:     stats.Version,
		RuleCount:   stats.Rules,
		ActiveCount: stats.Active,
		LoadedAt:    stats.LoadedAt,
		Reloads:     m.reloads,
		Failures:    m.failures,
		LastError:   m.lastErr,
	}
	if m.pack != nil {
		s.PackName = m.pack.Name
		s.PackVersion = m.pack.Version
		s.Origin = m.pack.Origin
	}
	if !m.loaded {
		s.LoadedAt = time.Time{}
	}
	return s
}

// Watch reloads rules whenever files under Options.WatchPath change. It
// blocks until ctx is cancelled.
func (m *Manager) Watch(ctx context.Context) error {
	if m.opts.WatchPath == "" {
		return ErrNoWatchPath
	}

	m.watchMu.Lock()
	if m.watching {
		m.watchMu.Unlock()
		return fmt.Errorf("watch already started")
	}
	m.watching = true
	m.watchMu.Unlock()

	defer func() {
		m.watchMu.Lock()
		m.watching = false
		m.watchMu.Unlock()
	}()

	cfg := DefaultFileWatcherConfig()
	cfg.Path = m.opts.WatchPath
	if m.opts.Debounce > 0 {
		cfg.DebounceInterval = m.opts.Debounce
	}

	watcher, err := NewFileWatcher(cfg, m.logger)
	if err != nil {
		return err
	}

	return watcher.Watch(ctx, func() error {
		return m.Reload(ctx)
	})
}

type noopRecorder struct{}

func (noopRecorder) RecordRulesLoaded(int, int)         {}
func (noopRecorder) RecordReload(string, time.Duration) {}
