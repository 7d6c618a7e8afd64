package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"mercator-hq/clausewatch/pkg/compliance/rules"
	"mercator-hq/clausewatch/pkg/contract"
	"mercator-hq/clausewatch/pkg/telemetry/tracing"
)

// Evaluator evaluates contracts against the active compliance rules.
type Evaluator interface {
	// Evaluate returns an annotated copy of the contract. The input is not
	// modified.
	Evaluate(ctx context.Context, c *contract.Contract) (*contract.Contract, error)

	// EvaluateClause returns an annotated copy of a single clause.
	EvaluateClause(ctx context.Context, clause contract.Clause) (contract.Clause, error)
}

// MetricsRecorder receives evaluation measurements.
type MetricsRecorder interface {
	RecordEvaluation(outcome string, clauses int, duration time.Duration)
	RecordRuleOutcome(ruleID string, matched bool)
	RecordIssue(severity string)
}

// SpanStarter starts trace spans. Both trace.Tracer and the telemetry
// tracer satisfy it.
type SpanStarter interface {
	Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// Evaluation outcomes reported to the MetricsRecorder.
const (
	OutcomeSuccess   = "success"
	OutcomeCancelled = "cancelled"
)

// Result is a completed evaluation together with the rule set it ran under.
type Result struct {
	Contract       *contract.Contract
	RuleSetVersion string
	RulesEvaluated int
	EvaluatedAt    time.Time
	Duration       time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithTracer sets the tracer used for evaluation spans.
func WithTracer(t SpanStarter) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithMatcher replaces the default regular expression matcher.
func WithMatcher(m Matcher) Option {
	return func(e *Engine) {
		if m != nil {
			e.matcher = m
		}
	}
}

// Engine evaluates contracts clause by clause against a rule store.
// It is safe for concurrent use.
type Engine struct {
	// Rule source. Each evaluation reads one snapshot of it.
	store rules.Store

	// Matching and issue construction
	matcher   Matcher
	annotator *Annotator

	// Configuration
	config *EngineConfig

	// Observability
	logger  *slog.Logger
	metrics MetricsRecorder
	tracer  SpanStarter
}

// New creates an evaluation engine reading rules from store.
func New(config *EngineConfig, store rules.Store, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrNoRuleStore
	}
	if config == nil {
		config = DefaultEngineConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		store:   store,
		matcher: NewRegexMatcher(config.MaxMatchesPerRule),
		config:  config,
		logger:  logger,
		metrics: noopRecorder{},
		tracer:  noop.NewTracerProvider().Tracer("clausewatch/engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.annotator = NewAnnotator(e.matcher, config.IncludeMatches)

	return e, nil
}

// Evaluate implements Evaluator.
func (e *Engine) Evaluate(ctx context.Context, c *contract.Contract) (*contract.Contract, error) {
	result, err := e.EvaluateDetailed(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Contract, nil
}

// EvaluateDetailed evaluates a contract and reports which rule set version
// produced the result.
//
// One rule set snapshot serves every clause of the contract, so a reload
// that lands mid-evaluation does not mix rule sets. When the contract has
// no clauses and extraction is enabled, clauses are extracted from its
// content first. Cancellation is checked before each clause; a cancelled
// evaluation returns an error and no partial contract.
func (e *Engine) EvaluateDetailed(ctx context.Context, c *contract.Contract) (*Result, error) {
	if c == nil {
		return nil, ErrNilContract
	}

	set := e.store.Snapshot()
	if set == nil {
		return nil, ErrNoRuleStore
	}

	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "compliance.evaluate",
		trace.WithAttributes(
			attribute.String(tracing.AttrContractID, c.ID),
			attribute.String(tracing.AttrRulesVersion, set.Version()),
		))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, e.abandon(span, c.ID, start, err)
	}

	clauses := c.Clauses
	if len(clauses) == 0 && e.config.ExtractClauses && strings.TrimSpace(c.Content) != "" {
		clauses = contract.ExtractClauses(c.Content)
		e.logger.DebugContext(ctx, "extracted clauses from contract content",
			"contract_id", c.ID,
			"clauses", len(clauses),
		)
	}

	active := set.ListActive()
	annotated, outcomes, err := e.annotateAll(ctx, clauses, active)
	if err != nil {
		return nil, e.abandon(span, c.ID, start, err)
	}

	out := c.CloneMetadata()
	out.Clauses = annotated
	out.Status = contract.StatusAnalyzed
	out.Compliance = contract.ComplianceFor(annotated)

	duration := time.Since(start)
	e.record(annotated, outcomes, duration)

	span.SetAttributes(
		attribute.Int(tracing.AttrClausesCount, len(annotated)),
		attribute.Int(tracing.AttrIssuesCount, out.IssueCount()),
		attribute.String(tracing.AttrContractCompliance, out.Compliance),
	)

	e.logger.DebugContext(ctx, "contract evaluated",
		"contract_id", c.ID,
		"rule_set_version", set.Version(),
		"clauses", len(annotated),
		"issues", out.IssueCount(),
		"compliance", out.Compliance,
		"duration_ms", duration.Milliseconds(),
	)

	return &Result{
		Contract:       out,
		RuleSetVersion: set.Version(),
		RulesEvaluated: len(active),
		EvaluatedAt:    start,
		Duration:       duration,
	}, nil
}

// EvaluateClause implements Evaluator.
func (e *Engine) EvaluateClause(ctx context.Context, clause contract.Clause) (contract.Clause, error) {
	if err := ctx.Err(); err != nil {
		return contract.Clause{}, err
	}
	set := e.store.Snapshot()
	if set == nil {
		return contract.Clause{}, ErrNoRuleStore
	}

	out, outcomes := e.annotateClause(ctx, clause, set.ListActive())
	for _, o := range outcomes {
		e.metrics.RecordRuleOutcome(o.RuleID, o.Matched)
	}
	for _, issue := range out.Issues {
		e.metrics.RecordIssue(string(issue.Severity))
	}
	return out, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *EngineConfig {
	return e.config
}

// annotateAll annotates clauses in input order. With more than one worker
// clauses are annotated concurrently but results keep their input positions.
func (e *Engine) annotateAll(ctx context.Context, clauses []contract.Clause, active []*rules.CompiledRule) ([]contract.Clause, [][]RuleOutcome, error) {
	out := make([]contract.Clause, len(clauses))
	outcomes := make([][]RuleOutcome, len(clauses))

	workers := e.config.Workers
	if workers > len(clauses) {
		workers = len(clauses)
	}

	if workers <= 1 {
		for i, clause := range clauses {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			out[i], outcomes[i] = e.annotateClause(ctx, clause, active)
		}
		return out, outcomes, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i], outcomes[i] = e.annotateClause(ctx, clauses[i], active)
			}
		}()
	}

	var err error
feed:
	for i := range clauses {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, nil, err
	}
	return out, outcomes, nil
}

func (e *Engine) annotateClause(ctx context.Context, clause contract.Clause, active []*rules.CompiledRule) (contract.Clause, []RuleOutcome) {
	_, span := e.tracer.Start(ctx, "compliance.clause",
		trace.WithAttributes(attribute.String(tracing.AttrClauseID, clause.ID)))
	defer span.End()

	out, outcomes := e.annotator.Annotate(clause, active)
	span.SetAttributes(attribute.Int(tracing.AttrIssuesCount, len(out.Issues)))
	return out, outcomes
}

func (e *Engine) record(clauses []contract.Clause, outcomes [][]RuleOutcome, duration time.Duration) {
	e.metrics.RecordEvaluation(OutcomeSuccess, len(clauses), duration)
	for _, perClause := range outcomes {
		for _, o := range perClause {
			e.metrics.RecordRuleOutcome(o.RuleID, o.Matched)
		}
	}
	for _, clause := range clauses {
		for _, issue := range clause.Issues {
			e.metrics.RecordIssue(string(issue.Severity))
		}
	}
}

func (e *Engine) abandon(span trace.Span, contractID string, start time.Time, cause error) error {
	span.RecordError(cause)
	span.SetStatus(codes.Error, "evaluation cancelled")
	e.metrics.RecordEvaluation(OutcomeCancelled, 0, time.Since(start))
	e.logger.Warn("contract evaluation cancelled",
		"contract_id", contractID,
		"error", cause,
	)
	return &EvaluationError{ContractID: contractID, Message: "evaluation cancelled", Cause: cause}
}

type noopRecorder struct{}

func (noopRecorder) RecordEvaluation(string, int, time.Duration) {}
func (noopRecorder) RecordRuleOutcome(string, bool)              {}
func (noopRecorder) RecordIssue(string)                          {}
