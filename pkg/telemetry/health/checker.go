package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Check statuses.
const (
	StatusOK        = "ok"
	StatusUnhealthy = "unhealthy"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
)

// CheckFunc checks one component. It returns nil if the component is usable.
type CheckFunc func(ctx context.Context) error

// CheckResult is the result of a single check.
type CheckResult struct {
	// Name is the component the check covers
	Name string `json:"name"`

	// Status is "ok" or "unhealthy"
	Status string `json:"status"`

	// Message describes the failure
	Message string `json:"message,omitempty"`

	// Duration is how long the check took
	Duration time.Duration `json:"duration_ns"`
}

// Status is the aggregate result of every registered check.
type Status struct {
	// Status is "ready" when every check passed, otherwise "degraded"
	Status string `json:"status"`

	// Checks holds individual results ordered by name
	Checks []CheckResult `json:"checks"`

	// Timestamp is when the checks ran
	Timestamp time.Time `json:"timestamp"`
}

// Ready reports whether every check passed.
func (s Status) Ready() bool {
	return s.Status == StatusReady
}

// Checker runs named checks against the configured components: rule
// source, contract store, clause library and report directory.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	// Timeout for individual checks
	checkTimeout time.Duration
}

// ErrCheckTimeout is reported when a check does not finish in time.
var ErrCheckTimeout = errors.New("check timeout")

// New creates a checker. A zero timeout defaults to 5 seconds per check.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}

	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// RegisterCheck registers a check, replacing any check with the same name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = check
}

// Run executes every registered check concurrently. With no checks
// registered the result is ready.
func (c *Checker) Run(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	results := make([]CheckResult, 0, len(checks))
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			result := c.runCheck(ctx, check)
			result.Name = name

			resultMu.Lock()
			results = append(results, result)
			resultMu.Unlock()
		}(name, check)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	status := StatusReady
	for _, result := range results {
		if result.Status == StatusUnhealthy {
			status = StatusDegraded
		}
	}

	return Status{
		Status:    status,
		Checks:    results,
		Timestamp: time.Now(),
	}
}

// runCheck executes a single check with timeout.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()

	// Run check in goroutine to support timeout
	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		duration := time.Since(start)
		if err != nil {
			return CheckResult{
				Status:   StatusUnhealthy,
				Message:  err.Error(),
				Duration: duration,
			}
		}
		return CheckResult{
			Status:   StatusOK,
			Duration: duration,
		}

	case <-checkCtx.Done():
		return CheckResult{
			Status:   StatusUnhealthy,
			Message:  ErrCheckTimeout.Error(),
			Duration: time.Since(start),
		}
	}
}

// ListChecks returns the registered check names in order.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
