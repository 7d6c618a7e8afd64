package rules

import (
	"sync"
)

// Store provides read access to compliance rules.
//
// Implementations must never modify a RuleSet or CompiledRule after handing
// it out, so results computed from an earlier snapshot stay valid after the
// store changes.
type Store interface {
	// ListActive returns the active rules in insertion order.
	ListActive() []*CompiledRule

	// Get returns a rule by ID or an error matching ErrNotFound.
	Get(id string) (*CompiledRule, error)

	// Snapshot returns the current immutable rule set.
	Snapshot() *RuleSet
}

// MemoryStore is a mutable rule store backed by copy-on-write rule sets.
// Every mutation builds a new RuleSet and swaps it in; readers holding an
// older snapshot are unaffected.
type MemoryStore struct {
	mu      sync.RWMutex
	current *RuleSet
	opts    CompileOptions
}

// NewMemoryStore compiles rules into a new store. It fails with an
// *ErrorList of *ConfigurationError when any rule is invalid.
func NewMemoryStore(rules []Rule, opts CompileOptions) (*MemoryStore, error) {
	set, err := NewRuleSet(rules, opts)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{current: set, opts: opts}, nil
}

// NewMemoryStoreFromSet wraps an already built rule set.
func NewMemoryStoreFromSet(set *RuleSet, opts CompileOptions) *MemoryStore {
	if set == nil {
		set = newRuleSet(nil)
	}
	return &MemoryStore{current: set, opts: opts}
}

// ListActive returns the active rules in insertion order.
func (s *MemoryStore) ListActive() []*CompiledRule {
	return s.Snapshot().ListActive()
}

// Get returns a rule by ID, active or not.
func (s *MemoryStore) Get(id string) (*CompiledRule, error) {
	return s.Snapshot().Get(id)
}

// Snapshot returns the current rule set.
func (s *MemoryStore) Snapshot() *RuleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Add compiles a rule and appends it to the store.
func (s *MemoryStore) Add(r Rule) error {
	cr, err := Compile(r, s.opts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.current.index[cr.ID()]; exists {
		return &ConfigurationError{
			RuleID:  cr.ID(),
			Index:   s.current.Len(),
			Field:   "id",
			Message: "id already defined",
			Cause:   ErrDuplicateRule,
		}
	}
	s.current = s.current.withAppended(cr)
	return nil
}

// Deactivate excludes a rule from evaluation. The rule stays in the store.
func (s *MemoryStore) Deactivate(id string) error {
	return s.setActive(id, false)
}

// Activate re-enables a deactivated rule.
func (s *MemoryStore) Activate(id string) error {
	return s.setActive(id, true)
}

func (s *MemoryStore) setActive(id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.current.index[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	r := s.current.rules[i]
	if r.Active() == active {
		return nil
	}
	s.current = s.current.with(i, r.withActive(active))
	return nil
}

// Replace atomically replaces every rule. On error the store is unchanged.
func (s *MemoryStore) Replace(rules []Rule) error {
	set, err := NewRuleSet(rules, s.opts)
	if err != nil {
		return err
	}
	s.Swap(set)
	return nil
}

// Swap installs a prebuilt rule set and returns the previous one.
func (s *MemoryStore) Swap(set *RuleSet) *RuleSet {
	if set == nil {
		set = newRuleSet(nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.current = set
	return prev
}

// Options returns the compile options used for new rules.
func (s *MemoryStore) Options() CompileOptions {
	return s.opts
}

// Stats summarises the current rule set.
func (s *MemoryStore) Stats() Stats {
	return s.Snapshot().Stats()
}
