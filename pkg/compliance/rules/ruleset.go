package rules

import (
	"crypto/sha256"
	"fmt"
	"time"

	"mercator-hq/clausewatch/pkg/contract"
)

// RuleSet is an immutable, ordered set of compiled rules. Order is
// insertion order and is the tie-break order for issue reporting.
//
// A RuleSet implements Store, so it can be handed to the engine directly
// when no mutation is needed.
type RuleSet struct {
	rules    []*CompiledRule
	active   []*CompiledRule
	index    map[string]int
	version  string
	loadedAt time.Time
}

// NewRuleSet validates and compiles rules. Every problem is reported: the
// returned error is an *ErrorList whose members are *ConfigurationError.
// A rule set with any invalid rule is never built.
func NewRuleSet(rules []Rule, opts CompileOptions) (*RuleSet, error) {
	errList := &ErrorList{}
	compiled := make([]*CompiledRule, 0, len(rules))
	seen := make(map[string]bool, len(rules))

	for i, r := range rules {
		cr, err := Compile(r, opts)
		if err != nil {
			if ce, ok := err.(*ConfigurationError); ok {
				ce.Index = i
			}
			errList.Add(err)
			continue
		}
		if seen[cr.ID()] {
			errList.Add(&ConfigurationError{
				RuleID:  cr.ID(),
				Index:   i,
				Field:   "id",
				Message: "id already defined",
				Cause:   ErrDuplicateRule,
			})
			continue
		}
		seen[cr.ID()] = true
		compiled = append(compiled, cr)
	}

	if err := errList.ToError(); err != nil {
		return nil, err
	}
	return newRuleSet(compiled), nil
}

// newRuleSet indexes already validated rules.
func newRuleSet(compiled []*CompiledRule) *RuleSet {
	s := &RuleSet{
		rules:    compiled,
		index:    make(map[string]int, len(compiled)),
		loadedAt: time.Now(),
	}
	for i, r := range compiled {
		s.index[r.ID()] = i
		if r.Active() {
			s.active = append(s.active, r)
		}
	}
	s.version = computeVersion(compiled)
	return s
}

// ListActive returns the active rules in insertion order.
func (s *RuleSet) ListActive() []*CompiledRule {
	return append([]*CompiledRule(nil), s.active...)
}

// All returns every rule, active or not, in insertion order.
func (s *RuleSet) All() []*CompiledRule {
	return append([]*CompiledRule(nil), s.rules...)
}

// Get returns the rule with the given ID, active or not.
func (s *RuleSet) Get(id string) (*CompiledRule, error) {
	i, ok := s.index[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return s.rules[i], nil
}

// Snapshot returns s.
func (s *RuleSet) Snapshot() *RuleSet {
	return s
}

// Len returns the number of rules.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// ActiveLen returns the number of active rules.
func (s *RuleSet) ActiveLen() int {
	return len(s.active)
}

// Version identifies the rule set content. It changes whenever a rule is
// added, removed, reordered, re-patterned, re-graded or toggled.
func (s *RuleSet) Version() string {
	return s.version
}

// LoadedAt returns when the rule set was built.
func (s *RuleSet) LoadedAt() time.Time {
	return s.loadedAt
}

// Stats summarises the rule set.
func (s *RuleSet) Stats() Stats {
	stats := Stats{
		Rules:      len(s.rules),
		Active:     len(s.active),
		Version:    s.version,
		LoadedAt:   s.loadedAt,
		BySeverity: make(map[contract.Severity]int),
	}
	for _, r := range s.active {
		stats.BySeverity[r.Severity()]++
	}
	return stats
}

// with returns a new rule set with rule i replaced by r.
func (s *RuleSet) with(i int, r *CompiledRule) *RuleSet {
	next := append([]*CompiledRule(nil), s.rules...)
	next[i] = r
	return newRuleSet(next)
}

// withAppended returns a new rule set with r added at the end.
func (s *RuleSet) withAppended(r *CompiledRule) *RuleSet {
	next := make([]*CompiledRule, 0, len(s.rules)+1)
	next = append(next, s.rules...)
	next = append(next, r)
	return newRuleSet(next)
}

// computeVersion hashes the evaluated fields of every rule, in order.
func computeVersion(compiled []*CompiledRule) string {
	h := sha256.New()
	for _, r := range compiled {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00%t\x00%s\n",
			r.ID(), r.Pattern(), r.Severity(), r.Active(), r.re.String())
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// Stats describes a rule set.
type Stats struct {
	Rules      int
	Active     int
	Version    string
	LoadedAt   time.Time
	BySeverity map[contract.Severity]int
}
