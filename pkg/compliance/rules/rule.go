package rules

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"

	"mercator-hq/clausewatch/pkg/contract"
)

// Rule is a compliance rule as authored: a pattern over clause text mapped
// to a named regulatory concern. Guidance and the examples are advisory and
// never evaluated.
type Rule struct {
	ID                  string `json:"id" yaml:"id"`
	Name                string `json:"name" yaml:"name"`
	Description         string `json:"description,omitempty" yaml:"description,omitempty"`
	Regulation          string `json:"regulation,omitempty" yaml:"regulation,omitempty"`
	Category            string `json:"category,omitempty" yaml:"category,omitempty"`
	Severity            string `json:"severity" yaml:"severity"`
	Active              bool   `json:"active" yaml:"active"`
	Pattern             string `json:"pattern" yaml:"pattern"`
	Guidance            string `json:"guidance,omitempty" yaml:"guidance,omitempty"`
	NonCompliantExample string `json:"non_compliant_example,omitempty" yaml:"non_compliant_example,omitempty"`
	CompliantExample    string `json:"compliant_example,omitempty" yaml:"compliant_example,omitempty"`
}

// CompileOptions controls how rule patterns are compiled.
type CompileOptions struct {
	// CaseInsensitive compiles every pattern with the (?i) flag. Legal text
	// is often upper-cased, so stores are normally built with this set.
	CaseInsensitive bool
}

// DefaultCompileOptions returns the options used when none are configured.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{CaseInsensitive: true}
}

// CompiledRule is a validated rule: the authored record, its parsed
// severity and its compiled matcher. It is immutable and safe to share
// between goroutines.
type CompiledRule struct {
	rule     Rule
	severity contract.Severity
	re       *regexp.Regexp
}

// Compile validates a rule and compiles its pattern.
// Failures are returned as *ConfigurationError.
func Compile(r Rule, opts CompileOptions) (*CompiledRule, error) {
	if strings.TrimSpace(r.ID) == "" {
		return nil, &ConfigurationError{Field: "id", Message: "id is required"}
	}

	severity, err := contract.ParseSeverity(r.Severity)
	if err != nil {
		return nil, &ConfigurationError{RuleID: r.ID, Field: "severity", Message: "invalid severity", Cause: err}
	}

	if strings.TrimSpace(r.Pattern) == "" {
		return nil, &ConfigurationError{RuleID: r.ID, Field: "pattern", Message: "pattern is required"}
	}

	expr := r.Pattern
	if opts.CaseInsensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &ConfigurationError{RuleID: r.ID, Field: "pattern", Message: "invalid pattern", Cause: err}
	}

	// Zero-width matches (\b, x*, (a)?) would flag every clause with an
	// empty span.
	if width, err := minMatchWidth(expr); err != nil || width == 0 {
		return nil, &ConfigurationError{RuleID: r.ID, Field: "pattern", Message: "pattern can match empty text"}
	}

	return &CompiledRule{rule: r, severity: severity, re: re}, nil
}

// MustCompile is like Compile but panics on error. It is intended for
// rules built into programs and tests.
func MustCompile(r Rule, opts CompileOptions) *CompiledRule {
	cr, err := Compile(r, opts)
	if err != nil {
		panic(fmt.Sprintf("rules: Compile(%q): %v", r.ID, err))
	}
	return cr
}

// ID returns the rule identifier.
func (r *CompiledRule) ID() string { return r.rule.ID }

// Rule returns a copy of the authored rule record.
func (r *CompiledRule) Rule() Rule { return r.rule }

// Severity returns the parsed severity.
func (r *CompiledRule) Severity() contract.Severity { return r.severity }

// Active reports whether the rule takes part in evaluation.
func (r *CompiledRule) Active() bool { return r.rule.Active }

// Pattern returns the raw pattern as authored, for display.
func (r *CompiledRule) Pattern() string { return r.rule.Pattern }

// Regexp returns the compiled matcher.
func (r *CompiledRule) Regexp() *regexp.Regexp { return r.re }

// withActive returns a copy of the rule with the active flag set. The
// compiled matcher is shared; regexp.Regexp is safe for concurrent use.
func (r *CompiledRule) withActive(active bool) *CompiledRule {
	cp := *r
	cp.rule.Active = active
	return &cp
}

// minMatchWidth returns the fewest runes any match of expr can span.
func minMatchWidth(expr string) (int, error) {
	re, err := syntax.Parse(expr, syntax.Perl)
	if err != nil {
		return 0, err
	}
	return minWidth(re.Simplify()), nil
}

func minWidth(re *syntax.Regexp) int {
	switch re.Op {
	case syntax.OpLiteral:
		return len(re.Rune)
	case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL, syntax.OpNoMatch:
		return 1
	case syntax.OpCapture, syntax.OpPlus:
		return minWidth(re.Sub[0])
	case syntax.OpRepeat:
		return re.Min * minWidth(re.Sub[0])
	case syntax.OpConcat:
		n := 0
		for _, sub := range re.Sub {
			n += minWidth(sub)
		}
		return n
	case syntax.OpAlternate:
		n := -1
		for _, sub := range re.Sub {
			if w := minWidth(sub); n < 0 || w < n {
				n = w
			}
		}
		return max(n, 0)
	default:
		// Empty match, anchors, word boundaries, star and quest.
		return 0
	}
}
