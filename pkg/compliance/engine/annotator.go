package engine

import (
	"sort"

	"mercator-hq/clausewatch/pkg/compliance/rules"
	"mercator-hq/clausewatch/pkg/contract"
)

// RuleOutcome records whether one rule fired on one clause.
type RuleOutcome struct {
	RuleID  string
	Matched bool
	Matches int
}

// Annotator turns rule matches into clause issues.
type Annotator struct {
	matcher        Matcher
	includeMatches bool
}

// NewAnnotator creates an annotator. A nil matcher uses a RegexMatcher that
// records every span.
func NewAnnotator(matcher Matcher, includeMatches bool) *Annotator {
	if matcher == nil {
		matcher = NewRegexMatcher(0)
	}
	return &Annotator{matcher: matcher, includeMatches: includeMatches}
}

// Annotate returns a copy of clause with its issues recomputed against the
// given active rules. Rules must be in store order.
//
// Each rule that matches contributes exactly one issue, however many times
// it matches. Issues are ordered by severity, high first, and rules of equal
// severity keep store order. Issues already on the input clause are
// discarded. Text, identity and any suggested revision are carried over
// unchanged.
func (a *Annotator) Annotate(clause contract.Clause, active []*rules.CompiledRule) (contract.Clause, []RuleOutcome) {
	out := clause.Clone()
	out.Issues = make([]contract.ClauseIssue, 0)
	outcomes := make([]RuleOutcome, 0, len(active))

	for _, r := range active {
		spans := a.matcher.Match(clause.Text, r)
		outcomes = append(outcomes, RuleOutcome{RuleID: r.ID(), Matched: len(spans) > 0, Matches: len(spans)})
		if len(spans) == 0 {
			continue
		}
		out.Issues = append(out.Issues, a.newIssue(r, spans))
	}

	sortIssues(out.Issues)
	out.Recompute()
	return out, outcomes
}

func (a *Annotator) newIssue(r *rules.CompiledRule, spans []contract.MatchSpan) contract.ClauseIssue {
	rule := r.Rule()
	issue := contract.ClauseIssue{
		RuleID:              rule.ID,
		Title:               rule.Name,
		Description:         rule.Description,
		Severity:            r.Severity(),
		Regulation:          rule.Regulation,
		Category:            rule.Category,
		Guidance:            rule.Guidance,
		CompliantExample:    rule.CompliantExample,
		NonCompliantExample: rule.NonCompliantExample,
	}
	if issue.Title == "" {
		issue.Title = rule.ID
	}
	if a.includeMatches {
		issue.Matches = spans
	}
	return issue
}

// sortIssues orders issues by severity, high first. The sort is stable so
// issues created in store order keep it within a severity.
func sortIssues(issues []contract.ClauseIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity.Rank() < issues[j].Severity.Rank()
	})
}
