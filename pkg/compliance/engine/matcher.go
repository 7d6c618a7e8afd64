package engine

import (
	"mercator-hq/clausewatch/pkg/compliance/rules"
	"mercator-hq/clausewatch/pkg/contract"
)

// Matcher locates a rule's pattern in clause text.
type Matcher interface {
	// Match returns every non-overlapping occurrence of the rule's pattern
	// in text, leftmost first. It returns nil when there is none.
	Match(text string, rule *rules.CompiledRule) []contract.MatchSpan
}

// RegexMatcher matches with the rule's compiled regular expression.
// Patterns were validated when the rule was compiled, so matching cannot fail.
type RegexMatcher struct {
	maxMatches int
}

// NewRegexMatcher creates a matcher that records at most maxMatches spans
// per call. maxMatches <= 0 records all of them.
func NewRegexMatcher(maxMatches int) *RegexMatcher {
	return &RegexMatcher{maxMatches: maxMatches}
}

// Match implements Matcher.
func (m *RegexMatcher) Match(text string, rule *rules.CompiledRule) []contract.MatchSpan {
	if rule == nil || text == "" {
		return nil
	}

	limit := -1
	if m.maxMatches > 0 {
		limit = m.maxMatches
	}

	locs := rule.Regexp().FindAllStringIndex(text, limit)
	if len(locs) == 0 {
		return nil
	}

	spans := make([]contract.MatchSpan, len(locs))
	for i, loc := range locs {
		spans[i] = contract.MatchSpan{
			Start: loc[0],
			End:   loc[1],
			Text:  text[loc[0]:loc[1]],
		}
	}
	return spans
}
