package report

import (
	"time"

	"github.com/google/uuid"

	"mercator-hq/clausewatch/pkg/compliance/engine"
	"mercator-hq/clausewatch/pkg/contract"
)

// Report is the outcome of evaluating one contract.
type Report struct {
	ID             string             `json:"id"`
	GeneratedAt    time.Time          `json:"generated_at"`
	RuleSetVersion string             `json:"rule_set_version"`
	RulesEvaluated int                `json:"rules_evaluated,omitempty"`
	Duration       time.Duration      `json:"duration_ns,omitempty"`
	Summary        Summary            `json:"summary"`
	Contract       *contract.Contract `json:"contract"`
	Alternatives   []Alternative      `json:"alternatives,omitempty"`
}

// Summary counts the findings of a report.
type Summary struct {
	Clauses           int            `json:"clauses"`
	ClausesWithIssues int            `json:"clauses_with_issues"`
	Issues            int            `json:"issues"`
	BySeverity        SeverityCounts `json:"by_severity"`
	Compliance        string         `json:"compliance"`
}

// SeverityCounts counts issues per severity.
type SeverityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Alternative is a standard clause suggested for a clause with issues.
type Alternative struct {
	ClauseID         string  `json:"clause_id"`
	Regulation       string  `json:"regulation"`
	StandardClauseID string  `json:"standard_clause_id"`
	Title            string  `json:"title"`
	ComplianceRating float64 `json:"compliance_rating"`
}

// New creates a report for an annotated contract. The contract is copied.
func New(annotated *contract.Contract, ruleSetVersion string) *Report {
	c := annotated.Clone()
	return &Report{
		ID:             uuid.New().String(),
		GeneratedAt:    time.Now().UTC(),
		RuleSetVersion: ruleSetVersion,
		Summary:        Summarize(c),
		Contract:       c,
	}
}

// FromResult creates a report from an engine result.
func FromResult(res *engine.Result) *Report {
	r := New(res.Contract, res.RuleSetVersion)
	r.RulesEvaluated = res.RulesEvaluated
	r.Duration = res.Duration
	return r
}

// Summarize counts the issues of an annotated contract.
func Summarize(c *contract.Contract) Summary {
	s := Summary{Compliance: contract.CompliancePending}
	if c == nil {
		return s
	}

	s.Clauses = len(c.Clauses)
	for _, clause := range c.Clauses {
		if len(clause.Issues) > 0 {
			s.ClausesWithIssues++
		}
		for _, issue := range clause.Issues {
			s.Issues++
			switch issue.Severity {
			case contract.SeverityHigh:
				s.BySeverity.High++
			case contract.SeverityMedium:
				s.BySeverity.Medium++
			case contract.SeverityLow:
				s.BySeverity.Low++
			}
		}
	}

	s.Compliance = c.Compliance
	if s.Compliance == "" {
		s.Compliance = contract.ComplianceFor(c.Clauses)
	}
	return s
}

// HasIssuesAtLeast reports whether any issue is at least as severe as min.
func (r *Report) HasIssuesAtLeast(min contract.Severity) bool {
	if r.Contract == nil {
		return false
	}
	for _, clause := range r.Contract.Clauses {
		for _, issue := range clause.Issues {
			if issue.Severity.AtLeast(min) {
				return true
			}
		}
	}
	return false
}

// AddAlternatives suggests up to perRegulation standard clauses for each
// regulation named by an issue. A clause gets each standard clause at most
// once.
func (r *Report) AddAlternatives(lib *contract.Library, perRegulation int) {
	if lib == nil || r.Contract == nil {
		return
	}
	if perRegulation <= 0 {
		perRegulation = 1
	}

	r.Alternatives = nil
	for _, clause := range r.Contract.Clauses {
		seen := make(map[string]bool)
		for _, issue := range clause.Issues {
			alts := lib.Alternatives(issue.Regulation)
			if len(alts) > perRegulation {
				alts = alts[:perRegulation]
			}
			for _, alt := range alts {
				if seen[alt.ID] {
					continue
				}
				seen[alt.ID] = true
				r.Alternatives = append(r.Alternatives, Alternative{
					ClauseID:         clause.ID,
					Regulation:       issue.Regulation,
					StandardClauseID: alt.ID,
					Title:            alt.Title,
					ComplianceRating: alt.ComplianceRating,
				})
			}
		}
	}
}
