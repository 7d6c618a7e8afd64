package contract

import (
	"context"
	"time"
)

// Compliance states reported on an evaluated contract.
const (
	ComplianceCompliant = "Compliant"
	ComplianceMinor     = "Minor Issues"
	ComplianceMajor     = "Major Issues"
	CompliancePending   = "Pending"

	// StatusAnalyzed is set on every contract returned by the evaluator.
	StatusAnalyzed = "Analyzed"
)

// Contract is a commercial agreement and the clauses it owns.
// Clauses are never shared between contracts; use Clone before handing a
// contract to code that may modify it.
type Contract struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Type       string            `json:"type" yaml:"type"`
	DateAdded  time.Time         `json:"date_added" yaml:"date_added"`
	Status     string            `json:"status,omitempty" yaml:"status,omitempty"`
	Compliance string            `json:"compliance,omitempty" yaml:"compliance,omitempty"`
	Parties    []string          `json:"parties,omitempty" yaml:"parties,omitempty"`
	ExpiryDate *time.Time        `json:"expiry_date,omitempty" yaml:"expiry_date,omitempty"`
	Value      *float64          `json:"value,omitempty" yaml:"value,omitempty"`
	Content    string            `json:"content,omitempty" yaml:"content,omitempty"`
	Versions   []ContractVersion `json:"versions,omitempty" yaml:"versions,omitempty"`
	Clauses    []Clause          `json:"clauses" yaml:"clauses,omitempty"`
}

// ContractVersion describes one revision in a contract's history.
type ContractVersion struct {
	ID          string         `json:"id" yaml:"id"`
	Version     string         `json:"version" yaml:"version"`
	Date        string         `json:"date" yaml:"date"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Changes     VersionChanges `json:"changes" yaml:"changes"`
}

// VersionChanges counts the clause-level edits in a revision.
type VersionChanges struct {
	Added    int `json:"added" yaml:"added"`
	Modified int `json:"modified" yaml:"modified"`
	Removed  int `json:"removed" yaml:"removed"`
}

// Clause is a discrete provision of a contract.
//
// HasIssues and Severity are derived from Issues and must be refreshed with
// Recompute whenever Issues changes. SuggestedRevision is pre-authored text
// carried alongside the clause; nothing in this module generates it.
type Clause struct {
	ID                string        `json:"id" yaml:"id"`
	Title             string        `json:"title" yaml:"title"`
	Type              string        `json:"type,omitempty" yaml:"type,omitempty"`
	Text              string        `json:"text" yaml:"text"`
	HasIssues         bool          `json:"has_issues" yaml:"has_issues,omitempty"`
	Severity          Severity      `json:"severity,omitempty" yaml:"severity,omitempty"`
	Issues            []ClauseIssue `json:"issues" yaml:"issues,omitempty"`
	SuggestedRevision string        `json:"suggested_revision,omitempty" yaml:"suggested_revision,omitempty"`
	Tags              []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	References        []string      `json:"references,omitempty" yaml:"references,omitempty"`
}

// ClauseIssue is a finding attached to a clause, derived from one matched rule.
type ClauseIssue struct {
	RuleID              string      `json:"rule_id,omitempty" yaml:"rule_id,omitempty"`
	Title               string      `json:"title" yaml:"title"`
	Description         string      `json:"description" yaml:"description"`
	Severity            Severity    `json:"severity" yaml:"severity"`
	Regulation          string      `json:"regulation,omitempty" yaml:"regulation,omitempty"`
	Category            string      `json:"category,omitempty" yaml:"category,omitempty"`
	Guidance            string      `json:"guidance,omitempty" yaml:"guidance,omitempty"`
	CompliantExample    string      `json:"compliant_example,omitempty" yaml:"compliant_example,omitempty"`
	NonCompliantExample string      `json:"non_compliant_example,omitempty" yaml:"non_compliant_example,omitempty"`
	Matches             []MatchSpan `json:"matches,omitempty" yaml:"matches,omitempty"`
}

// MatchSpan locates one occurrence of a rule pattern in clause text.
// Start and End are byte offsets; End is exclusive.
type MatchSpan struct {
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Text  string `json:"text" yaml:"text"`
}

// Store provides read access to contracts.
// Implementations must be safe for concurrent use.
type Store interface {
	// List returns all contracts in store order.
	List(ctx context.Context) ([]*Contract, error)

	// Recent returns up to limit contracts, newest DateAdded first.
	// A limit <= 0 uses DefaultRecentLimit.
	Recent(ctx context.Context, limit int) ([]*Contract, error)

	// Get returns the contract with the given id or an error matching ErrNotFound.
	Get(ctx context.Context, id string) (*Contract, error)

	// Clauses returns the clauses of a contract. An unknown id yields an
	// empty slice rather than an error.
	Clauses(ctx context.Context, contractID string) ([]Clause, error)

	// Close releases resources held by the store.
	Close() error
}

// DefaultRecentLimit is the number of contracts returned by Recent when no
// limit is given.
const DefaultRecentLimit = 5

// Recompute refreshes the fields derived from Issues.
func (c *Clause) Recompute() {
	c.HasIssues = len(c.Issues) > 0
	c.Severity = ""
	for _, issue := range c.Issues {
		if c.Severity == "" || issue.Severity.Rank() < c.Severity.Rank() {
			c.Severity = issue.Severity
		}
	}
}

// Clone returns a deep copy of the clause.
func (c Clause) Clone() Clause {
	out := c
	out.Tags = cloneStrings(c.Tags)
	out.References = cloneStrings(c.References)
	if c.Issues != nil {
		out.Issues = make([]ClauseIssue, len(c.Issues))
		for i, issue := range c.Issues {
			issue.Matches = append([]MatchSpan(nil), issue.Matches...)
			out.Issues[i] = issue
		}
	}
	return out
}

// Clone returns a deep copy of the contract, clauses included.
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	out := c.CloneMetadata()
	if c.Clauses != nil {
		out.Clauses = make([]Clause, len(c.Clauses))
		for i, clause := range c.Clauses {
			out.Clauses[i] = clause.Clone()
		}
	}
	return out
}

// CloneMetadata returns a deep copy of the contract without its clauses.
func (c *Contract) CloneMetadata() *Contract {
	if c == nil {
		return nil
	}
	out := *c
	out.Clauses = nil
	out.Parties = cloneStrings(c.Parties)
	if c.ExpiryDate != nil {
		t := *c.ExpiryDate
		out.ExpiryDate = &t
	}
	if c.Value != nil {
		v := *c.Value
		out.Value = &v
	}
	if c.Versions != nil {
		out.Versions = append([]ContractVersion(nil), c.Versions...)
	}
	return &out
}

// IssueCount returns the total number of issues across all clauses.
func (c *Contract) IssueCount() int {
	n := 0
	for _, clause := range c.Clauses {
		n += len(clause.Issues)
	}
	return n
}

// ComplianceFor derives the compliance state from a set of clauses.
func ComplianceFor(clauses []Clause) string {
	state := ComplianceCompliant
	for _, clause := range clauses {
		for _, issue := range clause.Issues {
			if issue.Severity == SeverityHigh {
				return ComplianceMajor
			}
			state = ComplianceMinor
		}
	}
	return state
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
