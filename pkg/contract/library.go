package contract

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// StandardClause is a pre-approved clause from the clause library.
type StandardClause struct {
	ID               string           `json:"id" yaml:"id"`
	Title            string           `json:"title" yaml:"title"`
	Category         string           `json:"category" yaml:"category"`
	Text             string           `json:"text" yaml:"text"`
	Tags             []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
	ComplianceRating float64          `json:"compliance_rating" yaml:"compliance_rating"`
	UsageGuidance    string           `json:"usage_guidance,omitempty" yaml:"usage_guidance,omitempty"`
	Regulations      []RegulationInfo `json:"regulations,omitempty" yaml:"regulations,omitempty"`
}

// RegulationInfo states whether a standard clause satisfies a regulation.
type RegulationInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Compliant   bool   `json:"compliant" yaml:"compliant"`
}

// Library is an immutable, ordered collection of standard clauses.
type Library struct {
	clauses []StandardClause
	index   map[string]int
}

// libraryFile is the on-disk layout of a clause library.
type libraryFile struct {
	StandardClauses []StandardClause `yaml:"standard_clauses"`
}

// NewLibrary builds a library. IDs must be present and unique.
func NewLibrary(clauses []StandardClause) (*Library, error) {
	l := &Library{
		clauses: make([]StandardClause, 0, len(clauses)),
		index:   make(map[string]int, len(clauses)),
	}
	for i, c := range clauses {
		if c.ID == "" {
			return nil, fmt.Errorf("standard clause at index %d has no id", i)
		}
		if _, dup := l.index[c.ID]; dup {
			return nil, fmt.Errorf("duplicate standard clause id %q", c.ID)
		}
		l.index[c.ID] = len(l.clauses)
		l.clauses = append(l.clauses, cloneStandardClause(c))
	}
	return l, nil
}

// LoadLibrary reads a YAML clause library from path.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clause library %q: %w", path, err)
	}

	var file libraryFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse clause library %q: %w", path, err)
	}

	lib, err := NewLibrary(file.StandardClauses)
	if err != nil {
		return nil, fmt.Errorf("invalid clause library %q: %w", path, err)
	}
	return lib, nil
}

// Len returns the number of clauses in the library.
func (l *Library) Len() int {
	return len(l.clauses)
}

// List returns all standard clauses in library order.
func (l *Library) List() []StandardClause {
	out := make([]StandardClause, len(l.clauses))
	for i, c := range l.clauses {
		out[i] = cloneStandardClause(c)
	}
	return out
}

// Get returns the standard clause with the given id.
func (l *Library) Get(id string) (StandardClause, error) {
	i, ok := l.index[id]
	if !ok {
		return StandardClause{}, NewNotFoundError("standard clause", id)
	}
	return cloneStandardClause(l.clauses[i]), nil
}

// ByCategory returns the clauses in a category, compared case-insensitively.
func (l *Library) ByCategory(category string) []StandardClause {
	var out []StandardClause
	for _, c := range l.clauses {
		if strings.EqualFold(c.Category, category) {
			out = append(out, cloneStandardClause(c))
		}
	}
	return out
}

// Alternatives returns the clauses marked compliant with the named
// regulation, best rated first. Ties keep library order.
func (l *Library) Alternatives(regulation string) []StandardClause {
	if regulation == "" {
		return nil
	}
	var out []StandardClause
	for _, c := range l.clauses {
		for _, reg := range c.Regulations {
			if reg.Compliant && strings.EqualFold(reg.Name, regulation) {
				out = append(out, cloneStandardClause(c))
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ComplianceRating > out[j].ComplianceRating
	})
	return out
}

func cloneStandardClause(c StandardClause) StandardClause {
	c.Tags = cloneStrings(c.Tags)
	if c.Regulations != nil {
		c.Regulations = append([]RegulationInfo(nil), c.Regulations...)
	}
	return c
}
