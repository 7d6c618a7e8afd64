package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"mercator-hq/clausewatch/pkg/compliance/rules"
)

// Source supplies compliance rules.
type Source interface {
	// Load reads the current rule pack. Rules are returned in authoring
	// order, which becomes rule store order.
	Load(ctx context.Context) (*Pack, error)
}

// Pack is a named, versioned collection of rules.
type Pack struct {
	Name        string
	Version     string
	Description string
	Rules       []rules.Rule

	// Origin describes where the pack was read from.
	Origin string
}

// packDocument is the on-disk form of a rule pack.
type packDocument struct {
	Name        string     `yaml:"name"`
	Version     string     `yaml:"version"`
	Description string     `yaml:"description"`
	Rules       []packRule `yaml:"rules"`
}

// packRule mirrors rules.Rule. Active defaults to true when omitted.
type packRule struct {
	ID                  string `yaml:"id"`
	Name                string `yaml:"name"`
	Description         string `yaml:"description"`
	Regulation          string `yaml:"regulation"`
	Category            string `yaml:"category"`
	Severity            string `yaml:"severity"`
	Active              *bool  `yaml:"active"`
	Pattern             string `yaml:"pattern"`
	Guidance            string `yaml:"guidance"`
	NonCompliantExample string `yaml:"non_compliant_example"`
	CompliantExample    string `yaml:"compliant_example"`
}

func (r packRule) toRule() rules.Rule {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return rules.Rule{
		ID:                  r.ID,
		Name:                r.Name,
		Description:         r.Description,
		Regulation:          r.Regulation,
		Category:            r.Category,
		Severity:            r.Severity,
		Active:              active,
		Pattern:             r.Pattern,
		Guidance:            r.Guidance,
		NonCompliantExample: r.NonCompliantExample,
		CompliantExample:    r.CompliantExample,
	}
}

// ParsePack decodes a YAML rule pack. Unknown fields are rejected so a
// misspelled key cannot silently disable a rule.
func ParsePack(data []byte, origin string) (*Pack, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc packDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Path: origin, Message: "empty rule pack"}
		}
		return nil, newParseError(origin, err)
	}

	pack := &Pack{
		Name:        doc.Name,
		Version:     doc.Version,
		Description: doc.Description,
		Rules:       make([]rules.Rule, 0, len(doc.Rules)),
		Origin:      origin,
	}
	for _, r := range doc.Rules {
		pack.Rules = append(pack.Rules, r.toRule())
	}
	return pack, nil
}

// combine merges packs into one, keeping pack order and rule order within
// each pack.
func combine(packs []*Pack, origin string) *Pack {
	if len(packs) == 1 {
		return packs[0]
	}

	names := make([]string, 0, len(packs))
	out := &Pack{Origin: origin}
	for _, p := range packs {
		if p.Name != "" {
			names = append(names, p.Name)
		}
		out.Rules = append(out.Rules, p.Rules...)
	}
	out.Name = strings.Join(names, ", ")
	return out
}
