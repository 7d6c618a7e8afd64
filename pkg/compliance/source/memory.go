package source

import (
	"context"
	"sync"

	"mercator-hq/clausewatch/pkg/compliance/rules"
)

// MemorySource serves rules held in memory.
type MemorySource struct {
	mu   sync.RWMutex
	pack Pack
}

// NewMemorySource creates a source serving the given rules.
func NewMemorySource(name string, rs []rules.Rule) *MemorySource {
	return &MemorySource{pack: Pack{Name: name, Rules: cloneRules(rs), Origin: "memory"}}
}

// Load implements Source.
func (s *MemorySource) Load(ctx context.Context) (*Pack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.pack
	p.Rules = cloneRules(s.pack.Rules)
	return &p, nil
}

// Set replaces the rules served by the source.
func (s *MemorySource) Set(rs []rules.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pack.Rules = cloneRules(rs)
}

func cloneRules(rs []rules.Rule) []rules.Rule {
	return append([]rules.Rule(nil), rs...)
}
