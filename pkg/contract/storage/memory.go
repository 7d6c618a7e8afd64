package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mercator-hq/clausewatch/pkg/contract"
)

// MemoryStore implements contract.Store in memory. It hands out deep copies,
// so callers may modify what they receive.
type MemoryStore struct {
	mu        sync.RWMutex
	contracts []*contract.Contract
	index     map[string]int
}

// NewMemoryStore creates a store holding copies of the given contracts, in
// the given order.
func NewMemoryStore(contracts []*contract.Contract) (*MemoryStore, error) {
	s := &MemoryStore{index: make(map[string]int, len(contracts))}
	for _, c := range contracts {
		if c == nil || c.ID == "" {
			return nil, fmt.Errorf("contract id cannot be empty")
		}
		if _, dup := s.index[c.ID]; dup {
			return nil, fmt.Errorf("duplicate contract id %q", c.ID)
		}
		s.index[c.ID] = len(s.contracts)
		s.contracts = append(s.contracts, c.Clone())
	}
	return s, nil
}

// Put inserts a contract or replaces the one with the same ID, keeping its
// position.
func (s *MemoryStore) Put(ctx context.Context, c *contract.Contract) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c == nil || c.ID == "" {
		return fmt.Errorf("contract id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[c.ID]; ok {
		s.contracts[i] = c.Clone()
		return nil
	}
	s.index[c.ID] = len(s.contracts)
	s.contracts = append(s.contracts, c.Clone())
	return nil
}

// List implements contract.Store.
func (s *MemoryStore) List(ctx context.Context) ([]*contract.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*contract.Contract, len(s.contracts))
	for i, c := range s.contracts {
		out[i] = c.Clone()
	}
	return out, nil
}

// Recent implements contract.Store.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]*contract.Contract, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	SortRecent(all)
	limit = RecentLimit(limit)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Get implements contract.Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*contract.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, contract.NewNotFoundError("contract", id)
	}
	return s.contracts[i].Clone(), nil
}

// Clauses implements contract.Store.
func (s *MemoryStore) Clauses(ctx context.Context, contractID string) ([]contract.Clause, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[contractID]
	if !ok {
		return []contract.Clause{}, nil
	}
	src := s.contracts[i].Clauses
	out := make([]contract.Clause, len(src))
	for j, clause := range src {
		out[j] = clause.Clone()
	}
	return out, nil
}

// Len returns the number of contracts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contracts)
}

// Close implements contract.Store.
func (s *MemoryStore) Close() error {
	return nil
}

// SortRecent orders contracts newest first by DateAdded, ties by ID.
func SortRecent(cs []*contract.Contract) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].DateAdded.Equal(cs[j].DateAdded) {
			return cs[i].DateAdded.After(cs[j].DateAdded)
		}
		return cs[i].ID < cs[j].ID
	})
}

// RecentLimit applies the default to a Recent limit.
func RecentLimit(limit int) int {
	if limit <= 0 {
		return contract.DefaultRecentLimit
	}
	return limit
}
