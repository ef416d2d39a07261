package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"releve/internal/core"
)

const Name = "memory"

// Store keeps rendered statements in memory, mostly for tests and dry runs.
type Store struct {
	mu    sync.Mutex
	items []core.Statement
}

func New() *Store {
	return &Store{}
}

func (s *Store) Name() string { return Name }

// Render stores a copy of the statement and returns a synthetic reference.
func (s *Store) Render(_ context.Context, st core.Statement) (string, error) {
	if err := st.Batch.Period.Validate(); err != nil {
		return "", err
	}
	st.Batch.Transactions = slices.Clone(st.Batch.Transactions)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, st)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Statements returns the stored statements in render order.
func (s *Store) Statements() []core.Statement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Latest returns the most recently stored statement for account.
func (s *Store) Latest(account string) (core.Statement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].Account.Number == account {
			return s.items[i], true
		}
	}
	return core.Statement{}, false
}
