// Package memory is an in-process ledger repository for single-instance
// deployments without a database and for tests.
package memory

import (
	"context"
	"sync"

	"github.com/futapay/relay/internal/ledger"
)

type Store struct {
	mu   sync.Mutex
	rows map[ledger.Ref]*row
}

type row struct {
	mu sync.Mutex
	tx *ledger.Transaction
}

func New() *Store {
	return &Store{rows: make(map[ledger.Ref]*row)}
}

func (s *Store) lookup(ref ledger.Ref) (*row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rows[ref]

	return r, ok
}

func (s *Store) Create(_ context.Context, tx *ledger.Transaction) (*ledger.Transaction, error) {
	s.mu.Lock()

	r, ok := s.rows[tx.Ref()]
	if !ok {
		r = &row{tx: tx.Clone()}
		s.rows[tx.Ref()] = r
	}

	s.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.tx.Clone(), nil
}

func (s *Store) Get(_ context.Context, ref ledger.Ref) (*ledger.Transaction, error) {
	r, ok := s.lookup(ref)
	if !ok {
		return nil, ledger.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.tx.Clone(), nil
}

// Update holds the row lock while fn runs; fn works on a copy that only
// replaces the stored row when it succeeds.
func (s *Store) Update(ctx context.Context, ref ledger.Ref, fn func(tx *ledger.Transaction) error) (*ledger.Transaction, error) {
	r, ok := s.lookup(ref)
	if !ok {
		return nil, ledger.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	work := r.tx.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}

	r.tx = work

	return work.Clone(), nil
}
