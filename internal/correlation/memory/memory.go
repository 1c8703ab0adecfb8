package memory

import (
	"context"
	"sync"

	"github.com/futapay/relay/internal/correlation"
	"github.com/futapay/relay/internal/ledger"
)

type key struct {
	processor  ledger.Processor
	externalID string
}

type Store struct {
	mu      sync.RWMutex
	entries map[key]correlation.Entry
}

func New() *Store {
	return &Store{entries: make(map[key]correlation.Entry)}
}

func (s *Store) Insert(_ context.Context, e correlation.Entry) (correlation.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{e.Processor, e.ExternalID}
	if stored, ok := s.entries[k]; ok {
		return stored, nil
	}

	s.entries[k] = e

	return e, nil
}

func (s *Store) Get(_ context.Context, processor ledger.Processor, externalID string) (correlation.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key{processor, externalID}]
	if !ok {
		return correlation.Entry{}, correlation.ErrNotFound
	}

	return e, nil
}
