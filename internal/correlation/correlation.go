// Package correlation maps processor-assigned ids back to the ledger
// transaction that produced them.
package correlation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futapay/relay/internal/ledger"
)

var (
	ErrNotFound = errors.New("correlation not found")
	ErrConflict = errors.New("external id already bound to another transaction")
)

// Entry binds one processor id to a transaction. Entries are write-once.
type Entry struct {
	Processor  ledger.Processor
	ExternalID string
	Ref        ledger.Ref
	CreatedAt  time.Time
}

//go:generate mockgen -source=correlation.go -destination=repository_mock.go -package=correlation
type Repository interface {
	// Insert stores e unless an entry for (processor, external id) exists and
	// returns whichever entry is stored.
	Insert(ctx context.Context, e Entry) (Entry, error)
	Get(ctx context.Context, processor ledger.Processor, externalID string) (Entry, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record binds e.ExternalID to e.Ref. Recording the same binding again is a
// no-op; binding the id to a different transaction fails with ErrConflict.
func (s *Service) Record(ctx context.Context, e Entry) error {
	if e.Processor == "" || e.ExternalID == "" || !e.Ref.Valid() {
		return fmt.Errorf("recording correlation: incomplete entry %+v", e)
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	stored, err := s.repo.Insert(ctx, e)
	if err != nil {
		return fmt.Errorf("recording correlation: %w", err)
	}

	if stored.Ref != e.Ref {
		return fmt.Errorf("%w: %s %s -> %s/%s", ErrConflict, e.Processor, e.ExternalID,
			stored.Ref.OwnerID, stored.Ref.TransactionID)
	}

	return nil
}

func (s *Service) Resolve(ctx context.Context, processor ledger.Processor, externalID string) (ledger.Ref, error) {
	if externalID == "" {
		return ledger.Ref{}, ErrNotFound
	}

	e, err := s.repo.Get(ctx, processor, externalID)
	if err != nil {
		return ledger.Ref{}, err
	}

	return e.Ref, nil
}
