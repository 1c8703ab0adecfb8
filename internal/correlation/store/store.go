package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/futapay/relay/internal/correlation"
	"github.com/futapay/relay/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, e correlation.Entry) (correlation.Entry, error) {
	query := `
		INSERT INTO correlations (processor, external_id, owner_id, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (processor, external_id) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query,
		e.Processor,
		e.ExternalID,
		e.Ref.OwnerID,
		e.Ref.TransactionID,
		e.CreatedAt,
	); err != nil {
		return correlation.Entry{}, fmt.Errorf("inserting correlation: %w", err)
	}

	return s.Get(ctx, e.Processor, e.ExternalID)
}

func (s *Store) Get(ctx context.Context, processor ledger.Processor, externalID string) (correlation.Entry, error) {
	query := `
		SELECT processor, external_id, owner_id, transaction_id, created_at
		FROM correlations
		WHERE processor = $1 AND external_id = $2
	`

	var (
		e    correlation.Entry
		proc string
	)

	err := s.db.QueryRowContext(ctx, query, processor, externalID).Scan(
		&proc, &e.ExternalID, &e.Ref.OwnerID, &e.Ref.TransactionID, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return correlation.Entry{}, correlation.ErrNotFound
		}

		return correlation.Entry{}, fmt.Errorf("getting correlation: %w", err)
	}

	e.Processor = ledger.Processor(proc)

	return e, nil
}
