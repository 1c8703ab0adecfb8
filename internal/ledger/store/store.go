package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/futapay/relay/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a transaction row from the scanner.
// Expected column order: see selectTransactionColumns.
func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	var kind, paymentStatus, payoutStatus string

	var recipient, rawState []byte

	if err := s.Scan(
		&tx.OwnerID, &tx.ID, &kind, &tx.Amount, &tx.Currency, &recipient,
		&paymentStatus, &payoutStatus, &tx.Refs.PaymentID, &tx.Refs.PayoutID,
		&rawState, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Kind = ledger.Kind(kind)
	tx.PaymentStatus = ledger.PaymentStatus(paymentStatus)
	tx.PayoutStatus = ledger.PayoutStatus(payoutStatus)

	if len(recipient) > 0 {
		if err := json.Unmarshal(recipient, &tx.Recipient); err != nil {
			return nil, fmt.Errorf("decoding recipient: %w", err)
		}
	}

	state, err := ledger.UnmarshalRawState(rawState)
	if err != nil {
		return nil, fmt.Errorf("decoding processor state: %w", err)
	}

	tx.RawState = state

	return &tx, nil
}

const selectTransactionColumns = `
	owner_id, id, kind, amount, currency, recipient,
	payment_status, payout_status, payment_id, payout_id,
	raw_processor_state, created_at, updated_at
`

// Create inserts tx unless the (owner, id) pair is taken and returns the
// stored row either way.
func (s *Store) Create(ctx context.Context, tx *ledger.Transaction) (*ledger.Transaction, error) {
	recipient, err := json.Marshal(tx.Recipient)
	if err != nil {
		return nil, fmt.Errorf("encoding recipient: %w", err)
	}

	rawState, err := ledger.MarshalRawState(tx.RawState)
	if err != nil {
		return nil, fmt.Errorf("encoding processor state: %w", err)
	}

	query := `
		INSERT INTO transactions (owner_id, id, kind, amount, currency, recipient,
			payment_status, payout_status, payment_id, payout_id, raw_processor_state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (owner_id, id) DO NOTHING
	`

	_, err = s.db.ExecContext(ctx, query,
		tx.OwnerID,
		tx.ID,
		tx.Kind,
		tx.Amount.StringFixed(2),
		tx.Currency,
		recipient,
		tx.PaymentStatus,
		tx.PayoutStatus,
		tx.Refs.PaymentID,
		tx.Refs.PayoutID,
		rawState,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	return s.Get(ctx, tx.Ref())
}

func (s *Store) Get(ctx context.Context, ref ledger.Ref) (*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE owner_id = $1 AND id = $2`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, ref.OwnerID, ref.TransactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

// Update locks the row for the duration of fn so concurrent callbacks for the
// same transaction apply one after the other.
func (s *Store) Update(ctx context.Context, ref ledger.Ref, fn func(tx *ledger.Transaction) error) (*ledger.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE owner_id = $1 AND id = $2
		FOR UPDATE`

	tx, err := scanTransaction(dbTx.QueryRowContext(ctx, query, ref.OwnerID, ref.TransactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("locking transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		return nil, err
	}

	recipient, err := json.Marshal(tx.Recipient)
	if err != nil {
		return nil, fmt.Errorf("encoding recipient: %w", err)
	}

	rawState, err := ledger.MarshalRawState(tx.RawState)
	if err != nil {
		return nil, fmt.Errorf("encoding processor state: %w", err)
	}

	updateQuery := `
		UPDATE transactions
		SET recipient = $1, payment_status = $2, payout_status = $3, payment_id = $4, payout_id = $5,
			raw_processor_state = $6, updated_at = $7
		WHERE owner_id = $8 AND id = $9
	`

	if _, err := dbTx.ExecContext(ctx, updateQuery,
		recipient,
		tx.PaymentStatus,
		tx.PayoutStatus,
		tx.Refs.PaymentID,
		tx.Refs.PayoutID,
		rawState,
		tx.UpdatedAt,
		ref.OwnerID,
		ref.TransactionID,
	); err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return tx, nil
}
