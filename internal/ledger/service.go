package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	// Create inserts tx unless a transaction with the same ref exists, and
	// returns whichever row is stored.
	Create(ctx context.Context, tx *Transaction) (*Transaction, error)
	Get(ctx context.Context, ref Ref) (*Transaction, error)
	// Update loads the row under a lock, applies fn and writes the result
	// back atomically. Nothing is written if fn fails.
	Update(ctx context.Context, ref Ref, fn func(tx *Transaction) error) (*Transaction, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for UpdatedAt and audit stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type OpenParams struct {
	Ref       Ref
	Kind      Kind
	Amount    decimal.Decimal
	Currency  string
	Recipient Recipient
}

// Exchange describes one outbound call to a processor and its answer.
type Exchange struct {
	Processor      Processor
	ExternalID     string
	ExternalStatus string
	HTTPStatus     int
	Failure        string
	Request        []byte
	Response       []byte
}

// Callback is a processor notification already matched to a transaction.
type Callback struct {
	Processor  Processor
	ExternalID string
	RawStatus  string
	Body       []byte
}

// Transition reports the state of one leg before and after a signal.
type Transition struct {
	From string
	To   string
}

func (t Transition) Changed() bool {
	return t.From != t.To
}

// Open returns the transaction for p.Ref, creating it in the initiated state
// when it does not exist yet. A recipient is attached if none was stored.
func (s *Service) Open(ctx context.Context, p OpenParams) (*Transaction, error) {
	now := s.now()

	tx, err := s.repo.Create(ctx, &Transaction{
		ID:            p.Ref.TransactionID,
		OwnerID:       p.Ref.OwnerID,
		Kind:          p.Kind,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Recipient:     p.Recipient,
		PaymentStatus: PaymentInitiated,
		RawState:      map[Processor]*ProcessorState{},
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("opening transaction: %w", err)
	}

	if p.Recipient.IsZero() || !tx.Recipient.IsZero() {
		return tx, nil
	}

	return s.repo.Update(ctx, p.Ref, func(tx *Transaction) error {
		if tx.Recipient.IsZero() {
			tx.Recipient = p.Recipient
			tx.touch(now)
		}

		return nil
	})
}

func (s *Service) Get(ctx context.Context, ref Ref) (*Transaction, error) {
	return s.repo.Get(ctx, ref)
}

// AttachPayment stores the payment id returned by the checkout processor and
// moves the payment leg to open.
func (s *Service) AttachPayment(ctx context.Context, ref Ref, ex Exchange) (*Transaction, error) {
	now := s.now()

	return s.repo.Update(ctx, ref, func(tx *Transaction) error {
		if tx.Refs.PaymentID != "" && tx.Refs.PaymentID != ex.ExternalID {
			return fmt.Errorf("%w: payment %s already bound to %s", ErrRefAlreadySet, ex.ExternalID, tx.Refs.PaymentID)
		}

		tx.Refs.PaymentID = ex.ExternalID
		tx.PaymentStatus = ApplyPayment(tx.PaymentStatus, PaymentOpen)
		recordExchange(tx.State(ex.Processor), ex)
		tx.touch(now)

		return nil
	})
}

// AttachPayout stores the payout id and starts the payout leg at accepted.
func (s *Service) AttachPayout(ctx context.Context, ref Ref, ex Exchange) (*Transaction, error) {
	now := s.now()

	return s.repo.Update(ctx, ref, func(tx *Transaction) error {
		if tx.Refs.PayoutID != "" && tx.Refs.PayoutID != ex.ExternalID {
			return fmt.Errorf("%w: payout %s already bound to %s", ErrRefAlreadySet, ex.ExternalID, tx.Refs.PayoutID)
		}

		tx.Refs.PayoutID = ex.ExternalID
		tx.PayoutStatus = ApplyPayout(tx.PayoutStatus, PayoutAccepted)
		recordExchange(tx.State(ex.Processor), ex)
		tx.touch(now)

		return nil
	})
}

// RecordRejection keeps the processor's answer to a failed initiation for
// audit. Statuses are left alone so the owner can retry.
func (s *Service) RecordRejection(ctx context.Context, ref Ref, ex Exchange) error {
	now := s.now()

	_, err := s.repo.Update(ctx, ref, func(tx *Transaction) error {
		recordExchange(tx.State(ex.Processor), ex)
		tx.touch(now)

		return nil
	})

	return err
}

// ApplyPaymentStatus feeds a checkout callback through the payment machine.
func (s *Service) ApplyPaymentStatus(ctx context.Context, ref Ref, cb Callback) (Transition, error) {
	var tr Transition

	signal, known := MapPaymentStatus(cb.RawStatus)
	now := s.now()

	_, err := s.repo.Update(ctx, ref, func(tx *Transaction) error {
		from := ApplyPayment(tx.PaymentStatus, PaymentInitiated)
		to := ApplyPayment(from, signal)

		if !known {
			slog.Warn("unmapped payment status",
				"processor", cb.Processor, "external_id", cb.ExternalID, "status", cb.RawStatus)
		} else if from.Terminal() && signal != from {
			slog.Warn("ignoring payment outcome after final state",
				"owner_id", ref.OwnerID, "transaction_id", ref.TransactionID,
				"current", from, "incoming", signal)
		}

		if tx.Refs.PaymentID == "" {
			tx.Refs.PaymentID = cb.ExternalID
		}

		tx.PaymentStatus = to
		recordCallback(tx.State(cb.Processor), cb, now)
		tx.touch(now)

		tr = Transition{From: string(from), To: string(to)}

		return nil
	})
	if err != nil {
		return Transition{}, fmt.Errorf("applying payment status: %w", err)
	}

	return tr, nil
}

// ApplyPayoutStatus feeds a payout callback through the payout machine.
func (s *Service) ApplyPayoutStatus(ctx context.Context, ref Ref, cb Callback) (Transition, error) {
	var tr Transition

	signal := MapPayoutStatus(cb.RawStatus)
	now := s.now()

	_, err := s.repo.Update(ctx, ref, func(tx *Transaction) error {
		from := tx.PayoutStatus
		to := ApplyPayout(from, signal)

		if signal == PayoutUnknown {
			slog.Warn("unmapped payout status",
				"processor", cb.Processor, "external_id", cb.ExternalID, "status", cb.RawStatus)
		}

		if from.Terminal() && signal != from {
			slog.Warn("ignoring payout status after final state",
				"owner_id", ref.OwnerID, "transaction_id", ref.TransactionID,
				"current", from, "incoming", signal)
		}

		if tx.Refs.PayoutID == "" {
			tx.Refs.PayoutID = cb.ExternalID
		}

		tx.PayoutStatus = to
		recordCallback(tx.State(cb.Processor), cb, now)
		tx.touch(now)

		tr = Transition{From: string(from), To: string(to)}

		return nil
	})
	if err != nil {
		return Transition{}, fmt.Errorf("applying payout status: %w", err)
	}

	return tr, nil
}

func recordExchange(st *ProcessorState, ex Exchange) {
	st.Status = ex.ExternalStatus
	st.Failure = ex.Failure
	st.LastHTTPStatus = ex.HTTPStatus
	st.LastRequest = rawJSON(ex.Request)
	st.LastResponse = rawJSON(ex.Response)
}

// recordCallback merges a callback into the processor state; the response
// captured at initiation is preserved.
func recordCallback(st *ProcessorState, cb Callback, at time.Time) {
	if cb.RawStatus != "" {
		st.Status = cb.RawStatus
	}

	st.LastCallback = rawJSON(cb.Body)
	st.CallbackReceivedAt = &at
}
