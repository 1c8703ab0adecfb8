// Package reconcile applies asynchronous processor callbacks to the ledger.
// Callbacks may arrive late, twice or out of order; none of that is an error.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/futapay/relay/internal/correlation"
	"github.com/futapay/relay/internal/ledger"
)

//go:generate mockgen -source=reconcile.go -destination=reconcile_mock.go -package=reconcile
type Resolver interface {
	Resolve(ctx context.Context, processor ledger.Processor, externalID string) (ledger.Ref, error)
}

type Ledger interface {
	ApplyPaymentStatus(ctx context.Context, ref ledger.Ref, cb ledger.Callback) (ledger.Transition, error)
	ApplyPayoutStatus(ctx context.Context, ref ledger.Ref, cb ledger.Callback) (ledger.Transition, error)
}

// Outcome tells what became of a callback. It is informational only.
type Outcome string

const (
	OutcomeApplied     Outcome = "applied"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeUnparseable Outcome = "unparseable"
	OutcomeUnresolved  Outcome = "unresolved"
	OutcomeFailed      Outcome = "failed"
)

const (
	DefaultResolveGrace    = 2 * time.Second
	DefaultResolveInterval = 250 * time.Millisecond
)

type Reconciler struct {
	resolver Resolver
	ledger   Ledger
	grace    time.Duration
	interval time.Duration
	now      func() time.Time
}

type Option func(*Reconciler)

// WithResolveGrace sets how long an unknown external id is retried before
// the callback is dropped. A callback can overtake the write that records
// the id it refers to.
func WithResolveGrace(grace, interval time.Duration) Option {
	return func(r *Reconciler) {
		r.grace = grace
		r.interval = interval
	}
}

func New(resolver Resolver, txLedger Ledger, opts ...Option) *Reconciler {
	r := &Reconciler{
		resolver: resolver,
		ledger:   txLedger,
		grace:    DefaultResolveGrace,
		interval: DefaultResolveInterval,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.interval <= 0 {
		r.interval = DefaultResolveInterval
	}

	return r
}

// Handle processes one callback end to end. It never fails: problems are
// logged with enough detail for manual reconciliation.
func (r *Reconciler) Handle(ctx context.Context, a Adapter, cb Callback) Outcome {
	if cb.ReceivedAt.IsZero() {
		cb.ReceivedAt = r.now()
	}

	log := slog.With("processor", a.Processor(), "received_at", cb.ReceivedAt)

	ex, err := a.Extract(ctx, cb)
	if err != nil {
		outcome := OutcomeUnparseable
		if !errors.Is(err, errNoID) && !errors.Is(err, errNoStatus) {
			outcome = OutcomeFailed
		}

		log.Warn("callback not usable", "external_id", ex.ExternalID, "error", err, "body", string(cb.Body))

		return outcome
	}

	ref, err := r.resolve(ctx, a.Processor(), ex.ExternalID)
	if err != nil {
		if errors.Is(err, correlation.ErrNotFound) {
			log.Warn("dropping callback for unknown external id",
				"external_id", ex.ExternalID, "status", ex.RawStatus, "body", string(cb.Body))

			return OutcomeUnresolved
		}

		log.Error("resolving callback", "external_id", ex.ExternalID, "error", err, "body", string(cb.Body))

		return OutcomeFailed
	}

	lcb := ledger.Callback{
		Processor:  a.Processor(),
		ExternalID: ex.ExternalID,
		RawStatus:  ex.RawStatus,
		Body:       ex.Body,
	}

	var tr ledger.Transition

	switch a.Leg() {
	case LegPayment:
		tr, err = r.ledger.ApplyPaymentStatus(ctx, ref, lcb)
	case LegPayout:
		tr, err = r.ledger.ApplyPayoutStatus(ctx, ref, lcb)
	}

	if err != nil {
		log.Error("applying callback", "owner_id", ref.OwnerID, "transaction_id", ref.TransactionID,
			"external_id", ex.ExternalID, "error", err, "body", string(cb.Body))

		return OutcomeFailed
	}

	log.Info("callback applied", "owner_id", ref.OwnerID, "transaction_id", ref.TransactionID,
		"leg", a.Leg(), "from", tr.From, "to", tr.To)

	if !tr.Changed() {
		return OutcomeDuplicate
	}

	return OutcomeApplied
}

// resolve retries correlation.ErrNotFound until the grace period runs out.
func (r *Reconciler) resolve(ctx context.Context, processor ledger.Processor, externalID string) (ledger.Ref, error) {
	deadline := r.now().Add(r.grace)

	for {
		ref, err := r.resolver.Resolve(ctx, processor, externalID)
		if err == nil || !errors.Is(err, correlation.ErrNotFound) {
			return ref, err
		}

		if !r.now().Before(deadline) {
			return ledger.Ref{}, err
		}

		timer := time.NewTimer(r.interval)

		select {
		case <-ctx.Done():
			timer.Stop()

			return ledger.Ref{}, err
		case <-timer.C:
		}
	}
}
