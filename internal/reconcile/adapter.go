package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/futapay/relay/internal/gateway"
	"github.com/futapay/relay/internal/ledger"
)

// Leg is the side of a transaction a processor's callbacks drive.
type Leg string

const (
	LegPayment Leg = "payment"
	LegPayout  Leg = "payout"
)

var (
	errNoID     = errors.New("no external id in callback")
	errNoStatus = errors.New("no status in callback")
)

// Extraction is what an adapter found in a callback.
type Extraction struct {
	ExternalID string
	RawStatus  string
	// Body is the payload to keep for audit. It may differ from the
	// callback body when the status had to be fetched.
	Body []byte
}

// Adapter turns one processor's callbacks into an Extraction.
type Adapter interface {
	Processor() ledger.Processor
	Leg() Leg
	Extract(ctx context.Context, cb Callback) (Extraction, error)
}

// fieldAdapter reads id and status from ordered candidate lists.
type fieldAdapter struct {
	processor ledger.Processor
	leg       Leg
	ids       []Candidate
	statuses  []Candidate
}

func (a *fieldAdapter) Processor() ledger.Processor { return a.processor }
func (a *fieldAdapter) Leg() Leg                    { return a.leg }

func (a *fieldAdapter) extract(cb Callback) (Extraction, bool, error) {
	p := parse(cb)

	id, _, ok := p.first(a.ids)
	if !ok {
		return Extraction{}, false, errNoID
	}

	status, _, hasStatus := p.first(a.statuses)

	return Extraction{ExternalID: id, RawStatus: status, Body: cb.Body}, hasStatus, nil
}

// PaymentFetcher reads a payment back from the checkout processor.
type PaymentFetcher interface {
	GetPayment(ctx context.Context, id string) (gateway.Payment, error)
}

// MollieAdapter handles checkout callbacks. Mollie webhooks are not signed,
// so the callback only names the payment; the status always comes from
// fetching it.
type MollieAdapter struct {
	fieldAdapter
	fetcher PaymentFetcher
}

func NewMollieAdapter(fetcher PaymentFetcher) *MollieAdapter {
	return &MollieAdapter{
		fieldAdapter: fieldAdapter{
			processor: ledger.ProcessorMollie,
			leg:       LegPayment,
			ids: []Candidate{
				Form("id"),
				Query("id"),
				JSON("id"),
				JSON("entityId"),
				JSON("_embedded.entity.id"),
			},
		},
		fetcher: fetcher,
	}
}

func (a *MollieAdapter) Extract(ctx context.Context, cb Callback) (Extraction, error) {
	ex, _, err := a.extract(cb)
	if err != nil {
		return ex, err
	}

	if a.fetcher == nil {
		return ex, errNoStatus
	}

	p, err := a.fetcher.GetPayment(ctx, ex.ExternalID)
	if err != nil {
		return ex, fmt.Errorf("fetching payment status: %w", err)
	}

	if p.Status == "" {
		return ex, errNoStatus
	}

	ex.RawStatus = p.Status
	ex.Body = p.RawBody

	return ex, nil
}

// PawaPayAdapter handles payout callbacks.
type PawaPayAdapter struct {
	fieldAdapter
}

func NewPawaPayAdapter() *PawaPayAdapter {
	return &PawaPayAdapter{
		fieldAdapter: fieldAdapter{
			processor: ledger.ProcessorPawaPay,
			leg:       LegPayout,
			ids: []Candidate{
				JSON("payoutId"),
				JSON("payoutID"),
				JSON("payout.payoutId"),
				JSON("payout.payoutID"),
				JSON("data.payoutId"),
			},
			statuses: []Candidate{
				JSON("status"),
				JSON("payoutStatus"),
				JSON("payout.status"),
				JSON("payout.payoutStatus"),
				JSON("data.status"),
			},
		},
	}
}

func (a *PawaPayAdapter) Extract(_ context.Context, cb Callback) (Extraction, error) {
	ex, hasStatus, err := a.extract(cb)
	if err != nil {
		return ex, err
	}

	if !hasStatus {
		return ex, errNoStatus
	}

	return ex, nil
}
