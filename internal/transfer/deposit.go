package transfer

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/futapay/relay/internal/gateway"
	"github.com/futapay/relay/internal/ledger"
	"github.com/futapay/relay/internal/money"
	"github.com/futapay/relay/internal/msisdn"
)

//go:generate mockgen -source=deposit.go -destination=deposit_mock.go -package=transfer
type DepositGateway interface {
	InitiateDeposit(ctx context.Context, req gateway.DepositRequest) (gateway.Result, error)
}

// Deposits starts mobile money deposits on the processor's hosted payment
// page. Deposits are not tracked in the ledger.
type Deposits struct {
	cfg        Config
	normalizer *msisdn.Normalizer
	gateway    DepositGateway
}

func NewDeposits(cfg Config, normalizer *msisdn.Normalizer, gw DepositGateway) *Deposits {
	return &Deposits{cfg: cfg, normalizer: normalizer, gateway: gw}
}

type DepositParams struct {
	// Ref is optional and only travels as metadata.
	Ref             ledger.Ref
	PhoneNumber     string
	Amount          string
	Currency        string
	Country         string
	CustomerMessage string
	ReturnURL       string
}

type DepositOutcome struct {
	Result gateway.Result
	MSISDN string
}

func (d *Deposits) Start(ctx context.Context, p DepositParams) (*DepositOutcome, error) {
	amount, err := money.ParseAmount(p.Amount)
	if err != nil {
		return nil, &ValidationError{Field: "amount", Reason: err.Error(), Expected: "a positive amount like 50.00", err: err}
	}

	if strings.TrimSpace(p.PhoneNumber) == "" {
		return nil, invalid(msisdn.FieldPhoneNumber, "phone number is required", "")
	}

	currency, err := money.NormalizeCurrency(p.Currency, d.cfg.PayoutCurrency)
	if err != nil {
		return nil, &ValidationError{Field: "currency", Reason: err.Error(), Expected: "an ISO 4217 code like ZMW", err: err}
	}

	country, err := msisdn.Country(cmp.Or(strings.TrimSpace(p.Country), d.cfg.DefaultCountry))
	if err != nil {
		return nil, fromNormalizer(err)
	}

	number, err := d.normalizer.MSISDN(p.PhoneNumber, country)
	if err != nil {
		return nil, fromNormalizer(err)
	}

	var meta map[string]string
	if p.Ref.Valid() {
		meta = metadata(p.Ref)
	}

	res, err := d.gateway.InitiateDeposit(ctx, gateway.DepositRequest{
		Amount:          amount,
		Currency:        currency,
		MSISDN:          number,
		Country:         country,
		CustomerMessage: p.CustomerMessage,
		ReturnURL:       p.ReturnURL,
		Metadata:        meta,
	})
	if err != nil {
		return nil, fmt.Errorf("initiating deposit: %w", err)
	}

	if res.Accepted {
		slog.Info("deposit page created", "deposit_id", res.ExternalID, "owner_id", p.Ref.OwnerID,
			"transaction_id", p.Ref.TransactionID)
	} else {
		slog.Warn("deposit page not created", "deposit_id", res.ExternalID, "failure", res.Failure,
			"http_status", res.HTTPStatus, "detail", res.Detail)
	}

	return &DepositOutcome{Result: res, MSISDN: number}, nil
}
