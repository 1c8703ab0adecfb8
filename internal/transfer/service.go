// Package transfer drives the initiation of payments and payouts: input is
// normalized, the processor is called and the outcome is recorded.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/futapay/relay/internal/correlation"
	"github.com/futapay/relay/internal/gateway"
	"github.com/futapay/relay/internal/ledger"
	"github.com/futapay/relay/internal/money"
	"github.com/futapay/relay/internal/msisdn"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=transfer
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, req gateway.PaymentRequest) (gateway.Result, error)
}

type PayoutGateway interface {
	InitiatePayout(ctx context.Context, req gateway.PayoutRequest) (gateway.Result, error)
}

type Correlations interface {
	Record(ctx context.Context, e correlation.Entry) error
}

type Config struct {
	PaymentCurrency    string
	PayoutCurrency     string
	DefaultCountry     string
	PaymentDescription string
}

type Service struct {
	cfg          Config
	normalizer   *msisdn.Normalizer
	payments     PaymentGateway
	payouts      PayoutGateway
	correlations Correlations
	ledger       *ledger.Service
}

func NewService(
	cfg Config,
	normalizer *msisdn.Normalizer,
	payments PaymentGateway,
	payouts PayoutGateway,
	correlations Correlations,
	txLedger *ledger.Service,
) *Service {
	if cfg.PaymentDescription == "" {
		cfg.PaymentDescription = "FutaPay transfer"
	}

	return &Service{
		cfg:          cfg,
		normalizer:   normalizer,
		payments:     payments,
		payouts:      payouts,
		correlations: correlations,
		ledger:       txLedger,
	}
}

type PaymentParams struct {
	Ref         ledger.Ref
	Kind        string
	Amount      string
	Currency    string
	Description string
	ReturnURL   string
}

type PaymentOutcome struct {
	Result      gateway.Result
	Transaction *ledger.Transaction
}

// StartPayment opens the transaction and creates a checkout payment for it.
// A processor rejection is reported in the outcome, not as an error.
func (s *Service) StartPayment(ctx context.Context, p PaymentParams) (*PaymentOutcome, error) {
	if err := CheckRef(p.Ref, "metadata"); err != nil {
		return nil, err
	}

	kind, err := parseKind(p.Kind)
	if err != nil {
		return nil, err
	}

	amount, err := money.ParseAmount(p.Amount)
	if err != nil {
		return nil, &ValidationError{Field: "amount", Reason: err.Error(), Expected: "a positive amount like 10.00", err: err}
	}

	currency, err := money.NormalizeCurrency(p.Currency, s.cfg.PaymentCurrency)
	if err != nil {
		return nil, &ValidationError{Field: "currency", Reason: err.Error(), Expected: "an ISO 4217 code like EUR", err: err}
	}

	tx, err := s.ledger.Open(ctx, ledger.OpenParams{Ref: p.Ref, Kind: kind, Amount: amount, Currency: currency})
	if err != nil {
		return nil, err
	}

	if tx.Refs.PaymentID != "" {
		return nil, fmt.Errorf("%w: %s", ErrPaymentStarted, tx.Refs.PaymentID)
	}

	description := strings.TrimSpace(p.Description)
	if description == "" {
		description = s.cfg.PaymentDescription
	}

	res, err := s.payments.InitiatePayment(ctx, gateway.PaymentRequest{
		Amount:      amount,
		Currency:    currency,
		Description: description,
		ReturnURL:   p.ReturnURL,
		Metadata:    metadata(p.Ref),
	})
	if err != nil {
		return nil, fmt.Errorf("initiating payment: %w", err)
	}

	ex := ledger.Exchange{
		Processor:      ledger.ProcessorMollie,
		ExternalID:     res.ExternalID,
		ExternalStatus: res.ExternalStatus,
		HTTPStatus:     res.HTTPStatus,
		Failure:        string(res.Failure),
		Request:        res.Request,
		Response:       res.RawBody,
	}

	if !res.Accepted {
		if err := s.recordRejection(ctx, p.Ref, ex, res); err != nil {
			return nil, err
		}

		return &PaymentOutcome{Result: res, Transaction: tx}, nil
	}

	if err := s.correlations.Record(ctx, correlation.Entry{
		Processor:  ledger.ProcessorMollie,
		ExternalID: res.ExternalID,
		Ref:        p.Ref,
	}); err != nil {
		return nil, err
	}

	tx, err = s.ledger.AttachPayment(ctx, p.Ref, ex)
	if err != nil {
		return nil, err
	}

	slog.Info("payment initiated", "owner_id", p.Ref.OwnerID, "transaction_id", p.Ref.TransactionID,
		"payment_id", res.ExternalID)

	return &PaymentOutcome{Result: res, Transaction: tx}, nil
}

// recordRejection keeps the processor's answer on the transaction. Statuses
// stay as they are so the request can be retried.
func (s *Service) recordRejection(ctx context.Context, ref ledger.Ref, ex ledger.Exchange, res gateway.Result) error {
	slog.Warn("processor did not accept request", "processor", ex.Processor,
		"owner_id", ref.OwnerID, "transaction_id", ref.TransactionID,
		"failure", res.Failure, "http_status", res.HTTPStatus, "detail", res.Detail)

	return s.ledger.RecordRejection(ctx, ref, ex)
}

type PayoutParams struct {
	Ref         ledger.Ref
	Kind        string
	Provider    string
	PhoneNumber string
	Amount      string
	Currency    string
	Country     string
}

type PayoutOutcome struct {
	Result      gateway.Result
	Transaction *ledger.Transaction
	Provider    string
	MSISDN      string
}

// StartPayout validates the recipient and submits a payout to it. The
// recipient is normalized before anything is stored or sent.
func (s *Service) StartPayout(ctx context.Context, p PayoutParams) (*PayoutOutcome, error) {
	if err := CheckRef(p.Ref, "ownerId"); err != nil {
		return nil, err
	}

	kind, err := parseKind(p.Kind)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(p.PhoneNumber) == "" {
		return nil, invalid(msisdn.FieldPhoneNumber, "phone number is required", "")
	}

	if strings.TrimSpace(p.Provider) == "" {
		return nil, invalid(msisdn.FieldProvider, "provider is required", "")
	}

	recipient, err := s.recipient(p)
	if err != nil {
		verr := fromNormalizer(err)
		s.recordInvalidRecipient(ctx, p, verr)

		return nil, verr
	}

	amount, err := money.ParseAmount(p.Amount)
	if err != nil {
		return nil, &ValidationError{Field: "amount", Reason: err.Error(), Expected: "a positive amount like 150.00", err: err}
	}

	currency, err := money.NormalizeCurrency(p.Currency, s.cfg.PayoutCurrency)
	if err != nil {
		return nil, &ValidationError{Field: "currency", Reason: err.Error(), Expected: "an ISO 4217 code like ZMW", err: err}
	}

	tx, err := s.ledger.Open(ctx, ledger.OpenParams{
		Ref:      p.Ref,
		Kind:     kind,
		Amount:   amount,
		Currency: currency,
		Recipient: recipient,
	})
	if err != nil {
		return nil, err
	}

	if tx.Refs.PayoutID != "" {
		return nil, fmt.Errorf("%w: %s", ErrPayoutStarted, tx.Refs.PayoutID)
	}

	res, err := s.payouts.InitiatePayout(ctx, gateway.PayoutRequest{
		Amount:   amount,
		Currency: currency,
		MSISDN:   recipient.MSISDN,
		Provider: recipient.Provider,
		Metadata: metadata(p.Ref),
	})
	if err != nil {
		return nil, fmt.Errorf("initiating payout: %w", err)
	}

	out := &PayoutOutcome{Result: res, Transaction: tx, Provider: recipient.Provider, MSISDN: recipient.MSISDN}

	ex := ledger.Exchange{
		Processor:      ledger.ProcessorPawaPay,
		ExternalID:     res.ExternalID,
		ExternalStatus: res.ExternalStatus,
		HTTPStatus:     res.HTTPStatus,
		Failure:        string(res.Failure),
		Request:        res.Request,
		Response:       res.RawBody,
	}

	if !res.Accepted {
		// A timed out payout may still have been created; keep its id
		// resolvable so a later callback is not lost.
		if res.Failure == gateway.FailureTimeout && res.ExternalID != "" {
			if err := s.correlations.Record(ctx, correlation.Entry{
				Processor:  ledger.ProcessorPawaPay,
				ExternalID: res.ExternalID,
				Ref:        p.Ref,
			}); err != nil {
				slog.Error("recording timed out payout", "payout_id", res.ExternalID, "error", err)
			}
		}

		if err := s.recordRejection(ctx, p.Ref, ex, res); err != nil {
			return nil, err
		}

		return out, nil
	}

	if err := s.correlations.Record(ctx, correlation.Entry{
		Processor:  ledger.ProcessorPawaPay,
		ExternalID: res.ExternalID,
		Ref:        p.Ref,
	}); err != nil {
		return nil, err
	}

	tx, err = s.ledger.AttachPayout(ctx, p.Ref, ex)
	if err != nil {
		return nil, err
	}

	out.Transaction = tx

	slog.Info("payout initiated", "owner_id", p.Ref.OwnerID, "transaction_id", p.Ref.TransactionID,
		"payout_id", res.ExternalID, "provider", recipient.Provider)

	return out, nil
}

// recipient resolves the payout destination to its canonical MSISDN and
// provider code.
func (s *Service) recipient(p PayoutParams) (ledger.Recipient, error) {
	countryCode := p.Country
	if strings.TrimSpace(countryCode) == "" {
		countryCode = s.cfg.DefaultCountry
	}

	country, err := msisdn.Country(countryCode)
	if err != nil {
		return ledger.Recipient{}, err
	}

	number, err := s.normalizer.MSISDN(p.PhoneNumber, country)
	if err != nil {
		return ledger.Recipient{}, err
	}

	provider, err := s.normalizer.Provider(p.Provider, country)
	if err != nil {
		return ledger.Recipient{}, err
	}

	return ledger.Recipient{PhoneNumber: p.PhoneNumber, MSISDN: number, Provider: provider, Country: country}, nil
}

// recordInvalidRecipient keeps a failed recipient normalization on an
// existing transaction whose payout has not started. Nothing is created for
// unknown transactions.
func (s *Service) recordInvalidRecipient(ctx context.Context, p PayoutParams, err error) {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return
	}

	tx, gerr := s.ledger.Get(ctx, p.Ref)
	if gerr != nil || tx.Refs.PayoutID != "" {
		return
	}

	req, _ := json.Marshal(map[string]string{
		"provider":    p.Provider,
		"phoneNumber": p.PhoneNumber,
		"countryCode": p.Country,
	})
	resp, _ := json.Marshal(map[string]string{
		"field":    verr.Field,
		"reason":   verr.Reason,
		"expected": verr.Expected,
	})

	rerr := s.ledger.RecordRejection(ctx, p.Ref, ledger.Exchange{
		Processor:      ledger.ProcessorPawaPay,
		ExternalStatus: StatusInvalidRecipient,
		Failure:        string(gateway.FailureRejected),
		Request:        req,
		Response:       resp,
	})
	if rerr != nil {
		slog.Error("recording invalid recipient", "owner_id", p.Ref.OwnerID,
			"transaction_id", p.Ref.TransactionID, "error", rerr)
	}
}

func parseKind(raw string) (ledger.Kind, error) {
	if raw == "" {
		return ledger.KindSend, nil
	}

	k := ledger.Kind(strings.ToLower(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", invalid("kind", fmt.Sprintf("unknown kind %q", raw), "send or receive")
	}

	return k, nil
}

func metadata(ref ledger.Ref) map[string]string {
	return map[string]string{"ownerId": ref.OwnerID, "transactionId": ref.TransactionID}
}

// IsValidation reports whether err is caused by bad request input.
func IsValidation(err error) bool {
	var verr *ValidationError

	return errors.As(err, &verr)
}
