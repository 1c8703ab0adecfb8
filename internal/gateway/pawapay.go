package gateway

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/futapay/relay/internal/money"
)

const DefaultPawaPayBaseURL = "https://api.sandbox.pawapay.io"

type PawaPayConfig struct {
	Token           string
	BaseURL         string
	CustomerMessage string
	// ReturnURL is where the payment page sends the payer afterwards.
	ReturnURL string
	Timeout   time.Duration
}

// PawaPay is the mobile money payout processor.
type PawaPay struct {
	cfg    PawaPayConfig
	client client
	newID  func() string
}

type PawaPayOption func(*PawaPay)

// WithIDGenerator replaces the uuid generator used for payout and deposit ids.
func WithIDGenerator(fn func() string) PawaPayOption {
	return func(p *PawaPay) { p.newID = fn }
}

func NewPawaPay(cfg PawaPayConfig, opts ...PawaPayOption) *PawaPay {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultPawaPayBaseURL
	}

	p := &PawaPay{
		cfg:    cfg,
		client: newClient(cfg.BaseURL, cfg.Token, cfg.Timeout),
		newID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

type PayoutRequest struct {
	Amount   decimal.Decimal
	Currency string
	// MSISDN must already be normalized.
	MSISDN          string
	Provider        string
	CustomerMessage string
	Metadata        map[string]string
}

type pawaPayAccount struct {
	Provider    string `json:"provider"`
	PhoneNumber string `json:"phoneNumber"`
}

type pawaPayRecipient struct {
	Type           string         `json:"type"`
	AccountDetails pawaPayAccount `json:"accountDetails"`
}

type pawaPayPayoutPayload struct {
	PayoutID        string              `json:"payoutId"`
	Amount          string              `json:"amount"`
	Currency        string              `json:"currency"`
	Recipient       pawaPayRecipient    `json:"recipient"`
	CustomerMessage string              `json:"customerMessage,omitempty"`
	Metadata        []map[string]string `json:"metadata,omitempty"`
}

type pawaPayFailure struct {
	FailureCode    string `json:"failureCode"`
	FailureMessage string `json:"failureMessage"`
}

type pawaPayPayoutResponse struct {
	PayoutID      string         `json:"payoutId"`
	Status        string         `json:"status"`
	FailureReason pawaPayFailure `json:"failureReason"`
}

// InitiatePayout submits a payout. The payout id is minted here so it is
// known even when the processor cannot be reached.
func (p *PawaPay) InitiatePayout(ctx context.Context, req PayoutRequest) (Result, error) {
	if p.cfg.Token == "" {
		return Result{}, fmt.Errorf("%w: PAWAPAY_TOKEN is not set", ErrNotConfigured)
	}

	message := req.CustomerMessage
	if message == "" {
		message = p.cfg.CustomerMessage
	}

	payload := pawaPayPayoutPayload{
		PayoutID: p.newID(),
		Amount:   money.Format(req.Amount),
		Currency: req.Currency,
		Recipient: pawaPayRecipient{
			Type:           "MMO",
			AccountDetails: pawaPayAccount{Provider: req.Provider, PhoneNumber: req.MSISDN},
		},
		CustomerMessage: message,
		Metadata:        metadataList(req.Metadata),
	}

	res := p.client.call(ctx, http.MethodPost, "/v2/payouts", payload)
	res.ExternalID = payload.PayoutID

	if res.Failure != FailureNone {
		return res, nil
	}

	var body pawaPayPayoutResponse
	decodeErr := json.Unmarshal(res.RawBody, &body)
	res.ExternalStatus = body.Status

	switch {
	case !success(res.HTTPStatus):
		res.Failure = FailureRejected
		res.Detail = body.FailureReason.FailureMessage
	case decodeErr != nil:
		res.Failure = FailureRejected
		res.Detail = fmt.Sprintf("decoding payout response: %v", decodeErr)
	case strings.EqualFold(body.Status, "REJECTED"):
		res.Failure = FailureRejected
		res.Detail = strings.TrimSpace(body.FailureReason.FailureCode + " " + body.FailureReason.FailureMessage)
	default:
		res.Accepted = true
	}

	return res, nil
}

type DepositRequest struct {
	Amount   decimal.Decimal
	Currency string
	// MSISDN must already be normalized.
	MSISDN          string
	Country         string
	CustomerMessage string
	ReturnURL       string
	Metadata        map[string]string
}

type pawaPayAmount struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type pawaPayDepositPayload struct {
	DepositID       string              `json:"depositId"`
	ReturnURL       string              `json:"returnUrl"`
	CustomerMessage string              `json:"customerMessage,omitempty"`
	AmountDetails   pawaPayAmount       `json:"amountDetails"`
	PhoneNumber     string              `json:"phoneNumber,omitempty"`
	Country         string              `json:"country,omitempty"`
	Metadata        []map[string]string `json:"metadata,omitempty"`
}

type pawaPayLink struct {
	Href string `json:"href"`
}

type pawaPayDepositLinks struct {
	Redirect    pawaPayLink `json:"redirect"`
	PaymentPage pawaPayLink `json:"paymentPage"`
}

type pawaPayDepositResponse struct {
	Status        string              `json:"status"`
	RedirectURL   string              `json:"redirectUrl"`
	Links         pawaPayDepositLinks `json:"_links"`
	FailureReason pawaPayFailure      `json:"failureReason"`
}

// InitiateDeposit opens a hosted payment page that collects a deposit from a
// mobile money wallet. The payer is sent to the returned CheckoutURL; the
// deposit id is minted here like payout ids.
func (p *PawaPay) InitiateDeposit(ctx context.Context, req DepositRequest) (Result, error) {
	if p.cfg.Token == "" {
		return Result{}, fmt.Errorf("%w: PAWAPAY_TOKEN is not set", ErrNotConfigured)
	}

	returnURL := cmp.Or(req.ReturnURL, p.cfg.ReturnURL)
	if returnURL == "" {
		return Result{}, fmt.Errorf("%w: PAWAPAY_RETURN_URL is not set", ErrNotConfigured)
	}

	payload := pawaPayDepositPayload{
		DepositID:       p.newID(),
		ReturnURL:       returnURL,
		CustomerMessage: cmp.Or(req.CustomerMessage, p.cfg.CustomerMessage),
		AmountDetails:   pawaPayAmount{Amount: money.Format(req.Amount), Currency: req.Currency},
		PhoneNumber:     req.MSISDN,
		Country:         req.Country,
		Metadata:        metadataList(req.Metadata),
	}

	res := p.client.call(ctx, http.MethodPost, "/v2/paymentpage", payload)
	res.ExternalID = payload.DepositID

	if res.Failure != FailureNone {
		return res, nil
	}

	var body pawaPayDepositResponse
	decodeErr := json.Unmarshal(res.RawBody, &body)
	res.ExternalStatus = body.Status
	res.CheckoutURL = cmp.Or(body.RedirectURL, body.Links.Redirect.Href, body.Links.PaymentPage.Href)

	switch {
	case !success(res.HTTPStatus):
		res.Failure = FailureRejected
		res.Detail = body.FailureReason.FailureMessage
	case decodeErr != nil:
		res.Failure = FailureRejected
		res.Detail = fmt.Sprintf("decoding deposit response: %v", decodeErr)
	case res.CheckoutURL == "":
		res.Failure = FailureRejected
		res.Detail = strings.TrimSpace("no payment page url in response " + body.FailureReason.FailureMessage)
	default:
		res.Accepted = true
	}

	return res, nil
}

// Availability reports provider availability for a country and operation
// type (DEPOSIT, PAYOUT, REFUND). The processor's answer is passed through.
func (p *PawaPay) Availability(ctx context.Context, country, operationType string) (Result, error) {
	if p.cfg.Token == "" {
		return Result{}, fmt.Errorf("%w: PAWAPAY_TOKEN is not set", ErrNotConfigured)
	}

	q := url.Values{}
	if country != "" {
		q.Set("country", country)
	}

	if operationType != "" {
		q.Set("operationType", operationType)
	}

	path := "/v2/availability"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	return p.passThrough(ctx, path), nil
}

// ActiveConfiguration returns the merchant's active pawaPay configuration.
func (p *PawaPay) ActiveConfiguration(ctx context.Context) (Result, error) {
	if p.cfg.Token == "" {
		return Result{}, fmt.Errorf("%w: PAWAPAY_TOKEN is not set", ErrNotConfigured)
	}

	return p.passThrough(ctx, "/v2/active-configuration"), nil
}

func (p *PawaPay) passThrough(ctx context.Context, path string) Result {
	res := p.client.call(ctx, http.MethodGet, path, nil)
	if res.Failure != FailureNone {
		return res
	}

	if !success(res.HTTPStatus) {
		res.Failure = FailureRejected

		return res
	}

	res.Accepted = true

	return res
}

// metadataList renders metadata the way pawaPay expects it: a list of
// single-field objects, sorted for stable payloads.
func metadataList(m map[string]string) []map[string]string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	out := make([]map[string]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, map[string]string{k: m[k]})
	}

	return out
}
