package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/futapay/relay/internal/money"
)

const DefaultMollieBaseURL = "https://api.mollie.com"

type MollieConfig struct {
	APIKey  string
	BaseURL string
	// WebhookURL is where Mollie posts payment updates.
	WebhookURL string
	// RedirectURL is used when a request carries no return URL.
	RedirectURL string
	Timeout     time.Duration
}

// Mollie is the card/bank checkout processor.
type Mollie struct {
	cfg    MollieConfig
	client client
}

func NewMollie(cfg MollieConfig) *Mollie {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMollieBaseURL
	}

	return &Mollie{cfg: cfg, client: newClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)}
}

type PaymentRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReturnURL   string
	Metadata    map[string]string
}

type mollieAmount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type molliePaymentPayload struct {
	Amount      mollieAmount      `json:"amount"`
	Description string            `json:"description"`
	RedirectURL string            `json:"redirectUrl,omitempty"`
	WebhookURL  string            `json:"webhookUrl,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type molliePayment struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  struct {
		Checkout struct {
			Href string `json:"href"`
		} `json:"checkout"`
	} `json:"_links"`
	Detail string `json:"detail"`
}

// InitiatePayment creates a checkout payment.
func (m *Mollie) InitiatePayment(ctx context.Context, req PaymentRequest) (Result, error) {
	if m.cfg.APIKey == "" {
		return Result{}, fmt.Errorf("%w: MOLLIE_API_KEY is not set", ErrNotConfigured)
	}

	redirect := req.ReturnURL
	if redirect == "" {
		redirect = m.cfg.RedirectURL
	}

	payload := molliePaymentPayload{
		Amount:      mollieAmount{Currency: req.Currency, Value: money.Format(req.Amount)},
		Description: req.Description,
		RedirectURL: redirect,
		WebhookURL:  m.cfg.WebhookURL,
		Metadata:    req.Metadata,
	}

	res := m.client.call(ctx, http.MethodPost, "/v2/payments", payload)
	if res.Failure != FailureNone {
		return res, nil
	}

	var p molliePayment

	if !success(res.HTTPStatus) {
		_ = json.Unmarshal(res.RawBody, &p)

		res.Failure = FailureRejected
		res.Detail = p.Detail

		return res, nil
	}

	if err := json.Unmarshal(res.RawBody, &p); err != nil || p.ID == "" {
		res.Failure = FailureRejected
		res.Detail = "payment response without id"

		return res, nil
	}

	res.Accepted = true
	res.ExternalID = p.ID
	res.ExternalStatus = p.Status
	res.CheckoutURL = p.Links.Checkout.Href

	return res, nil
}

// Payment is the processor's current view of a payment.
type Payment struct {
	ID      string
	Status  string
	RawBody []byte
}

// GetPayment fetches a payment. Mollie webhooks only carry the payment id,
// so the status has to be read back.
func (m *Mollie) GetPayment(ctx context.Context, id string) (Payment, error) {
	if m.cfg.APIKey == "" {
		return Payment{}, fmt.Errorf("%w: MOLLIE_API_KEY is not set", ErrNotConfigured)
	}

	res := m.client.call(ctx, http.MethodGet, "/v2/payments/"+url.PathEscape(id), nil)
	if res.Failure != FailureNone {
		return Payment{}, fmt.Errorf("fetching payment %s: %s: %s", id, res.Failure, res.Detail)
	}

	if !success(res.HTTPStatus) {
		return Payment{}, fmt.Errorf("fetching payment %s: unexpected status code %d", id, res.HTTPStatus)
	}

	var p molliePayment
	if err := json.Unmarshal(res.RawBody, &p); err != nil {
		return Payment{}, fmt.Errorf("decoding payment %s: %w", id, err)
	}

	return Payment{ID: p.ID, Status: p.Status, RawBody: res.RawBody}, nil
}
