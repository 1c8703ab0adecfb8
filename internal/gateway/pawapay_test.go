package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futapay/relay/internal/gateway"
)

func newPawaPay(url string) *gateway.PawaPay {
	return gateway.NewPawaPay(gateway.PawaPayConfig{
		Token:           "pp_token",
		BaseURL:         url,
		CustomerMessage: "FutaPay",
		Timeout:         time.Second,
	}, gateway.WithIDGenerator(func() string { return "0c1d9a3e-5b7f-4e8a-9c2d-1f3e5a7b9c0d" }))
}

func TestPawaPay_InitiatePayout(t *testing.T) {
	type testCase struct {
		name    string
		handler http.HandlerFunc
		verify  func(t *testing.T, res gateway.Result)
	}

	tests := []testCase{
		{
			name: "Accepted",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v2/payouts", r.URL.Path)
				assert.Equal(t, "Bearer pp_token", r.Header.Get("Authorization"))

				var body struct {
					PayoutID  string `json:"payoutId"`
					Amount    string `json:"amount"`
					Currency  string `json:"currency"`
					Recipient struct {
						Type           string `json:"type"`
						AccountDetails struct {
							Provider    string `json:"provider"`
							PhoneNumber string `json:"phoneNumber"`
						} `json:"accountDetails"`
					} `json:"recipient"`
					CustomerMessage string              `json:"customerMessage"`
					Metadata        []map[string]string `json:"metadata"`
				}
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

				assert.Equal(t, "0c1d9a3e-5b7f-4e8a-9c2d-1f3e5a7b9c0d", body.PayoutID)
				assert.Equal(t, "150.00", body.Amount)
				assert.Equal(t, "ZMW", body.Currency)
				assert.Equal(t, "MMO", body.Recipient.Type)
				assert.Equal(t, "MTN_MOMO_ZMB", body.Recipient.AccountDetails.Provider)
				assert.Equal(t, "260771234567", body.Recipient.AccountDetails.PhoneNumber)
				assert.Equal(t, "FutaPay", body.CustomerMessage)
				assert.Equal(t, []map[string]string{{"ownerId": "u1"}, {"transactionId": "t1"}}, body.Metadata)

				w.Write([]byte(`{"payoutId":"0c1d9a3e-5b7f-4e8a-9c2d-1f3e5a7b9c0d","status":"ACCEPTED","created":"2025-03-01T12:00:00Z"}`))
			},
			verify: func(t *testing.T, res gateway.Result) {
				assert.True(t, res.Accepted)
				assert.Equal(t, gateway.FailureNone, res.Failure)
				assert.Equal(t, "ACCEPTED", res.ExternalStatus)
			},
		},
		{
			name: "Rejected in a 200",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"payoutId":"0c1d9a3e-5b7f-4e8a-9c2d-1f3e5a7b9c0d","status":"REJECTED",
					"failureReason":{"failureCode":"INVALID_PHONE_NUMBER","failureMessage":"Phone number is invalid"}}`))
			},
			verify: func(t *testing.T, res gateway.Result) {
				assert.False(t, res.Accepted)
				assert.Equal(t, gateway.FailureRejected, res.Failure)
				assert.Equal(t, http.StatusOK, res.HTTPStatus)
				assert.Equal(t, "INVALID_PHONE_NUMBER Phone number is invalid", res.Detail)
			},
		},
		{
			name: "Unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			verify: func(t *testing.T, res gateway.Result) {
				assert.Equal(t, gateway.FailureRejected, res.Failure)
				assert.Equal(t, http.StatusUnauthorized, res.HTTPStatus)
			},
		},
		{
			name: "Duplicate ignored counts as accepted",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"payoutId":"0c1d9a3e-5b7f-4e8a-9c2d-1f3e5a7b9c0d","status":"DUPLICATE_IGNORED"}`))
			},
			verify: func(t *testing.T, res gateway.Result) {
				assert.True(t, res.Accepted)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			res, err := newPawaPay(ts.URL).InitiatePayout(context.Background(), gateway.PayoutRequest{
				Amount:   decimal.RequireFromString("150"),
				Currency: "ZMW",
				MSISDN:   "260771234567",
				Provider: "MTN_MOMO_ZMB",
				Metadata: map[string]string{"transactionId": "t1", "ownerId": "u1"},
			})
			require.NoError(t, err)

			assert.Equal(t, "0c1d9a3e-5b7f-4e8a-9c2d-1f3e5a7b9c0d", res.ExternalID)
			tt.verify(t, res)
		})
	}
}

func TestPawaPay_NotConfigured(t *testing.T) {
	p := gateway.NewPawaPay(gateway.PawaPayConfig{})

	_, err := p.InitiatePayout(context.Background(), gateway.PayoutRequest{})
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)

	_, err = p.InitiateDeposit(context.Background(), gateway.DepositRequest{ReturnURL: "https://relay.example/deposits/return"})
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)

	_, err = p.Availability(context.Background(), "ZMB", "PAYOUT")
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)

	_, err = p.ActiveConfiguration(context.Background())
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)
}

func TestPawaPay_Diagnostics(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/availability":
			assert.Equal(t, "ZMB", r.URL.Query().Get("country"))
			assert.Equal(t, "PAYOUT", r.URL.Query().Get("operationType"))
			w.Write([]byte(`[{"country":"ZMB","providers":[]}]`))
		case "/v2/active-configuration":
			w.Write([]byte(`{"companyName":"FutaPay"}`))
		}
	}))
	defer ts.Close()

	p := newPawaPay(ts.URL)

	res, err := p.Availability(context.Background(), "ZMB", "PAYOUT")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.JSONEq(t, `[{"country":"ZMB","providers":[]}]`, string(res.RawBody))

	res, err = p.ActiveConfiguration(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"companyName":"FutaPay"}`, string(res.RawBody))
}

func TestPawaPay_InitiateDeposit(t *testing.T) {
	const depositID = "0c1d9a3e-5b7f-4e8a-9c2d-1f3e5a7b9c0d"

	type testCase struct {
		name    string
		handler http.HandlerFunc
		verify  func(t *testing.T, res gateway.Result)
	}

	tests := []testCase{
		{
			name: "Redirect url",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v2/paymentpage", r.URL.Path)
				assert.Equal(t, "Bearer pp_token", r.Header.Get("Authorization"))

				var body struct {
					DepositID     string `json:"depositId"`
					ReturnURL     string `json:"returnUrl"`
					AmountDetails struct {
						Amount   string `json:"amount"`
						Currency string `json:"currency"`
					} `json:"amountDetails"`
					PhoneNumber     string `json:"phoneNumber"`
					Country         string `json:"country"`
					CustomerMessage string `json:"customerMessage"`
				}
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

				assert.Equal(t, depositID, body.DepositID)
				assert.Equal(t, "https://relay.example/deposits/return", body.ReturnURL)
				assert.Equal(t, "50.00", body.AmountDetails.Amount)
				assert.Equal(t, "ZMW", body.AmountDetails.Currency)
				assert.Equal(t, "260971234567", body.PhoneNumber)
				assert.Equal(t, "ZMB", body.Country)
				assert.Equal(t, "FutaPay", body.CustomerMessage)

				w.Write([]byte(`{"redirectUrl":"https://paywith.pawapay.io/?token=abc"}`))
			},
			verify: func(t *testing.T, res gateway.Result) {
				assert.True(t, res.Accepted)
				assert.Equal(t, "https://paywith.pawapay.io/?token=abc", res.CheckoutURL)
			},
		},
		{
			name: "Redirect link",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"_links":{"redirect":{"href":"https://pp.example/redirect"}}}`))
			},
			verify: func(t *testing.T, res gateway.Result) {
				assert.True(t, res.Accepted)
				assert.Equal(t, "https://pp.example/redirect", res.CheckoutURL)
			},
		},
		{
			name: "Payment page link",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"_links":{"paymentPage":{"href":"https://pp.example/page"}}}`))
			},
			verify: func(t *testing.T, res gateway.Result) {
				assert.True(t, res.Accepted)
				assert.Equal(t, "https://pp.example/page", res.CheckoutURL)
			},
		},
		{
			name: "No page url",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			},
			verify: func(t *testing.T, res gateway.Result) {
				assert.False(t, res.Accepted)
				assert.Equal(t, gateway.FailureRejected, res.Failure)
			},
		},
		{
			name: "Bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"failureReason":{"failureCode":"INVALID_AMOUNT","failureMessage":"Amount too small"}}`))
			},
			verify: func(t *testing.T, res gateway.Result) {
				assert.Equal(t, gateway.FailureRejected, res.Failure)
				assert.Equal(t, http.StatusBadRequest, res.HTTPStatus)
				assert.Equal(t, "Amount too small", res.Detail)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			res, err := newPawaPay(ts.URL).InitiateDeposit(context.Background(), gateway.DepositRequest{
				Amount:    decimal.RequireFromString("50"),
				Currency:  "ZMW",
				MSISDN:    "260971234567",
				Country:   "ZMB",
				ReturnURL: "https://relay.example/deposits/return",
			})
			require.NoError(t, err)

			assert.Equal(t, depositID, res.ExternalID)
			tt.verify(t, res)
		})
	}
}
