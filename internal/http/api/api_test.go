package api_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futapay/relay/internal/correlation"
	"github.com/futapay/relay/internal/gateway"
	"github.com/futapay/relay/internal/http/api"
	"github.com/futapay/relay/internal/ledger"
	"github.com/futapay/relay/internal/transfer"
)

func TestFail(t *testing.T) {
	type testCase struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}

	tests := []testCase{
		{
			name:       "Validation",
			err:        transfer.CheckRef(ledger.Ref{}, "metadata"),
			wantStatus: http.StatusBadRequest,
			wantError:  "metadata: ownerId and transactionId are required",
		},
		{
			name:       "Not configured",
			err:        fmt.Errorf("%w: MOLLIE_API_KEY is not set", gateway.ErrNotConfigured),
			wantStatus: http.StatusInternalServerError,
			wantError:  "processor not configured: MOLLIE_API_KEY is not set",
		},
		{
			name:       "Payout already started",
			err:        fmt.Errorf("%w: po-1", transfer.ErrPayoutStarted),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "Correlation conflict",
			err:        correlation.ErrConflict,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "Processor id bound by a callback",
			err:        fmt.Errorf("%w: payout po-2 already bound to po-1", ledger.ErrRefAlreadySet),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "Anything else",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			api.Fail(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["ok"])

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}

func TestProcessorFailure(t *testing.T) {
	type testCase struct {
		name       string
		res        gateway.Result
		wantStatus int
	}

	tests := []testCase{
		{name: "Timeout", res: gateway.Result{Failure: gateway.FailureTimeout}, wantStatus: http.StatusGatewayTimeout},
		{name: "Transport", res: gateway.Result{Failure: gateway.FailureTransport}, wantStatus: http.StatusBadGateway},
		{name: "Rejected with status", res: gateway.Result{Failure: gateway.FailureRejected, HTTPStatus: http.StatusUnauthorized}, wantStatus: http.StatusUnauthorized},
		{name: "Rejected in a 200", res: gateway.Result{Failure: gateway.FailureRejected, HTTPStatus: http.StatusOK}, wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			api.ProcessorFailure(rec, tt.res, "payout creation failed")

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestText(t *testing.T) {
	var req struct {
		A api.Text `json:"a"`
		B api.Text `json:"b"`
		C api.Text `json:"c"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"a":"12,50","b":10.5,"c":null}`), &req))

	assert.Equal(t, "12,50", req.A.String())
	assert.Equal(t, "10.5", req.B.String())
	assert.Equal(t, "", req.C.String())
}
