package ledgerview

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/futapay/relay/internal/http/api"
	"github.com/futapay/relay/internal/http/auth"
	"github.com/futapay/relay/internal/ledger"
	"github.com/futapay/relay/internal/money"
)

type Handler struct {
	ledger *ledger.Service
	auth   *auth.Authenticator
}

func NewHandler(txLedger *ledger.Service, authn *auth.Authenticator) *Handler {
	return &Handler{ledger: txLedger, auth: authn}
}

func (h *Handler) Routes(r chi.Router) {
	r.Use(h.auth.Middleware)
	r.Get("/{ownerId}/{transactionId}", h.get)
}

type processorStateResponse struct {
	Status             string          `json:"status,omitempty"`
	Failure            string          `json:"failure,omitempty"`
	LastHTTPStatus     int             `json:"lastHttpStatus,omitempty"`
	LastResponse       json.RawMessage `json:"lastResponse,omitempty"`
	LastCallback       json.RawMessage `json:"lastCallback,omitempty"`
	CallbackReceivedAt *time.Time      `json:"callbackReceivedAt,omitempty"`
}

type transactionResponse struct {
	ID            string                                      `json:"id"`
	OwnerID       string                                      `json:"ownerId"`
	Kind          ledger.Kind                                 `json:"kind"`
	Amount        string                                      `json:"amount"`
	Currency      string                                      `json:"currency"`
	Recipient     *ledger.Recipient                           `json:"recipient,omitempty"`
	PaymentStatus ledger.PaymentStatus                        `json:"paymentStatus"`
	PayoutStatus  ledger.PayoutStatus                         `json:"payoutStatus,omitempty"`
	PaymentID     string                                      `json:"paymentId,omitempty"`
	PayoutID      string                                      `json:"payoutId,omitempty"`
	Processors    map[ledger.Processor]processorStateResponse `json:"processors,omitempty"`
	CreatedAt     time.Time                                   `json:"createdAt"`
	UpdatedAt     time.Time                                   `json:"updatedAt"`
}

func toResponse(tx *ledger.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:            tx.ID,
		OwnerID:       tx.OwnerID,
		Kind:          tx.Kind,
		Amount:        money.Format(tx.Amount),
		Currency:      tx.Currency,
		PaymentStatus: tx.PaymentStatus,
		PayoutStatus:  tx.PayoutStatus,
		PaymentID:     tx.Refs.PaymentID,
		PayoutID:      tx.Refs.PayoutID,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}

	if !tx.Recipient.IsZero() {
		resp.Recipient = &tx.Recipient
	}

	if len(tx.RawState) > 0 {
		resp.Processors = make(map[ledger.Processor]processorStateResponse, len(tx.RawState))

		for p, st := range tx.RawState {
			resp.Processors[p] = processorStateResponse{
				Status:             st.Status,
				Failure:            st.Failure,
				LastHTTPStatus:     st.LastHTTPStatus,
				LastResponse:       st.LastResponse,
				LastCallback:       st.LastCallback,
				CallbackReceivedAt: st.CallbackReceivedAt,
			}
		}
	}

	return resp
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ref := ledger.Ref{
		OwnerID:       chi.URLParam(r, "ownerId"),
		TransactionID: chi.URLParam(r, "transactionId"),
	}

	if err := auth.Authorize(r.Context(), ref.OwnerID); err != nil {
		api.Error(w, http.StatusForbidden, err.Error())
		return
	}

	tx, err := h.ledger.Get(r.Context(), ref)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			api.Error(w, http.StatusNotFound, "transaction not found")
			return
		}

		api.Fail(w, err)

		return
	}

	api.JSON(w, http.StatusOK, toResponse(tx))
}
