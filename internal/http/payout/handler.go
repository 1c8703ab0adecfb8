package payout

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/futapay/relay/internal/gateway"
	"github.com/futapay/relay/internal/http/api"
	"github.com/futapay/relay/internal/http/auth"
	"github.com/futapay/relay/internal/ledger"
	"github.com/futapay/relay/internal/transfer"
)

// Diagnostics exposes the payout processor's read-only endpoints.
type Diagnostics interface {
	Availability(ctx context.Context, country, operationType string) (gateway.Result, error)
	ActiveConfiguration(ctx context.Context) (gateway.Result, error)
}

type Handler struct {
	svc         *transfer.Service
	diagnostics Diagnostics
	auth        *auth.Authenticator
}

func NewHandler(svc *transfer.Service, diagnostics Diagnostics, authn *auth.Authenticator) *Handler {
	return &Handler{svc: svc, diagnostics: diagnostics, auth: authn}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(h.auth.Middleware).Post("/", h.create)
	r.Get("/availability", h.availability)
	r.Get("/configuration", h.configuration)
}

type createPayoutRequest struct {
	OwnerID       string   `json:"ownerId"`
	TransactionID string   `json:"transactionId"`
	UID           string   `json:"uid"`
	TxID          string   `json:"txId"`
	Provider      string   `json:"provider"`
	PhoneNumber   string   `json:"phoneNumber"`
	Amount        api.Text `json:"amount"`
	Currency      string   `json:"currency"`
	CountryCode   string   `json:"countryCode"`
	CountryIso3   string   `json:"countryIso3"`
	Kind          string   `json:"kind"`
}

func (req createPayoutRequest) ref() ledger.Ref {
	ref := ledger.Ref{OwnerID: req.OwnerID, TransactionID: req.TransactionID}
	if ref.OwnerID == "" {
		ref.OwnerID = req.UID
	}

	if ref.TransactionID == "" {
		ref.TransactionID = req.TxID
	}

	return ref
}

type createPayoutResponse struct {
	OK              bool   `json:"ok"`
	Accepted        bool   `json:"accepted"`
	ExternalID      string `json:"externalId"`
	Status          string `json:"status"`
	ProviderUsed    string `json:"providerUsed"`
	PhoneNumberUsed string `json:"phoneNumberUsed"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPayoutRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ref := req.ref()
	if err := transfer.CheckRef(ref, "ownerId"); err != nil {
		api.Fail(w, err)
		return
	}

	if err := auth.Authorize(r.Context(), ref.OwnerID); err != nil {
		api.Error(w, http.StatusForbidden, err.Error())
		return
	}

	country := req.CountryCode
	if country == "" {
		country = req.CountryIso3
	}

	out, err := h.svc.StartPayout(r.Context(), transfer.PayoutParams{
		Ref:         ref,
		Kind:        req.Kind,
		Provider:    req.Provider,
		PhoneNumber: req.PhoneNumber,
		Amount:      req.Amount.String(),
		Currency:    req.Currency,
		Country:     country,
	})
	if err != nil {
		api.Fail(w, err)
		return
	}

	if !out.Result.Accepted {
		api.ProcessorFailure(w, out.Result, "payout creation failed")
		return
	}

	api.JSON(w, http.StatusOK, createPayoutResponse{
		OK:              true,
		Accepted:        true,
		ExternalID:      out.Result.ExternalID,
		Status:          string(out.Transaction.PayoutStatus),
		ProviderUsed:    out.Provider,
		PhoneNumberUsed: out.MSISDN,
	})
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	operation := q.Get("operationType")
	if operation == "" {
		operation = "PAYOUT"
	}

	res, err := h.diagnostics.Availability(r.Context(), q.Get("country"), operation)
	passThrough(w, res, err)
}

func (h *Handler) configuration(w http.ResponseWriter, r *http.Request) {
	res, err := h.diagnostics.ActiveConfiguration(r.Context())
	passThrough(w, res, err)
}

func passThrough(w http.ResponseWriter, res gateway.Result, err error) {
	if err != nil {
		api.Fail(w, err)
		return
	}

	if res.Failure != gateway.FailureNone {
		api.ProcessorFailure(w, res, "payout processor request failed")
		return
	}

	api.JSON(w, http.StatusOK, struct {
		OK   bool            `json:"ok"`
		Data json.RawMessage `json:"data"`
	}{OK: true, Data: api.Raw(res.RawBody)})
}
