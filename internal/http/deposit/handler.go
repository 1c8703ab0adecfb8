package deposit

import (
	"cmp"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/futapay/relay/internal/http/api"
	"github.com/futapay/relay/internal/http/auth"
	"github.com/futapay/relay/internal/ledger"
	"github.com/futapay/relay/internal/transfer"
)

type Handler struct {
	deposits *transfer.Deposits
	auth     *auth.Authenticator
}

func NewHandler(deposits *transfer.Deposits, authn *auth.Authenticator) *Handler {
	return &Handler{deposits: deposits, auth: authn}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(h.auth.Middleware).Post("/", h.create)
	r.Get("/return", h.returned)
}

type createDepositRequest struct {
	OwnerID         string   `json:"ownerId"`
	TransactionID   string   `json:"transactionId"`
	PhoneNumber     string   `json:"phoneNumber"`
	Amount          api.Text `json:"amount"`
	Currency        string   `json:"currency"`
	CountryCode     string   `json:"countryCode"`
	CountryIso3     string   `json:"countryIso3"`
	CustomerMessage string   `json:"customerMessage"`
	ReturnURL       string   `json:"returnUrl"`
}

type createDepositResponse struct {
	OK              bool   `json:"ok"`
	Accepted        bool   `json:"accepted"`
	DepositID       string `json:"depositId"`
	RedirectURL     string `json:"redirectUrl"`
	PhoneNumberUsed string `json:"phoneNumberUsed"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDepositRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ref := ledger.Ref{OwnerID: req.OwnerID, TransactionID: req.TransactionID}
	if err := auth.Authorize(r.Context(), ref.OwnerID); err != nil {
		api.Error(w, http.StatusForbidden, err.Error())
		return
	}

	out, err := h.deposits.Start(r.Context(), transfer.DepositParams{
		Ref:             ref,
		PhoneNumber:     req.PhoneNumber,
		Amount:          req.Amount.String(),
		Currency:        req.Currency,
		Country:         cmp.Or(req.CountryCode, req.CountryIso3),
		CustomerMessage: req.CustomerMessage,
		ReturnURL:       req.ReturnURL,
	})
	if err != nil {
		api.Fail(w, err)
		return
	}

	if !out.Result.Accepted {
		api.ProcessorFailure(w, out.Result, "deposit creation failed")
		return
	}

	api.JSON(w, http.StatusOK, createDepositResponse{
		OK:              true,
		Accepted:        true,
		DepositID:       out.Result.ExternalID,
		RedirectURL:     out.Result.CheckoutURL,
		PhoneNumberUsed: out.MSISDN,
	})
}

// returned is the landing page the deposit payment page redirects to.
func (h *Handler) returned(w http.ResponseWriter, r *http.Request) {
	api.ReturnPage(w, r.URL.Query().Get("depositId"))
}
