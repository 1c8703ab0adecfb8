package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/futapay/relay/internal/http/api"
	"github.com/futapay/relay/internal/http/auth"
	"github.com/futapay/relay/internal/ledger"
	"github.com/futapay/relay/internal/transfer"
)

type Handler struct {
	svc  *transfer.Service
	auth *auth.Authenticator
}

func NewHandler(svc *transfer.Service, authn *auth.Authenticator) *Handler {
	return &Handler{svc: svc, auth: authn}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(h.auth.Middleware).Post("/", h.create)
	r.Get("/return", h.returned)
}

type metadataRequest struct {
	OwnerID       string `json:"ownerId"`
	TransactionID string `json:"transactionId"`
	// Older app builds send uid/txId.
	UID  string `json:"uid"`
	TxID string `json:"txId"`
}

func (m metadataRequest) ref() ledger.Ref {
	ref := ledger.Ref{OwnerID: m.OwnerID, TransactionID: m.TransactionID}
	if ref.OwnerID == "" {
		ref.OwnerID = m.UID
	}

	if ref.TransactionID == "" {
		ref.TransactionID = m.TxID
	}

	return ref
}

type createPaymentRequest struct {
	Amount      api.Text        `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	ReturnURL   string          `json:"returnUrl"`
	RedirectURL string          `json:"redirectUrl"`
	Kind        string          `json:"kind"`
	Metadata    metadataRequest `json:"metadata"`
}

type createPaymentResponse struct {
	OK            bool   `json:"ok"`
	Accepted      bool   `json:"accepted"`
	ExternalID    string `json:"externalId"`
	CheckoutURL   string `json:"checkoutUrl"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ref := req.Metadata.ref()
	if err := transfer.CheckRef(ref, "metadata"); err != nil {
		api.Fail(w, err)
		return
	}

	if err := auth.Authorize(r.Context(), ref.OwnerID); err != nil {
		api.Error(w, http.StatusForbidden, err.Error())
		return
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = req.RedirectURL
	}

	out, err := h.svc.StartPayment(r.Context(), transfer.PaymentParams{
		Ref:         ref,
		Kind:        req.Kind,
		Amount:      req.Amount.String(),
		Currency:    req.Currency,
		Description: req.Description,
		ReturnURL:   returnURL,
	})
	if err != nil {
		api.Fail(w, err)
		return
	}

	if !out.Result.Accepted {
		api.ProcessorFailure(w, out.Result, "payment creation failed")
		return
	}

	api.JSON(w, http.StatusOK, createPaymentResponse{
		OK:            true,
		Accepted:      true,
		ExternalID:    out.Result.ExternalID,
		CheckoutURL:   out.Result.CheckoutURL,
		Status:        string(out.Transaction.PaymentStatus),
		TransactionID: out.Transaction.ID,
	})
}

// returned is the landing page the checkout redirects to. The payment outcome
// arrives separately through the webhook.
func (h *Handler) returned(w http.ResponseWriter, r *http.Request) {
	api.ReturnPage(w, r.URL.Query().Get("tx"))
}
