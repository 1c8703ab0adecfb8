package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/futapay/relay/internal/http/api"
	"github.com/futapay/relay/internal/reconcile"
)

type Reconciler interface {
	Handle(ctx context.Context, a reconcile.Adapter, cb reconcile.Callback) reconcile.Outcome
}

// Handler acknowledges every callback with 200. Outcomes are only logged.
type Handler struct {
	reconciler Reconciler
	payments   reconcile.Adapter
	payouts    reconcile.Adapter
}

func NewHandler(reconciler Reconciler, payments, payouts reconcile.Adapter) *Handler {
	return &Handler{reconciler: reconciler, payments: payments, payouts: payouts}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/payment", h.handle(h.payments))
	r.Post("/payout", h.handle(h.payouts))
}

func (h *Handler) handle(a reconcile.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		received := time.Now()

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, api.MaxBodyBytes))
		if err != nil {
			slog.Warn("reading callback body", "processor", a.Processor(), "error", err, "bytes", len(body))
		}

		outcome := h.reconciler.Handle(r.Context(), a, reconcile.Callback{
			Body:        body,
			ContentType: r.Header.Get("Content-Type"),
			Query:       r.URL.Query(),
			ReceivedAt:  received,
		})

		slog.Debug("callback handled", "processor", a.Processor(), "outcome", outcome,
			"duration", time.Since(received))

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	}
}
