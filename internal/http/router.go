package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/futapay/relay/internal/http/deposit"
	"github.com/futapay/relay/internal/http/ledgerview"
	"github.com/futapay/relay/internal/http/payment"
	"github.com/futapay/relay/internal/http/payout"
	"github.com/futapay/relay/internal/http/system"
	"github.com/futapay/relay/internal/http/webhook"
)

func New(
	allowedOrigins []string,
	systemH *system.Handler,
	paymentH *payment.Handler,
	payoutH *payout.Handler,
	depositH *deposit.Handler,
	webhookH *webhook.Handler,
	transactionsH *ledgerview.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	systemH.Routes(router)

	router.Route("/payments", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		paymentH.Routes(r)
	})

	router.Route("/payouts", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		payoutH.Routes(r)
	})

	router.Route("/deposits", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		depositH.Routes(r)
	})

	// Processors post form or JSON bodies; no content type filter here.
	router.Route("/webhooks", webhookH.Routes)

	router.Route("/transactions", transactionsH.Routes)

	return router
}
