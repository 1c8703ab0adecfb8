package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/futapay/relay/internal/config"
	"github.com/futapay/relay/internal/correlation"
	corrMemory "github.com/futapay/relay/internal/correlation/memory"
	corrStore "github.com/futapay/relay/internal/correlation/store"
	"github.com/futapay/relay/internal/database"
	"github.com/futapay/relay/internal/gateway"
	relayHttp "github.com/futapay/relay/internal/http"
	"github.com/futapay/relay/internal/http/auth"
	"github.com/futapay/relay/internal/http/deposit"
	"github.com/futapay/relay/internal/http/ledgerview"
	"github.com/futapay/relay/internal/http/payment"
	"github.com/futapay/relay/internal/http/payout"
	"github.com/futapay/relay/internal/http/system"
	"github.com/futapay/relay/internal/http/webhook"
	"github.com/futapay/relay/internal/ledger"
	ledgerMemory "github.com/futapay/relay/internal/ledger/memory"
	ledgerStore "github.com/futapay/relay/internal/ledger/store"
	"github.com/futapay/relay/internal/logging"
	"github.com/futapay/relay/internal/msisdn"
	"github.com/futapay/relay/internal/reconcile"
	"github.com/futapay/relay/internal/transfer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format))

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

type stores struct {
	ledger       ledger.Repository
	correlations correlation.Repository
	db           *sql.DB
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.DB.Driver == config.DriverMemory {
		slog.Warn("using in-memory storage; state is lost on restart")

		return &stores{ledger: ledgerMemory.New(), correlations: corrMemory.New()}, nil
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &stores{ledger: ledgerStore.New(db), correlations: corrStore.New(db), db: db}, nil
}

func loadNormalizer(cfg *config.Config) (*msisdn.Normalizer, error) {
	if cfg.Recipients.ProviderTablePath == "" {
		return msisdn.Default(), nil
	}

	providers, err := msisdn.LoadProviderTableFile(cfg.Recipients.ProviderTablePath)
	if err != nil {
		return nil, fmt.Errorf("loading provider table: %w", err)
	}

	return msisdn.New(msisdn.DefaultRules, providers), nil
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}

	if st.db != nil {
		defer st.db.Close()
	}

	normalizer, err := loadNormalizer(cfg)
	if err != nil {
		return err
	}

	mollie := gateway.NewMollie(gateway.MollieConfig{
		APIKey:      cfg.Mollie.APIKey,
		BaseURL:     cfg.Mollie.BaseURL,
		WebhookURL:  cfg.WebhookURL("/webhooks/payment"),
		RedirectURL: cfg.PaymentRedirectURL(),
		Timeout:     cfg.Gateway.Timeout,
	})

	pawaPay := gateway.NewPawaPay(gateway.PawaPayConfig{
		Token:           cfg.PawaPay.Token,
		BaseURL:         cfg.PawaPay.BaseURL,
		CustomerMessage: cfg.PawaPay.CustomerMessage,
		ReturnURL:       cfg.DepositReturnURL(),
		Timeout:         cfg.Gateway.Timeout,
	})

	if cfg.Mollie.APIKey == "" {
		slog.Warn("MOLLIE_API_KEY is not set; payment requests will fail")
	}

	if cfg.PawaPay.Token == "" {
		slog.Warn("PAWAPAY_TOKEN is not set; payout requests will fail")
	}

	var (
		ledgerService      = ledger.NewService(st.ledger)
		correlationService = correlation.NewService(st.correlations)
		authn              = auth.New(cfg.Auth.JWTSecret)
	)

	transferCfg := transfer.Config{
		PaymentCurrency: cfg.Mollie.Currency,
		PayoutCurrency:  cfg.PawaPay.Currency,
		DefaultCountry:  cfg.Recipients.DefaultCountry,
	}
	transferService := transfer.NewService(transferCfg, normalizer, mollie, pawaPay, correlationService, ledgerService)
	deposits := transfer.NewDeposits(transferCfg, normalizer, pawaPay)

	reconciler := reconcile.New(correlationService, ledgerService,
		reconcile.WithResolveGrace(cfg.Reconcile.ResolveGrace, cfg.Reconcile.ResolveInterval))

	storage := cfg.DB.Driver

	var pinger system.Pinger
	if st.db != nil {
		pinger = st.db
	}

	router := relayHttp.New(
		cfg.App.AllowedOrigins,
		system.NewHandler(system.Info{Name: cfg.App.Name, Version: cfg.App.Version, Storage: storage}, pinger),
		payment.NewHandler(transferService, authn),
		payout.NewHandler(transferService, pawaPay, authn),
		deposit.NewHandler(deposits, authn),
		webhook.NewHandler(reconciler, reconcile.NewMollieAdapter(mollie), reconcile.NewPawaPayAdapter()),
		ledgerview.NewHandler(ledgerService, authn),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr, "storage", storage, "version", cfg.App.Version,
			"auth", authn.Enabled())

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
