package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App struct {
		Name    string `envconfig:"APP_NAME" default:"FutaPay relay"`
		Version string `envconfig:"APP_VERSION" default:"dev"`
		Port    int    `envconfig:"PORT" default:"8080"`
		// PublicBaseURL is how processors reach this service.
		PublicBaseURL  string   `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	DB struct {
		Driver   string `envconfig:"DB_DRIVER" default:"postgres"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"futapay"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	Mollie struct {
		APIKey      string `envconfig:"MOLLIE_API_KEY"`
		BaseURL     string `envconfig:"MOLLIE_BASE_URL" default:"https://api.mollie.com"`
		Currency    string `envconfig:"PAYMENT_CURRENCY" default:"EUR"`
		RedirectURL string `envconfig:"PAYMENT_REDIRECT_URL"`
	}

	PawaPay struct {
		Token           string `envconfig:"PAWAPAY_TOKEN"`
		BaseURL         string `envconfig:"PAWAPAY_BASE_URL" default:"https://api.sandbox.pawapay.io"`
		Currency        string `envconfig:"PAYOUT_CURRENCY" default:"ZMW"`
		CustomerMessage string `envconfig:"PAYOUT_CUSTOMER_MESSAGE" default:"FutaPay"`
		ReturnURL       string `envconfig:"PAWAPAY_RETURN_URL"`
	}

	Gateway struct {
		Timeout time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"15s"`
	}

	Reconcile struct {
		ResolveGrace    time.Duration `envconfig:"RECONCILE_RESOLVE_GRACE" default:"2s"`
		ResolveInterval time.Duration `envconfig:"RECONCILE_RESOLVE_INTERVAL" default:"250ms"`
	}

	Auth struct {
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	}

	Recipients struct {
		ProviderTablePath string `envconfig:"PROVIDER_TABLE_PATH"`
		DefaultCountry    string `envconfig:"DEFAULT_COUNTRY" default:"ZMB"`
	}
}

func (c *Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     c.DB.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.DB.SSLMode),
	}

	return u.String()
}

// WebhookURL returns the public URL of a callback route.
func (c *Config) WebhookURL(path string) string {
	return strings.TrimRight(c.App.PublicBaseURL, "/") + path
}

// PaymentRedirectURL is where the checkout sends the payer afterwards.
func (c *Config) PaymentRedirectURL() string {
	if c.Mollie.RedirectURL != "" {
		return c.Mollie.RedirectURL
	}

	return c.WebhookURL("/payments/return")
}

// DepositReturnURL is where the deposit payment page sends the payer afterwards.
func (c *Config) DepositReturnURL() string {
	if c.PawaPay.ReturnURL != "" {
		return c.PawaPay.ReturnURL
	}

	return c.WebhookURL("/deposits/return")
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: expected %s or %s", c.DB.Driver, DriverPostgres, DriverMemory)
	}

	if _, err := url.ParseRequestURI(c.App.PublicBaseURL); err != nil {
		return fmt.Errorf("invalid PUBLIC_BASE_URL: %w", err)
	}

	if c.Gateway.Timeout <= 0 {
		return errors.New("GATEWAY_TIMEOUT must be positive")
	}

	return nil
}
