package config

import (
	"fmt"
	"net/url"

	pkgconfig "github.com/nkansal-godaddy/GoStudents/pkg/config"
)

// Config holds all configuration for the GoStudents service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Upstream commerce APIs
	CatalogURL    string `env:"CATALOG_URL" envDefault:"https://catalog-query-ext.cp.api.test.godaddy.com/v2/catalog/offers?rateForDisplay=true"`
	OrdersBaseURL string `env:"ORDERS_BASE_URL" envDefault:"https://orders-shim-ext.cp.api.test.godaddy.com/v2"`

	// Fixed order parameters for the student free trial
	OfferCurrency  string `env:"OFFER_CURRENCY" envDefault:"USD"`
	OfferMarketID  string `env:"OFFER_MARKET_ID" envDefault:"en-US"`
	OfferTermType  string `env:"OFFER_TERM_TYPE" envDefault:"MONTH"`
	OfferTermCount int    `env:"OFFER_TERM_COUNT" envDefault:"12"`

	// Where the frontend sends students after a successful provision
	CheckoutRedirectURL string `env:"CHECKOUT_REDIRECT_URL" envDefault:"https://cart.test-godaddy.com/go/checkout"`

	// Upstream HTTP client. Retries stay at 0: the orders shim deduplicates
	// via Idempotent-Id, and the pipeline policy is abort-on-first-failure.
	UpstreamTimeoutSeconds int `env:"UPSTREAM_TIMEOUT_SECONDS" envDefault:"30"`
	UpstreamMaxRetries     int `env:"UPSTREAM_MAX_RETRIES" envDefault:"0"`

	// Circuit breaker settings for upstream commerce calls
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Per-step pipeline timeouts (seconds). Each step gets its own
	// context.WithTimeout so a slow upstream cannot block the whole
	// provision indefinitely.
	StepCatalogTimeout int `env:"STEP_CATALOG_TIMEOUT" envDefault:"10"`
	StepOrderTimeout   int `env:"STEP_ORDER_TIMEOUT" envDefault:"15"`
	StepFulfillTimeout int `env:"STEP_FULFILL_TIMEOUT" envDefault:"15"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"gostudents"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"gostudents_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"gostudents_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis (schools-catalog response cache; optional)
	RedisHost           string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort           int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword       string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB             int    `env:"REDIS_DB" envDefault:"0"`
	SchoolsCacheTTLSecs int    `env:"SCHOOLS_CACHE_TTL_SECONDS" envDefault:"300"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load gostudents config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.OfferTermCount < 1 {
		return fmt.Errorf("OFFER_TERM_COUNT must be positive, got %d", c.OfferTermCount)
	}
	if c.UpstreamMaxRetries < 0 {
		return fmt.Errorf("UPSTREAM_MAX_RETRIES must not be negative, got %d", c.UpstreamMaxRetries)
	}
	for name, rawURL := range map[string]string{
		"CATALOG_URL":           c.CatalogURL,
		"ORDERS_BASE_URL":       c.OrdersBaseURL,
		"CHECKOUT_REDIRECT_URL": c.CheckoutRedirectURL,
	} {
		if rawURL == "" {
			return fmt.Errorf("%s is required", name)
		}
		if _, err := url.ParseRequestURI(rawURL); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, rawURL, err)
		}
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}
