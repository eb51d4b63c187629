package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Remote banking API (leave empty to always simulate locally)
	RemoteAPIURL       string        `env:"REMOTE_API_URL"       envDefault:""`
	GatewayTimeout     time.Duration `env:"GATEWAY_TIMEOUT"      envDefault:"10s"`
	HealthProbeTimeout time.Duration `env:"HEALTH_PROBE_TIMEOUT" envDefault:"3s"`

	// Redis (optional - leave empty to disable idempotency and caching)
	RedisURL           string        `env:"REDIS_URL"            envDefault:""`
	IdempotencyTTL     time.Duration `env:"IDEMPOTENCY_TTL"      envDefault:"24h"`
	LastTransactionTTL time.Duration `env:"LAST_TRANSACTION_TTL" envDefault:"24h"`

	// Ledger
	CreditLimitHeadroom bool   `env:"CREDIT_LIMIT_HEADROOM" envDefault:"false"`
	LedgerSeedFile      string `env:"LEDGER_SEED_FILE"      envDefault:""`
	QuickActionAccount  string `env:"QUICK_ACTION_ACCOUNT"  envDefault:""`

	// UI events
	EventQueueSize int `env:"EVENT_QUEUE_SIZE" envDefault:"256"`

	// Rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// RedisEnabled reports whether a Redis URL is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}
