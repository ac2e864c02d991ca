package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"liveops"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"liveops"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"liveops"`

	// Shared secrets. ProcessAPIKey authenticates game processes,
	// AdminAPIKey the admin panel. Both must be set in production.
	ProcessAPIKey string `env:"PROCESS_API_KEY"`
	AdminAPIKey   string `env:"ADMIN_API_KEY"`

	// OperatorIdentity is the only identity allowed to clear the
	// moderation ledger.
	OperatorIdentity string `env:"OPERATOR_IDENTITY"`

	// Presence
	PresenceTTL               time.Duration `env:"PRESENCE_TTL" envDefault:"3m"`
	PresenceIndexRewriteEvery time.Duration `env:"PRESENCE_INDEX_REWRITE_EVERY" envDefault:"15s"`

	// Moderation
	CommandTTL           time.Duration `env:"COMMAND_TTL" envDefault:"10m"`
	LedgerMax            int           `env:"LEDGER_MAX" envDefault:"900"`
	HistoryRequiresAdmin bool          `env:"HISTORY_REQUIRES_ADMIN" envDefault:"false"`

	// Lock
	LockCooldown time.Duration `env:"LOCK_COOLDOWN" envDefault:"30s"`

	// Store
	StoreRetryAttempts int `env:"STORE_RETRY_ATTEMPTS" envDefault:"4"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3100"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.ProcessAPIKey == "" {
		return fmt.Errorf("PROCESS_API_KEY is not set; set it or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if c.AdminAPIKey == "" {
		return fmt.Errorf("ADMIN_API_KEY is not set; set it or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if c.ProcessAPIKey == c.AdminAPIKey {
		return fmt.Errorf("PROCESS_API_KEY and ADMIN_API_KEY must differ")
	}
	if c.OperatorIdentity == "" {
		return fmt.Errorf("OPERATOR_IDENTITY is not set")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
