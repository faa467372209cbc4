package infra

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/partnerdesk/platform/internal/policy"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL   string `env:"DATABASE_URL"`
	PGHost        string `env:"PGHOST" envDefault:"localhost"`
	PGPort        int    `env:"PGPORT" envDefault:"5432"`
	PGUser        string `env:"PGUSER" envDefault:"partnerdesk"`
	PGPassword    string `env:"PGPASSWORD" envDefault:"partnerdesk"`
	PGDatabase    string `env:"PGDATABASE" envDefault:"partnerdesk"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"false"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	DBMaxConns    int    `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns    int    `env:"DB_MIN_CONNS" envDefault:"2"`

	// Redis
	RedisURL      string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisEnabled  bool          `env:"REDIS_ENABLED" envDefault:"false"`
	LevelCacheTTL time.Duration `env:"LEVEL_CACHE_TTL" envDefault:"5m"`

	// JWT
	JWTSecret        string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTAdminExpiry   time.Duration `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`
	JWTPartnerExpiry time.Duration `env:"JWT_PARTNER_EXPIRY" envDefault:"12h"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3100"`

	// Kafka
	KafkaBrokers     string        `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled     bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaTopicPrefix string        `env:"KAFKA_TOPIC_PREFIX" envDefault:"partnerdesk"`
	OutboxInterval   time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize  int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Partner tiers: a YAML/TOML file, or the inline "name:min,..." form.
	TierTableFile string `env:"TIER_TABLE_FILE"`
	PartnerTiers  string `env:"PARTNER_TIERS"`

	// Level refreshes allowed per partner per minute.
	RefreshRateLimit int `env:"REFRESH_RATE_LIMIT" envDefault:"10"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig loads an optional .env file and parses environment variables
// into a Config struct. Variables already set in the environment win over .env.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass the JWT checks (local dev only).
func (c *Config) Validate() error {
	if c.TierTableFile == "" && c.PartnerTiers == "" {
		return fmt.Errorf("no tier table configured; set TIER_TABLE_FILE or PARTNER_TIERS")
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
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

// TierTable resolves the configured tier table. The file wins over the inline form.
func (c *Config) TierTable() (policy.TierTable, error) {
	if c.TierTableFile != "" {
		return LoadTierTable(c.TierTableFile)
	}
	if c.PartnerTiers != "" {
		table, err := policy.ParseTierSpec(c.PartnerTiers)
		if err != nil {
			return policy.TierTable{}, fmt.Errorf("parse PARTNER_TIERS: %w", err)
		}
		return table, nil
	}
	return policy.TierTable{}, fmt.Errorf("no tier table configured")
}

// SlogLevel maps LOG_LEVEL to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
