package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every setting of the engine, read from the environment.
type Config struct {
	DatabaseURL       string `env:"DATABASE_URL"`
	LedgerDatabaseURL string `env:"LEDGER_DATABASE_URL"`
	StoreDriver       string `env:"STORE_DRIVER" envDefault:"postgres"`
	RunMigrations     bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	ServerPort   int    `env:"SERVER_PORT" envDefault:"8080"`
	JWTSecretKey string `env:"JWT_SECRET_KEY"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"30s"`
	AwayGoalsRule     bool          `env:"AWAY_GOALS_RULE" envDefault:"true"`
	TiebreakStrategy  string        `env:"TIEBREAK_STRATEGY" envDefault:"coin_toss"`
	SecondLegGap      time.Duration `env:"SECOND_LEG_GAP" envDefault:"168h"`
	SimulationSeed    int64         `env:"SIMULATION_SEED" envDefault:"1"`

	// Archive bucket; archiving is off when R2_BUCKET_NAME is empty.
	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `env:"R2_BUCKET_NAME"`
	R2PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`

	OTelEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"cup-engine"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// a missing .env is fine outside local development
	_ = godotenv.Load()
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: SERVER_PORT must be between 1 and 65535, got %d", ErrInvalidConfig, c.ServerPort)
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("%w: JWT_SECRET_KEY is not set", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required with the postgres store", ErrInvalidConfig)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrInvalidConfig, c.StoreDriver)
	}
	switch c.TiebreakStrategy {
	case "coin_toss", "penalties":
	default:
		return fmt.Errorf("%w: unknown TIEBREAK_STRATEGY %q", ErrInvalidConfig, c.TiebreakStrategy)
	}
	if c.SchedulerInterval < 0 {
		return fmt.Errorf("%w: SCHEDULER_INTERVAL must not be negative", ErrInvalidConfig)
	}
	if c.SecondLegGap <= 0 {
		return fmt.Errorf("%w: SECOND_LEG_GAP must be positive", ErrInvalidConfig)
	}
	if c.R2BucketName != "" && (c.R2AccountID == "" || c.R2AccessKeyID == "" || c.R2SecretAccessKey == "") {
		return fmt.Errorf("%w: R2_BUCKET_NAME needs R2_ACCOUNT_ID, R2_ACCESS_KEY_ID and R2_SECRET_ACCESS_KEY", ErrInvalidConfig)
	}
	return nil
}

// LedgerDSN is the database holding club balances; it defaults to the main one.
func (c *Config) LedgerDSN() string {
	if c.LedgerDatabaseURL != "" {
		return c.LedgerDatabaseURL
	}
	return c.DatabaseURL
}

func (c *Config) ArchiveEnabled() bool {
	return c.R2BucketName != ""
}

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
