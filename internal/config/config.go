package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port     int    `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"` // development | production
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Storage. The URL scheme selects the driver: sqlite://, postgres://, mysql://
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Optional; when empty the session pointer is stored next to the durable snapshot.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Register
	TableCount     int    `mapstructure:"TABLE_COUNT"`
	SplitTolerance string `mapstructure:"SPLIT_TOLERANCE"`

	// Snapshot writer retry tick for failed flushes.
	SnapshotFlushInterval time.Duration `mapstructure:"SNAPSHOT_FLUSH_INTERVAL"`

	// Demo seed credentials
	SeedAdminPassword   string `mapstructure:"SEED_ADMIN_PASSWORD"`
	SeedCashierPassword string `mapstructure:"SEED_CASHIER_PASSWORD"`

	// HTTP
	CORSOrigins        string `mapstructure:"CORS_ORIGINS"` // comma separated
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	// Optional .env file for local development; does not fail if missing
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "sqlite://data/burgerpos.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("JWT_SECRET", "burgerpos-dev-secret")
	v.SetDefault("JWT_EXPIRATION_HOURS", 12)
	v.SetDefault("TABLE_COUNT", 15)
	v.SetDefault("SPLIT_TOLERANCE", "0.01")
	v.SetDefault("SNAPSHOT_FLUSH_INTERVAL", 5*time.Second)
	v.SetDefault("SEED_ADMIN_PASSWORD", "admin123")
	v.SetDefault("SEED_CASHIER_PASSWORD", "caixa123")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 600)

	cfg := &Config{}
	// AutomaticEnv only resolves keys viper already knows about; defaults cover all of them.
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Tolerance parses SplitTolerance, falling back to one cent.
func (c *Config) Tolerance() decimal.Decimal {
	d, err := decimal.NewFromString(c.SplitTolerance)
	if err != nil || d.IsNegative() {
		return decimal.New(1, -2)
	}
	return d
}

// AllowedOrigins splits CORSOrigins.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) IsProduction() bool { return c.Env == "production" }
